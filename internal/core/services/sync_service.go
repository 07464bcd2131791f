package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/middleware"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// SyncConfig tunes retries of a sync run.
type SyncConfig struct {
	MaxAttempts    int           // per fetch and per page apply, first try included
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultSyncConfig returns the retry policy used when none is configured.
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{MaxAttempts: 5, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 30 * time.Second}
}

type syncService struct {
	BaseService
	linkedAccounts portsrepo.LinkedAccountReader
	uow            portsrepo.UnitOfWork
	provider       providers.LedgerProvider
	engine         portssvc.ReconciliationEngine
	recalculator   portssvc.AggregateRecalculator
	sealer         portssvc.TokenSealer
	notifier       portssvc.ChangeNotifier
	cfg            SyncConfig
	now            func() time.Time

	guard accountGuard

	runsMu sync.Mutex
	runs   map[string]*domain.SyncRun // latest run per linked account
	closed bool                       // set by Close; no run starts after it

	rootCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// SyncServiceOption is a function that configures a syncService
type SyncServiceOption func(*syncService)

// WithSyncConfig sets the retry policy.
func WithSyncConfig(cfg SyncConfig) SyncServiceOption {
	return func(s *syncService) { s.cfg = cfg }
}

// WithChangeNotifier sets where ledger change notifications go.
func WithChangeNotifier(n portssvc.ChangeNotifier) SyncServiceOption {
	return func(s *syncService) { s.notifier = n }
}

// WithSyncClock overrides the clock used for run timestamps.
func WithSyncClock(now func() time.Time) SyncServiceOption {
	return func(s *syncService) { s.now = now }
}

// NewSyncService creates the sync orchestrator.
func NewSyncService(
	repos portsrepo.RepositoryProvider,
	provider providers.LedgerProvider,
	engine portssvc.ReconciliationEngine,
	recalculator portssvc.AggregateRecalculator,
	sealer portssvc.TokenSealer,
	opts ...SyncServiceOption,
) *syncService {
	rootCtx, cancel := context.WithCancel(context.Background())
	s := &syncService{
		linkedAccounts: repos.LinkedAccountRepo,
		uow:            repos.UnitOfWork,
		provider:       provider,
		engine:         engine,
		recalculator:   recalculator,
		sealer:         sealer,
		cfg:            DefaultSyncConfig(),
		now:            time.Now,
		runs:           make(map[string]*domain.SyncRun),
		rootCtx:        rootCtx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.MaxAttempts < 1 {
		s.cfg.MaxAttempts = 1
	}
	return s
}

// TriggerSync implements portssvc.SyncTriggerSvc
func (s *syncService) TriggerSync(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error) {
	account, err := s.loadSyncableAccount(ctx, identity, linkedAccountID)
	if err != nil {
		return nil, err
	}
	run, err := s.begin(ctx, account)
	if err != nil {
		return nil, err
	}

	// The run outlives the request that triggered it but keeps its logger.
	runCtx, cancel := s.runContext(context.WithoutCancel(ctx))
	go func() {
		defer s.wg.Done()
		defer cancel()
		_ = s.execute(runCtx, account, run) // the outcome is recorded on the run
	}()

	return s.snapshot(account.LinkedAccountID), nil
}

// RunSync implements portssvc.SyncTriggerSvc
func (s *syncService) RunSync(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error) {
	account, err := s.loadSyncableAccount(ctx, identity, linkedAccountID)
	if err != nil {
		return nil, err
	}
	run, err := s.begin(ctx, account)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := s.runContext(ctx)
	defer cancel()
	runErr := func() error {
		defer s.wg.Done()
		return s.execute(runCtx, account, run)
	}()

	final := s.snapshot(account.LinkedAccountID)
	if runErr != nil {
		return final, fmt.Errorf("sync of linked account %s failed: %w", linkedAccountID, runErr)
	}
	return final, nil
}

// TriggerSyncForItem implements portssvc.SyncTriggerSvc
func (s *syncService) TriggerSyncForItem(ctx context.Context, externalItemID string) (*domain.SyncRun, error) {
	account, err := s.linkedAccounts.FindLinkedAccountByExternalItemID(ctx, externalItemID)
	if err != nil {
		return nil, err
	}
	return s.TriggerSync(ctx, domain.SystemIdentity(), account.LinkedAccountID)
}

// SyncAllActive implements portssvc.SyncTriggerSvc
func (s *syncService) SyncAllActive(ctx context.Context) (int, error) {
	ids, err := s.linkedAccounts.ListActiveLinkedAccountIDs(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active linked accounts")
		return 0, fmt.Errorf("listing active linked accounts: %w", err)
	}

	started := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return started, ctx.Err()
		}
		if _, err := s.TriggerSync(ctx, domain.SystemIdentity(), id); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyRunning) {
				s.LogDebug(ctx, "Skipping linked account with a run in progress", slog.String("linked_account_id", id))
				continue
			}
			s.LogError(ctx, err, "Failed to trigger scheduled sync", slog.String("linked_account_id", id))
			continue
		}
		started++
	}
	s.LogInfo(ctx, "Scheduled sync triggered", slog.Int("active", len(ids)), slog.Int("started", started))
	return started, nil
}

// GetSyncStatus implements portssvc.SyncStatusSvc
func (s *syncService) GetSyncStatus(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error) {
	account, err := s.linkedAccounts.FindLinkedAccountByID(ctx, linkedAccountID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeOwner(ctx, identity, account.UserID, "linked account "+linkedAccountID); err != nil {
		return nil, err
	}
	if run := s.snapshot(linkedAccountID); run != nil {
		return run, nil
	}
	return &domain.SyncRun{LinkedAccountID: linkedAccountID, State: domain.SyncIdle, Cursor: account.Cursor}, nil
}

// Close implements portssvc.SyncSvcFacade
func (s *syncService) Close() {
	s.runsMu.Lock()
	s.closed = true
	s.runsMu.Unlock()
	s.cancel()
	s.wg.Wait()
}

func (s *syncService) loadSyncableAccount(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.LinkedAccount, error) {
	account, err := s.linkedAccounts.FindLinkedAccountByID(ctx, linkedAccountID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeOwner(ctx, identity, account.UserID, "linked account "+linkedAccountID); err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("linked account %s is inactive: %w", linkedAccountID, apperrors.ErrValidation)
	}
	return account, nil
}

// begin claims the account guard, registers a new run and counts it on the
// wait group; the caller must call s.wg.Done when the run ends. It fails with
// ErrAlreadyRunning when a run is in flight for the account and with
// ErrShuttingDown once Close has been called.
func (s *syncService) begin(ctx context.Context, account *domain.LinkedAccount) (*domain.SyncRun, error) {
	runID := uuid.NewString()
	if !s.guard.tryAcquire(account.LinkedAccountID, runID) {
		return nil, fmt.Errorf("linked account %s: %w", account.LinkedAccountID, apperrors.ErrAlreadyRunning)
	}
	run := &domain.SyncRun{
		RunID:           runID,
		LinkedAccountID: account.LinkedAccountID,
		State:           domain.SyncFetching,
		StartedAt:       s.now().UTC(),
		Cursor:          account.Cursor,
	}
	s.runsMu.Lock()
	if s.closed {
		s.runsMu.Unlock()
		s.guard.release(account.LinkedAccountID, runID)
		return nil, fmt.Errorf("linked account %s: %w", account.LinkedAccountID, apperrors.ErrShuttingDown)
	}
	s.runs[account.LinkedAccountID] = run
	s.wg.Add(1) // under runsMu, so never concurrent with the Wait in Close
	s.runsMu.Unlock()

	s.LogInfo(ctx, "Sync run started",
		slog.String("run_id", runID),
		slog.String("linked_account_id", account.LinkedAccountID))
	return run, nil
}

// runContext derives a context that is also cancelled by Close.
func (s *syncService) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.rootCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// execute drives one run to completion and ends in finish or fail, which
// release the account. The cursor only ever moves inside a page's unit of
// work, so any failure leaves it at the last committed page.
func (s *syncService) execute(ctx context.Context, account *domain.LinkedAccount, run *domain.SyncRun) error {
	logger := s.GetLogger(ctx).With(
		slog.String("run_id", run.RunID),
		slog.String("linked_account_id", account.LinkedAccountID))
	ctx = middleware.WithLogger(ctx, logger)

	accessToken, err := s.sealer.Open(account.AccessToken)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("opening access token: %w", err))
	}

	cursor := account.Cursor
	changed := false
	for {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, run, fmt.Errorf("sync cancelled: %w", err))
		}

		s.setState(run, domain.SyncFetching)
		page, err := s.fetchPage(ctx, accessToken, cursor)
		if err != nil {
			return s.fail(ctx, run, err)
		}

		result, err := s.applyPage(ctx, run, account, cursor, page)
		if err != nil {
			return s.fail(ctx, run, err)
		}

		next := page.NextCursor
		cursor = &next
		changed = changed || result.Created+result.Updated+result.Removed > 0
		s.recordPage(run, result)

		if !page.HasMore {
			break
		}
	}

	s.finish(ctx, run)
	if changed && s.notifier != nil {
		if err := s.notifier.NotifyLedgerChanged(ctx, account.UserID); err != nil {
			s.LogError(ctx, err, "Failed to notify ledger change")
		}
	}
	return nil
}

func (s *syncService) fetchPage(ctx context.Context, accessToken string, cursor *string) (*domain.DeltaPage, error) {
	var page *domain.DeltaPage
	op := func() error {
		p, err := s.provider.FetchPage(ctx, accessToken, cursor)
		if err != nil {
			if errors.Is(err, apperrors.ErrTransientProvider) {
				return err
			}
			return backoff.Permanent(err)
		}
		page = p
		return nil
	}
	if err := backoff.RetryNotify(op, s.retryPolicy(ctx), s.logRetry(ctx, "fetch")); err != nil {
		return nil, fmt.Errorf("fetching delta page: %w", err)
	}
	return page, nil
}

// applyPage reconciles, recalculates and advances the cursor in one unit of
// work. The unit runs detached from cancellation so it commits or rolls back whole.
func (s *syncService) applyPage(ctx context.Context, run *domain.SyncRun, account *domain.LinkedAccount, cursor *string, page *domain.DeltaPage) (*domain.ApplyResult, error) {
	txCtx := context.WithoutCancel(ctx)
	var result *domain.ApplyResult
	op := func() error {
		s.setState(run, domain.SyncReconciling)
		err := s.uow.RunInTx(txCtx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
			applied, err := s.engine.ApplyDelta(ctx, store, account, cursor, page)
			if err != nil {
				return err
			}
			s.setState(run, domain.SyncRecalculating)
			if _, err := s.recalculator.Recompute(ctx, store, applied.Touched); err != nil {
				return fmt.Errorf("recalculating aggregates: %w", err)
			}
			result = applied
			return nil
		})
		if err != nil && !retryableApplyError(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.RetryNotify(op, s.retryPolicy(ctx), s.logRetry(ctx, "apply")); err != nil {
		return nil, fmt.Errorf("applying delta page: %w", err)
	}
	return result, nil
}

func retryableApplyError(err error) bool {
	switch {
	case errors.Is(err, apperrors.ErrStorageConflict),
		errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrValidation):
		return false
	}
	return true
}

func (s *syncService) retryPolicy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.cfg.InitialBackoff
	exp.MaxInterval = s.cfg.MaxBackoff
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.cfg.MaxAttempts-1)), ctx)
}

func (s *syncService) logRetry(ctx context.Context, step string) backoff.Notify {
	return func(err error, wait time.Duration) {
		s.GetLogger(ctx).Warn("Sync step failed, retrying",
			slog.String("step", step),
			slog.String("error", err.Error()),
			slog.Duration("wait", wait))
	}
}

func (s *syncService) setState(run *domain.SyncRun, state domain.SyncState) {
	s.runsMu.Lock()
	run.State = state
	s.runsMu.Unlock()
}

func (s *syncService) recordPage(run *domain.SyncRun, result *domain.ApplyResult) {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	next := result.NextCursor
	run.PagesApplied++
	run.Created += result.Created
	run.Updated += result.Updated
	run.Removed += result.Removed
	run.Cursor = &next
}

func (s *syncService) finish(ctx context.Context, run *domain.SyncRun) {
	s.runsMu.Lock()
	finished := s.now().UTC()
	run.State = domain.SyncIdle
	run.FinishedAt = &finished
	snapshot := *run
	s.guard.release(run.LinkedAccountID, run.RunID)
	s.runsMu.Unlock()

	s.LogInfo(ctx, "Sync run finished",
		slog.Int("pages", snapshot.PagesApplied),
		slog.Int("created", snapshot.Created),
		slog.Int("updated", snapshot.Updated),
		slog.Int("removed", snapshot.Removed))
}

func (s *syncService) fail(ctx context.Context, run *domain.SyncRun, err error) error {
	s.runsMu.Lock()
	finished := s.now().UTC()
	run.State = domain.SyncFailed
	run.FinishedAt = &finished
	run.Error = err.Error()
	s.guard.release(run.LinkedAccountID, run.RunID)
	s.runsMu.Unlock()

	s.LogError(ctx, err, "Sync run failed")
	return err
}

func (s *syncService) snapshot(linkedAccountID string) *domain.SyncRun {
	s.runsMu.Lock()
	defer s.runsMu.Unlock()
	run, ok := s.runs[linkedAccountID]
	if !ok {
		return nil
	}
	cp := *run
	return &cp
}
