package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SyncServiceTestSuite struct {
	suite.Suite
	fx       *ledgerFixture
	ledger   *fakeLedger
	notifier *MockChangeNotifier
	svc      portssvc.SyncSvcFacade
	owner    domain.Identity
	ctx      context.Context
}

func fastRetries(attempts int) services.SyncConfig {
	return services.SyncConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.fx = newLedgerFixture(s.T())
	s.ledger = newFakeLedger()
	s.notifier = new(MockChangeNotifier)
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(nil).Maybe()
	s.owner = domain.UserIdentity(testUserID)
	s.ctx = context.Background()
	s.svc = s.newService(3)
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.svc.Close()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (s *SyncServiceTestSuite) newService(attempts int) portssvc.SyncSvcFacade {
	return services.NewSyncService(
		s.fx.repos,
		s.ledger,
		services.NewReconciliationEngine(),
		services.NewAggregateRecalculator(),
		s.fx.cipher,
		services.WithSyncConfig(fastRetries(attempts)),
		services.WithChangeNotifier(s.notifier),
	)
}

func (s *SyncServiceTestSuite) cursor() *string {
	return s.fx.account(s.T()).Cursor
}

func (s *SyncServiceTestSuite) waitForState(linkedAccountID string, want domain.SyncState) {
	s.Eventually(func() bool {
		run, err := s.svc.GetSyncStatus(s.ctx, domain.SystemIdentity(), linkedAccountID)
		return err == nil && run.State == want
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *SyncServiceTestSuite) TestFirstSyncThenRemoval() {
	s.ledger.addPage(nil, domain.DeltaPage{
		Added:      []domain.LedgerTransaction{ledgerTxn("t1", "-12.50", day(3), strPtr(testCategory))},
		NextCursor: "cur1",
	})
	run, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(domain.SyncIdle, run.State)
	s.Equal(1, run.Created)

	t1, ok := s.fx.byExternalID(s.T(), "t1")
	s.Require().True(ok)
	s.True(dec("-12.50").Equal(t1.Amount))
	s.True(dec("-12.50").Equal(s.fx.budget(s.T(), "b1").CurrentAmount))
	s.Equal("cur1", *s.cursor())

	s.ledger.addPage(strPtr("cur1"), domain.DeltaPage{Removed: []string{"t1"}, NextCursor: "cur2"})
	run, err = s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(1, run.Removed)

	t1, _ = s.fx.byExternalID(s.T(), "t1")
	s.True(t1.IsRemoved())
	s.True(s.fx.budget(s.T(), "b1").CurrentAmount.IsZero())
	s.Equal("cur2", *s.cursor())
	s.notifier.AssertNumberOfCalls(s.T(), "NotifyLedgerChanged", 2)
}

func (s *SyncServiceTestSuite) TestRemovingUnknownExternalIDSucceeds() {
	s.ledger.addPage(nil, domain.DeltaPage{Removed: []string{"nope"}, NextCursor: "cur1"})

	run, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(0, run.Removed)
	s.Equal("cur1", *s.cursor())
	s.notifier.AssertNotCalled(s.T(), "NotifyLedgerChanged", mock.Anything, mock.Anything)
}

func (s *SyncServiceTestSuite) TestPagesAppliedInOrderUntilNoMore() {
	s.ledger.addPage(nil, domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-1", day(3), nil)}, NextCursor: "p1", HasMore: true})
	s.ledger.addPage(strPtr("p1"), domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t2", "-2", day(3), nil)}, NextCursor: "p2", HasMore: true})
	s.ledger.addPage(strPtr("p2"), domain.DeltaPage{Modified: []domain.LedgerTransaction{ledgerTxn("t1", "-3", day(3), nil)}, NextCursor: "p3"})

	run, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)

	s.Equal([]string{"", "p1", "p2"}, s.ledger.cursorsRequested())
	s.Equal(3, run.PagesApplied)
	s.Equal(2, run.Created)
	s.Equal(1, run.Updated)
	s.Equal("p3", *s.cursor())
	s.Equal("p3", *run.Cursor)
}

func (s *SyncServiceTestSuite) TestTransientFetchFailureRetriesSamePage() {
	s.ledger.failNext(apperrors.ErrTransientProvider, apperrors.ErrTransientProvider)
	s.ledger.addPage(nil, domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-1", day(3), nil)}, NextCursor: "cur1"})

	_, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal([]string{"", "", ""}, s.ledger.cursorsRequested())
	s.Equal("cur1", *s.cursor())
}

func (s *SyncServiceTestSuite) TestRetryExhaustionFailsWithoutMovingCursor() {
	s.ledger.addPage(nil, domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-1", day(3), nil)}, NextCursor: "cur1", HasMore: true})
	s.ledger.addPage(strPtr("cur1"), domain.DeltaPage{NextCursor: "cur2"})
	_, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)

	s.ledger.always = apperrors.ErrTransientProvider
	run, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)

	s.Require().ErrorIs(err, apperrors.ErrTransientProvider)
	s.Equal(domain.SyncFailed, run.State)
	s.NotEmpty(run.Error)
	s.Equal("cur2", *s.cursor())
	s.Len(s.ledger.cursorsRequested(), 2+3)

	status, err := s.svc.GetSyncStatus(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(domain.SyncFailed, status.State)
}

func (s *SyncServiceTestSuite) TestUnauthorizedProviderErrorIsNotRetried() {
	s.ledger.failNext(apperrors.ErrUnauthorized)

	_, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().ErrorIs(err, apperrors.ErrUnauthorized)
	s.Len(s.ledger.cursorsRequested(), 1)
	s.Nil(s.cursor())
}

func (s *SyncServiceTestSuite) TestStorageFailureRetriesPageWithoutRefetching() {
	failures := 1
	s.fx.store.SetFault(func(op string) error {
		if op == "commit" && failures > 0 {
			failures--
			return errors.New("connection reset")
		}
		return nil
	})
	s.ledger.addPage(nil, domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-12.50", day(3), strPtr(testCategory))}, NextCursor: "cur1"})

	run, err := s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(1, run.Created)
	s.Len(s.fx.transactions(s.T()), 1)
	s.Len(s.ledger.cursorsRequested(), 1)
	s.Equal("cur1", *s.cursor())
}

// ackLossUnitOfWork commits for real and then reports a failure, the way a
// connection dropped after COMMIT looks to the caller.
type ackLossUnitOfWork struct {
	portsrepo.UnitOfWork
	failures int
}

func (u *ackLossUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, store portsrepo.LedgerTxStore) error) error {
	if err := u.UnitOfWork.RunInTx(ctx, fn); err != nil {
		return err
	}
	if u.failures > 0 {
		u.failures--
		return errors.New("connection reset during commit")
	}
	return nil
}

func (s *SyncServiceTestSuite) TestLostCommitAcknowledgementIsNoOpOnRetry() {
	repos := s.fx.repos
	repos.UnitOfWork = &ackLossUnitOfWork{UnitOfWork: s.fx.repos.UnitOfWork, failures: 1}
	svc := services.NewSyncService(repos, s.ledger, services.NewReconciliationEngine(), services.NewAggregateRecalculator(),
		s.fx.cipher, services.WithSyncConfig(fastRetries(3)), services.WithChangeNotifier(s.notifier))
	defer svc.Close()

	s.ledger.addPage(nil, domain.DeltaPage{
		Added:      []domain.LedgerTransaction{ledgerTxn("t1", "-10", day(3), strPtr(testCategory))},
		NextCursor: "cur1", HasMore: true,
	})
	s.ledger.addPage(strPtr("cur1"), domain.DeltaPage{
		Added:      []domain.LedgerTransaction{ledgerTxn("t2", "-20", day(4), strPtr(testCategory))},
		NextCursor: "cur2",
	})

	run, err := svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(domain.SyncIdle, run.State)
	s.Equal("cur2", *s.cursor())
	s.Equal([]string{"", "cur1"}, s.ledger.cursorsRequested())
	s.Equal(map[string]projectedTxn{
		"t1": {Amount: "-10", Category: testCategory},
		"t2": {Amount: "-20", Category: testCategory},
	}, project(s.fx.transactions(s.T())))
	s.True(dec("-30").Equal(s.fx.budget(s.T(), "b1").CurrentAmount))
}

// projection reduces stored transactions to their provider-visible content,
// leaving out generated ids and timestamps.
type projectedTxn struct {
	Amount   string
	Category string
	Removed  bool
}

func project(txns []domain.Transaction) map[string]projectedTxn {
	out := make(map[string]projectedTxn, len(txns))
	for _, t := range txns {
		p := projectedTxn{Amount: t.Amount.String(), Removed: t.IsRemoved()}
		if t.CategoryID != nil {
			p.Category = *t.CategoryID
		}
		out[*t.ExternalID] = p
	}
	return out
}

func scriptCrashPages(l *fakeLedger) {
	l.addPage(nil, domain.DeltaPage{
		Added:      []domain.LedgerTransaction{ledgerTxn("t1", "-10", day(3), strPtr(testCategory))},
		NextCursor: "c1", HasMore: true,
	})
	l.addPage(strPtr("c1"), domain.DeltaPage{
		Added: []domain.LedgerTransaction{
			ledgerTxn("t2", "-20", day(4), strPtr(testCategory)),
			ledgerTxn("t3", "-30", day(5), strPtr(testCategory)),
		},
		Removed:    []string{"t1"},
		NextCursor: "c2",
	})
}

func (s *SyncServiceTestSuite) TestCrashMidPageKeepsCursorAndRerunConverges() {
	scriptCrashPages(s.ledger)
	svc := s.newService(1)
	defer svc.Close()

	saves := 0
	s.fx.store.SetFault(func(op string) error {
		if op == "SaveTransaction" {
			saves++
			if saves == 3 { // t3, second record of the second page
				return errors.New("disk full")
			}
		}
		return nil
	})

	run, err := svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().Error(err)
	s.Equal(domain.SyncFailed, run.State)
	s.Equal("c1", *s.cursor())

	stored := project(s.fx.transactions(s.T()))
	s.Equal(map[string]projectedTxn{"t1": {Amount: "-10", Category: testCategory}}, stored)
	s.True(dec("-10").Equal(s.fx.budget(s.T(), "b1").CurrentAmount))

	s.fx.store.SetFault(nil)
	_, err = svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)

	// A clean run over the same pages is the reference.
	ref := newLedgerFixture(s.T())
	refLedger := newFakeLedger()
	scriptCrashPages(refLedger)
	refSvc := services.NewSyncService(ref.repos, refLedger, services.NewReconciliationEngine(), services.NewAggregateRecalculator(), ref.cipher)
	defer refSvc.Close()
	_, err = refSvc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)

	s.Equal(project(ref.transactions(s.T())), project(s.fx.transactions(s.T())))
	s.Equal(ref.budget(s.T(), "b1").CurrentAmount.String(), s.fx.budget(s.T(), "b1").CurrentAmount.String())
	s.Equal("c2", *s.cursor())
}

func (s *SyncServiceTestSuite) TestConcurrentTriggerIsRejected() {
	s.ledger.release = make(chan struct{})
	s.ledger.addPage(nil, domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-1", day(3), nil)}, NextCursor: "cur1"})

	first, err := s.svc.TriggerSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.True(first.State.IsActive())
	<-s.ledger.entered

	_, err = s.svc.TriggerSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().ErrorIs(err, apperrors.ErrAlreadyRunning)
	_, err = s.svc.RunSync(s.ctx, domain.SystemIdentity(), testLinkedAccount)
	s.Require().ErrorIs(err, apperrors.ErrAlreadyRunning)

	close(s.ledger.release)
	s.waitForState(testLinkedAccount, domain.SyncIdle)
	s.Equal("cur1", *s.cursor())

	// The guard is released once the run ends.
	_, err = s.svc.TriggerSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.waitForState(testLinkedAccount, domain.SyncIdle)
}

func (s *SyncServiceTestSuite) TestCancelledBeforeFetchFails() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	run, err := s.svc.RunSync(ctx, s.owner, testLinkedAccount)
	s.Require().ErrorIs(err, context.Canceled)
	s.Equal(domain.SyncFailed, run.State)
	s.Empty(s.ledger.cursorsRequested())
	s.Nil(s.cursor())
}

func (s *SyncServiceTestSuite) TestCloseStopsInFlightRuns() {
	s.ledger.release = make(chan struct{}) // never released
	_, err := s.svc.TriggerSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	<-s.ledger.entered

	s.svc.Close()

	run, err := s.svc.GetSyncStatus(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(domain.SyncFailed, run.State)
	s.Nil(s.cursor())
}

func (s *SyncServiceTestSuite) TestTriggersAfterCloseAreRejected() {
	s.ledger.addPage(nil, domain.DeltaPage{NextCursor: "cur1"})
	s.svc.Close()

	_, err := s.svc.TriggerSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().ErrorIs(err, apperrors.ErrShuttingDown)
	_, err = s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.Require().ErrorIs(err, apperrors.ErrShuttingDown)

	run, err := s.svc.GetSyncStatus(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(domain.SyncIdle, run.State)
	s.Empty(s.ledger.cursorsRequested())
	s.Nil(s.cursor())
}

func (s *SyncServiceTestSuite) TestCloseRacingTriggersDoesNotPanic() {
	svc := s.newService(1)
	s.ledger.addPage(nil, domain.DeltaPage{NextCursor: "cur1"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, _ = svc.TriggerSync(s.ctx, s.owner, testLinkedAccount)
		}
	}()
	svc.Close()
	<-done

	_, err := svc.TriggerSync(s.ctx, s.owner, testLinkedAccount)
	s.ErrorIs(err, apperrors.ErrShuttingDown)
}

func (s *SyncServiceTestSuite) TestAccessChecks() {
	_, err := s.svc.RunSync(s.ctx, domain.UserIdentity("user-2"), testLinkedAccount)
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = s.svc.GetSyncStatus(s.ctx, domain.UserIdentity("user-2"), testLinkedAccount)
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = s.svc.RunSync(s.ctx, s.owner, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.Require().NoError(s.fx.repos.LinkedAccountRepo.SetLinkedAccountActive(s.ctx, testLinkedAccount, false, time.Now()))
	_, err = s.svc.RunSync(s.ctx, s.owner, testLinkedAccount)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Empty(s.ledger.cursorsRequested())
}

func (s *SyncServiceTestSuite) TestStatusBeforeAnyRunIsIdle() {
	run, err := s.svc.GetSyncStatus(s.ctx, s.owner, testLinkedAccount)
	s.Require().NoError(err)
	s.Equal(domain.SyncIdle, run.State)
	s.Empty(run.RunID)
}

func (s *SyncServiceTestSuite) TestTriggerSyncForItem() {
	s.ledger.addPage(nil, domain.DeltaPage{NextCursor: "cur1"})

	_, err := s.svc.TriggerSyncForItem(s.ctx, "item-1")
	s.Require().NoError(err)
	s.waitForState(testLinkedAccount, domain.SyncIdle)
	s.Equal("cur1", *s.cursor())

	_, err = s.svc.TriggerSyncForItem(s.ctx, "item-unknown")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SyncServiceTestSuite) TestSyncAllActiveStartsEveryActiveAccount() {
	sealed, err := s.fx.cipher.Seal(testAccessToken)
	s.Require().NoError(err)
	for id, active := range map[string]bool{"la-2": true, "la-3": false} {
		s.Require().NoError(s.fx.repos.LinkedAccountRepo.SaveLinkedAccount(s.ctx, domain.LinkedAccount{
			LinkedAccountID: id, ExternalItemID: "item-" + id, UserID: testUserID, AccessToken: sealed, IsActive: active,
		}))
	}

	started, err := s.svc.SyncAllActive(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, started)

	s.waitForState(testLinkedAccount, domain.SyncIdle)
	s.waitForState("la-2", domain.SyncIdle)
	acc, err := s.fx.repos.LinkedAccountRepo.FindLinkedAccountByID(s.ctx, "la-3")
	s.Require().NoError(err)
	s.Nil(acc.Cursor)
}
