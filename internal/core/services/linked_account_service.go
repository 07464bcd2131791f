package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/google/uuid"
)

type linkedAccountService struct {
	BaseService
	repo     portsrepo.LinkedAccountRepositoryFacade
	uow      portsrepo.UnitOfWork
	provider providers.LedgerProvider
	sealer   portssvc.TokenSealer
	syncer   portssvc.SyncTriggerSvc
	now      func() time.Time
}

// NewLinkedAccountService creates the service behind bank linking and the bank list.
func NewLinkedAccountService(
	repos portsrepo.RepositoryProvider,
	provider providers.LedgerProvider,
	sealer portssvc.TokenSealer,
	syncer portssvc.SyncTriggerSvc,
) portssvc.LinkedAccountSvcFacade {
	return &linkedAccountService{
		repo:     repos.LinkedAccountRepo,
		uow:      repos.UnitOfWork,
		provider: provider,
		sealer:   sealer,
		syncer:   syncer,
		now:      time.Now,
	}
}

// ExchangePublicToken implements portssvc.LinkedAccountWriterSvc.
// All provider calls happen before anything is stored, so a failed link leaves no rows.
func (s *linkedAccountService) ExchangePublicToken(ctx context.Context, identity domain.Identity, req dto.ExchangePublicTokenRequest) (*domain.LinkedAccount, []domain.BankAccount, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, nil, err
	}

	link, err := s.provider.ExchangePublicToken(ctx, req.PublicToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to exchange public token")
		return nil, nil, fmt.Errorf("exchanging public token: %w", err)
	}
	institution, err := s.provider.GetInstitution(ctx, link.AccessToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch institution", slog.String("item_id", link.ExternalItemID))
		return nil, nil, fmt.Errorf("fetching institution: %w", err)
	}
	providerAccounts, err := s.provider.GetAccounts(ctx, link.AccessToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts", slog.String("item_id", link.ExternalItemID))
		return nil, nil, fmt.Errorf("fetching accounts: %w", err)
	}
	sealed, err := s.sealer.Seal(link.AccessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("sealing access token: %w", err)
	}

	now := s.now().UTC()
	account := domain.LinkedAccount{
		LinkedAccountID: uuid.NewString(),
		ExternalItemID:  link.ExternalItemID,
		UserID:          identity.UserID,
		AccessToken:     sealed,
		InstitutionID:   institution.InstitutionID,
		BankName:        institution.Name,
		Logo:            institution.Logo,
		URL:             institution.URL,
		IsActive:        true,
		AuditFields:     domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	bankAccounts := make([]domain.BankAccount, len(providerAccounts))
	for i, pa := range providerAccounts {
		pa.BankAccountID = uuid.NewString()
		pa.LinkedAccountID = account.LinkedAccountID
		bankAccounts[i] = pa
	}

	err = s.uow.RunInTx(ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		if err := store.LinkedAccounts().SaveLinkedAccount(ctx, account); err != nil {
			return err
		}
		return store.LinkedAccounts().SaveBankAccounts(ctx, bankAccounts)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save linked account", slog.String("item_id", link.ExternalItemID))
		return nil, nil, fmt.Errorf("saving linked account: %w", err)
	}

	s.LogInfo(ctx, "Linked account created",
		slog.String("linked_account_id", account.LinkedAccountID),
		slog.Int("bank_accounts", len(bankAccounts)))

	// The link stands even if the first sync cannot start; the scheduler retries it.
	if _, err := s.syncer.TriggerSync(ctx, identity, account.LinkedAccountID); err != nil {
		s.LogError(ctx, err, "Failed to start initial sync", slog.String("linked_account_id", account.LinkedAccountID))
	}
	return &account, bankAccounts, nil
}

// GetLinkedAccount implements portssvc.LinkedAccountReaderSvc
func (s *linkedAccountService) GetLinkedAccount(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.LinkedAccount, []domain.BankAccount, error) {
	account, err := s.repo.FindLinkedAccountByID(ctx, linkedAccountID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.AuthorizeOwner(ctx, identity, account.UserID, "linked account "+linkedAccountID); err != nil {
		return nil, nil, err
	}
	bankAccounts, err := s.repo.ListBankAccounts(ctx, linkedAccountID)
	if err != nil {
		return nil, nil, err
	}
	return account, bankAccounts, nil
}

// ListLinkedAccounts implements portssvc.LinkedAccountReaderSvc
func (s *linkedAccountService) ListLinkedAccounts(ctx context.Context, identity domain.Identity, params dto.ListLinkedAccountsParams) ([]domain.LinkedAccountSummary, error) {
	if err := s.RequireUser(identity); err != nil {
		return nil, err
	}
	status := domain.LinkedAccountStatus(params.Status)
	if status == "" {
		status = domain.StatusAll
	}
	return s.repo.ListLinkedAccounts(ctx, domain.LinkedAccountFilter{
		UserID: identity.UserID,
		Name:   params.Name,
		Status: status,
	})
}

// SetLinkedAccountActive implements portssvc.LinkedAccountWriterSvc
func (s *linkedAccountService) SetLinkedAccountActive(ctx context.Context, identity domain.Identity, linkedAccountID string, active bool) (*domain.LinkedAccount, error) {
	account, err := s.repo.FindLinkedAccountByID(ctx, linkedAccountID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeOwner(ctx, identity, account.UserID, "linked account "+linkedAccountID); err != nil {
		return nil, err
	}
	if account.IsActive == active {
		return account, nil
	}

	now := s.now().UTC()
	if err := s.repo.SetLinkedAccountActive(ctx, linkedAccountID, active, now); err != nil {
		s.LogError(ctx, err, "Failed to update linked account", slog.String("linked_account_id", linkedAccountID))
		return nil, err
	}
	account.IsActive = active
	account.LastUpdatedAt = now
	return account, nil
}
