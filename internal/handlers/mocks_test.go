package handlers_test

import (
	"context"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock SyncService ---
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) TriggerSync(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error) {
	args := m.Called(ctx, identity, linkedAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRun), args.Error(1)
}

func (m *MockSyncService) RunSync(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error) {
	args := m.Called(ctx, identity, linkedAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRun), args.Error(1)
}

func (m *MockSyncService) TriggerSyncForItem(ctx context.Context, externalItemID string) (*domain.SyncRun, error) {
	args := m.Called(ctx, externalItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRun), args.Error(1)
}

func (m *MockSyncService) SyncAllActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSyncService) GetSyncStatus(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.SyncRun, error) {
	args := m.Called(ctx, identity, linkedAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRun), args.Error(1)
}

func (m *MockSyncService) Close() {
	m.Called()
}

// Ensure mock implements the interface
var _ portssvc.SyncSvcFacade = (*MockSyncService)(nil)

// --- Mock LinkedAccountService ---
type MockLinkedAccountService struct {
	mock.Mock
}

func (m *MockLinkedAccountService) GetLinkedAccount(ctx context.Context, identity domain.Identity, linkedAccountID string) (*domain.LinkedAccount, []domain.BankAccount, error) {
	args := m.Called(ctx, identity, linkedAccountID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.LinkedAccount), args.Get(1).([]domain.BankAccount), args.Error(2)
}

func (m *MockLinkedAccountService) ListLinkedAccounts(ctx context.Context, identity domain.Identity, params dto.ListLinkedAccountsParams) ([]domain.LinkedAccountSummary, error) {
	args := m.Called(ctx, identity, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LinkedAccountSummary), args.Error(1)
}

func (m *MockLinkedAccountService) ExchangePublicToken(ctx context.Context, identity domain.Identity, req dto.ExchangePublicTokenRequest) (*domain.LinkedAccount, []domain.BankAccount, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.LinkedAccount), args.Get(1).([]domain.BankAccount), args.Error(2)
}

func (m *MockLinkedAccountService) SetLinkedAccountActive(ctx context.Context, identity domain.Identity, linkedAccountID string, active bool) (*domain.LinkedAccount, error) {
	args := m.Called(ctx, identity, linkedAccountID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LinkedAccount), args.Error(1)
}

var _ portssvc.LinkedAccountSvcFacade = (*MockLinkedAccountService)(nil)

// --- Mock TransactionService ---
type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, identity domain.Identity, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, identity, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, identity domain.Identity, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, identity domain.Identity, transactionID string, req dto.UpdateTransactionRequest) (*domain.Transaction, error) {
	args := m.Called(ctx, identity, transactionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransactions(ctx context.Context, identity domain.Identity, req dto.DeleteTransactionsRequest) (int, error) {
	args := m.Called(ctx, identity, req)
	return args.Int(0), args.Error(1)
}

var _ portssvc.TransactionSvcFacade = (*MockTransactionService)(nil)

// --- Mock BudgetService ---
type MockBudgetService struct {
	mock.Mock
}

func (m *MockBudgetService) CreateBudget(ctx context.Context, identity domain.Identity, req dto.CreateBudgetRequest) (*domain.Budget, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) UpdateBudget(ctx context.Context, identity domain.Identity, budgetID string, req dto.UpdateBudgetRequest) (*domain.Budget, error) {
	args := m.Called(ctx, identity, budgetID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Budget), args.Error(1)
}

func (m *MockBudgetService) ListBudgets(ctx context.Context, identity domain.Identity) ([]domain.Budget, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Budget), args.Error(1)
}

func (m *MockBudgetService) DeleteBudget(ctx context.Context, identity domain.Identity, budgetID string) error {
	return m.Called(ctx, identity, budgetID).Error(0)
}

func (m *MockBudgetService) CreateGoal(ctx context.Context, identity domain.Identity, req dto.CreateGoalRequest) (*domain.Goal, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockBudgetService) UpdateGoal(ctx context.Context, identity domain.Identity, goalID string, req dto.UpdateGoalRequest) (*domain.Goal, error) {
	args := m.Called(ctx, identity, goalID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockBudgetService) ListGoals(ctx context.Context, identity domain.Identity) ([]domain.Goal, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Goal), args.Error(1)
}

func (m *MockBudgetService) DeleteGoal(ctx context.Context, identity domain.Identity, goalID string) error {
	return m.Called(ctx, identity, goalID).Error(0)
}

var _ portssvc.BudgetSvcFacade = (*MockBudgetService)(nil)
