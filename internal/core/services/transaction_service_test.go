package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/core/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	fx       *ledgerFixture
	notifier *MockChangeNotifier
	service  portssvc.TransactionSvcFacade
	owner    domain.Identity
	ctx      context.Context
}

func (s *TransactionServiceTestSuite) SetupTest() {
	s.fx = newLedgerFixture(s.T())
	s.notifier = new(MockChangeNotifier)
	s.service = services.NewTransactionService(s.fx.repos, services.NewAggregateRecalculator(), s.notifier)
	s.owner = domain.UserIdentity(testUserID)
	s.ctx = context.Background()
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (s *TransactionServiceTestSuite) create(name, amount string, d int, categoryID *string) *domain.Transaction {
	txn, err := s.service.CreateTransaction(s.ctx, s.owner, dto.CreateTransactionRequest{
		Name: name, Amount: dec(amount), Date: day(d), CategoryID: categoryID, BankAccountID: strPtr(testBankAccount),
	})
	s.Require().NoError(err)
	return txn
}

func (s *TransactionServiceTestSuite) TestCreateRecomputesBudgetAndNotifies() {
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(nil).Once()

	txn := s.create("Coffee", "-4.20", 3, strPtr(testCategory))
	s.Nil(txn.ExternalID)
	s.True(dec("-4.20").Equal(s.fx.budget(s.T(), "b1").CurrentAmount))
	s.notifier.AssertExpectations(s.T())
}

func (s *TransactionServiceTestSuite) TestTransactionOnLastWindowDayCountsTowardBudget() {
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(nil)

	txn, err := s.service.CreateTransaction(s.ctx, s.owner, dto.CreateTransactionRequest{
		Name: "Late groceries", Amount: dec("-40"), Date: day(30).Add(19 * time.Hour), CategoryID: strPtr(testCategory),
	})
	s.Require().NoError(err)
	s.Equal(day(30), txn.Date)
	s.True(dec("-40").Equal(s.fx.budget(s.T(), "b1").CurrentAmount))

	moved := day(30).Add(23*time.Hour + 30*time.Minute)
	_, err = s.service.UpdateTransaction(s.ctx, s.owner, txn.TransactionID, dto.UpdateTransactionRequest{Date: &moved})
	s.Require().NoError(err)
	s.True(dec("-40").Equal(s.fx.budget(s.T(), "b1").CurrentAmount))
}

func (s *TransactionServiceTestSuite) TestNotifierFailureDoesNotFailWrite() {
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(errors.New("webhook down")).Once()

	txn := s.create("Coffee", "-4.20", 3, nil)
	s.NotEmpty(txn.TransactionID)
}

func (s *TransactionServiceTestSuite) TestCreateRejectsForeignReferences() {
	s.Require().NoError(s.fx.repos.CategoryRepo.SaveCategory(s.ctx, domain.Category{
		CategoryID: "foreign", UserID: "user-2", Name: "Theirs", Type: domain.CategoryExpense,
	}))

	_, err := s.service.CreateTransaction(s.ctx, s.owner, dto.CreateTransactionRequest{
		Name: "x", Amount: dec("-1"), Date: day(3), CategoryID: strPtr("foreign"),
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CreateTransaction(s.ctx, s.owner, dto.CreateTransactionRequest{
		Name: "x", Amount: dec("-1"), Date: day(3), BankAccountID: strPtr("missing"),
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CreateTransaction(s.ctx, s.owner, dto.CreateTransactionRequest{Name: "  ", Amount: dec("-1"), Date: day(3)})
	s.ErrorIs(err, apperrors.ErrValidation)
	s.notifier.AssertNotCalled(s.T(), "NotifyLedgerChanged", mock.Anything, mock.Anything)
}

func (s *TransactionServiceTestSuite) TestUpdateMovesSpendBetweenBudgets() {
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(nil)
	s.Require().NoError(s.fx.repos.CategoryRepo.SaveCategory(s.ctx, domain.Category{
		CategoryID: "c2", UserID: testUserID, Name: "Travel", Type: domain.CategoryExpense,
	}))
	s.Require().NoError(s.fx.repos.BudgetRepo.SaveBudget(s.ctx, domain.Budget{
		BudgetID: "b2", UserID: testUserID, Title: "Trips", TargetAmount: dec("50"),
		StartDate: june1, EndDate: june30, CategoryID: strPtr("c2"),
	}))
	txn := s.create("Train", "-30", 3, strPtr(testCategory))

	updated, err := s.service.UpdateTransaction(s.ctx, s.owner, txn.TransactionID, dto.UpdateTransactionRequest{CategoryID: strPtr("c2")})
	s.Require().NoError(err)
	s.Equal("c2", *updated.CategoryID)

	s.True(s.fx.budget(s.T(), "b1").CurrentAmount.IsZero())
	s.True(dec("-30").Equal(s.fx.budget(s.T(), "b2").CurrentAmount))

	_, err = s.service.UpdateTransaction(s.ctx, domain.UserIdentity("user-2"), txn.TransactionID, dto.UpdateTransactionRequest{Name: strPtr("mine")})
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *TransactionServiceTestSuite) TestUpdateOfRemovedTransactionIsNotFound() {
	s.Require().NoError(s.fx.repos.TransactionRepo.SaveTransaction(s.ctx, domain.Transaction{
		TransactionID: "gone", ExternalID: strPtr("t-gone"), UserID: testUserID, Amount: dec("-1"), Date: day(2), Name: "gone", RemovedAt: &june30,
	}))
	_, err := s.service.UpdateTransaction(s.ctx, s.owner, "gone", dto.UpdateTransactionRequest{Name: strPtr("back")})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *TransactionServiceTestSuite) TestDeleteOnlyTouchesCallersTransactions() {
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(nil)
	mine := s.create("Lunch", "-12", 3, strPtr(testCategory))
	s.Require().NoError(s.fx.repos.TransactionRepo.SaveTransaction(s.ctx, domain.Transaction{
		TransactionID: "theirs", UserID: "user-2", Amount: dec("-1"), Date: day(2), Name: "theirs",
	}))

	deleted, err := s.service.DeleteTransactions(s.ctx, s.owner, dto.DeleteTransactionsRequest{TransactionIDs: []string{mine.TransactionID, "theirs", "missing"}})
	s.Require().NoError(err)
	s.Equal(1, deleted)
	s.True(s.fx.budget(s.T(), "b1").CurrentAmount.IsZero())

	_, err = s.fx.repos.TransactionRepo.FindTransactionByID(s.ctx, "theirs")
	s.NoError(err)
}

func (s *TransactionServiceTestSuite) TestListPagesAndFilters() {
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(nil)
	for i, name := range []string{"Rent", "Groceries", "Grocery run"} {
		s.create(name, "-10", 10+i, strPtr(testCategory))
	}

	first, err := s.service.ListTransactions(s.ctx, s.owner, dto.ListTransactionsParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(first.Transactions, 2)
	s.Equal("Grocery run", first.Transactions[0].Name)
	s.Equal("Food", *first.Transactions[0].CategoryName)
	s.Require().NotNil(first.NextToken)

	second, err := s.service.ListTransactions(s.ctx, s.owner, dto.ListTransactionsParams{Limit: 2, NextToken: first.NextToken})
	s.Require().NoError(err)
	s.Require().Len(second.Transactions, 1)
	s.Equal("Rent", second.Transactions[0].Name)
	s.Nil(second.NextToken)

	to := day(11)
	filtered, err := s.service.ListTransactions(s.ctx, s.owner, dto.ListTransactionsParams{Search: "GROC", To: &to})
	s.Require().NoError(err)
	s.Require().Len(filtered.Transactions, 1)
	s.Equal("Groceries", filtered.Transactions[0].Name)

	_, err = s.service.ListTransactions(s.ctx, s.owner, dto.ListTransactionsParams{NextToken: strPtr("not-a-token")})
	s.ErrorIs(err, apperrors.ErrValidation)
}
