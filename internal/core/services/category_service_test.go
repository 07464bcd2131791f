package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/core/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	fx       *ledgerFixture
	notifier *MockChangeNotifier
	service  portssvc.CategorySvcFacade
	owner    domain.Identity
	ctx      context.Context
}

func (s *CategoryServiceTestSuite) SetupTest() {
	s.fx = newLedgerFixture(s.T())
	s.notifier = new(MockChangeNotifier)
	s.service = services.NewCategoryService(s.fx.repos, services.NewAggregateRecalculator(), s.notifier)
	s.owner = domain.UserIdentity(testUserID)
	s.ctx = context.Background()
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}

func (s *CategoryServiceTestSuite) TestCreateAndList() {
	created, err := s.service.CreateCategory(s.ctx, s.owner, dto.CreateCategoryRequest{Name: " Rent ", Type: domain.CategoryExpense, Icon: "house"})
	s.Require().NoError(err)
	s.Equal("Rent", created.Name)

	_, err = s.service.CreateCategory(s.ctx, s.owner, dto.CreateCategoryRequest{Name: "Odd", Type: "transfer"})
	s.ErrorIs(err, apperrors.ErrValidation)

	list, err := s.service.ListCategories(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(list, 2)
}

func (s *CategoryServiceTestSuite) TestDeleteDetachesReferencesAndRecomputes() {
	s.notifier.On("NotifyLedgerChanged", mock.Anything, testUserID).Return(nil).Once()
	bank := testBankAccount
	s.Require().NoError(s.fx.repos.TransactionRepo.SaveTransaction(s.ctx, domain.Transaction{
		TransactionID: "txn-1", UserID: testUserID, BankAccountID: &bank, CategoryID: strPtr(testCategory),
		Amount: dec("-40"), Date: day(5), Name: "Dinner",
	}))
	s.Require().NoError(s.fx.repos.BudgetRepo.UpdateBudgetProgress(s.ctx, "b1", dec("-40"), false, june30))
	s.Require().NoError(s.fx.repos.BudgetRepo.SaveGoal(s.ctx, domain.Goal{
		GoalID: "g1", UserID: testUserID, Title: "Eat less", TargetAmount: dec("10"),
		StartDate: june1, EndDate: june30, CategoryID: strPtr(testCategory), BankAccountID: &bank,
	}))

	s.Require().NoError(s.service.DeleteCategory(s.ctx, s.owner, testCategory))

	txn, err := s.fx.repos.TransactionRepo.FindTransactionByID(s.ctx, "txn-1")
	s.Require().NoError(err)
	s.Nil(txn.CategoryID, "transactions survive with the category cleared")

	b := s.fx.budget(s.T(), "b1")
	s.Nil(b.CategoryID)
	s.True(dec("-40").Equal(b.CurrentAmount))

	g, err := s.fx.repos.BudgetRepo.FindGoalByID(s.ctx, "g1")
	s.Require().NoError(err)
	s.Nil(g.CategoryID)
	s.True(dec("-40").Equal(g.CurrentAmount))
	s.notifier.AssertExpectations(s.T())
}

func (s *CategoryServiceTestSuite) TestDeleteRequiresOwner() {
	err := s.service.DeleteCategory(s.ctx, domain.UserIdentity("user-2"), testCategory)
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	err = s.service.DeleteCategory(s.ctx, s.owner, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}
