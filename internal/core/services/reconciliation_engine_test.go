package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReconciliationEngineTestSuite struct {
	suite.Suite
	fx     *ledgerFixture
	engine portssvc.ReconciliationEngine
	ctx    context.Context
}

func (s *ReconciliationEngineTestSuite) SetupTest() {
	s.fx = newLedgerFixture(s.T())
	clock := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	s.engine = services.NewReconciliationEngine(services.WithEngineClock(func() time.Time { return clock }))
	s.ctx = context.Background()
}

func TestReconciliationEngineTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationEngineTestSuite))
}

// apply runs one page in a unit of work, starting from the account's stored cursor.
func (s *ReconciliationEngineTestSuite) apply(page domain.DeltaPage) (*domain.ApplyResult, error) {
	account := s.fx.account(s.T())
	var result *domain.ApplyResult
	err := s.fx.store.RunInTx(s.ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		var err error
		result, err = s.engine.ApplyDelta(ctx, store, account, account.Cursor, &page)
		return err
	})
	return result, err
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_CreatesRecordsAndAdvancesCursor() {
	result, err := s.apply(domain.DeltaPage{
		Added: []domain.LedgerTransaction{
			ledgerTxn("t1", "-12.50", day(3), strPtr(testCategory)),
			ledgerTxn("t2", "1500", day(4), nil),
		},
		NextCursor: "cur1",
	})
	s.Require().NoError(err)

	s.Equal(2, result.Created)
	s.Equal("cur1", result.NextCursor)
	s.Equal([]string{testCategory}, result.Touched.CategoryIDs)
	s.Equal([]string{testBankAccount}, result.Touched.AccountIDs)
	s.True(result.Touched.Uncategorized)

	t1, ok := s.fx.byExternalID(s.T(), "t1")
	s.Require().True(ok)
	s.NotEmpty(t1.TransactionID)
	s.Equal(testUserID, t1.UserID)
	s.True(dec("-12.50").Equal(t1.Amount))
	s.Require().NotNil(t1.BankAccountID)
	s.Equal(testBankAccount, *t1.BankAccountID)

	acc := s.fx.account(s.T())
	s.Require().NotNil(acc.Cursor)
	s.Equal("cur1", *acc.Cursor)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_SamePageTwiceIsNoOp() {
	records := []domain.LedgerTransaction{
		ledgerTxn("t1", "-12.50", day(3), strPtr(testCategory)),
		ledgerTxn("t2", "-3", day(5), nil),
	}
	first, err := s.apply(domain.DeltaPage{Added: records, Removed: []string{"ghost"}, NextCursor: "cur1"})
	s.Require().NoError(err)
	before := s.fx.transactions(s.T())

	// Re-delivered under the next cursor, as the provider does after a retry.
	second, err := s.apply(domain.DeltaPage{Added: records, Removed: []string{"ghost"}, NextCursor: "cur2"})
	s.Require().NoError(err)

	s.Equal(before, s.fx.transactions(s.T()))
	s.Equal(first.Touched, second.Touched)
	s.Equal(0, second.Created)
	s.Equal(0, second.Updated)
	s.Equal(2, second.Unchanged)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_CommittedPageRedeliveredIsNoOp() {
	account := s.fx.account(s.T())
	page := domain.DeltaPage{
		Added:      []domain.LedgerTransaction{ledgerTxn("t1", "-12.50", day(3), strPtr(testCategory))},
		Modified:   []domain.LedgerTransaction{ledgerTxn("t2", "-3", day(5), nil)},
		Removed:    []string{"ghost"},
		NextCursor: "cur1",
	}
	applyFromNil := func() (*domain.ApplyResult, error) {
		var result *domain.ApplyResult
		err := s.fx.store.RunInTx(s.ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
			var err error
			result, err = s.engine.ApplyDelta(ctx, store, account, nil, &page)
			return err
		})
		return result, err
	}

	first, err := applyFromNil()
	s.Require().NoError(err)
	before := s.fx.transactions(s.T())
	accountBefore := s.fx.account(s.T())

	// Same page, same expected cursor: the commit went through but its
	// acknowledgement was lost.
	second, err := applyFromNil()
	s.Require().NoError(err)

	s.Equal(before, s.fx.transactions(s.T()))
	s.Equal(accountBefore, s.fx.account(s.T()))
	s.Equal(first.Touched, second.Touched)
	s.Equal(0, second.Created+second.Updated+second.Removed)
	s.Equal("cur1", *s.fx.account(s.T()).Cursor)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_ModifyKeepsIdentityAndTouchesBothCategories() {
	s.Require().NoError(s.fx.repos.CategoryRepo.SaveCategory(s.ctx, domain.Category{
		CategoryID: "c2", UserID: testUserID, Name: "Travel", Type: domain.CategoryExpense,
	}))
	_, err := s.apply(domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-12.50", day(3), strPtr(testCategory))}, NextCursor: "cur1"})
	s.Require().NoError(err)
	created, _ := s.fx.byExternalID(s.T(), "t1")

	result, err := s.apply(domain.DeltaPage{Modified: []domain.LedgerTransaction{ledgerTxn("t1", "-20", day(3), strPtr("c2"))}, NextCursor: "cur2"})
	s.Require().NoError(err)

	s.Equal(1, result.Updated)
	s.ElementsMatch([]string{testCategory, "c2"}, result.Touched.CategoryIDs)

	updated, _ := s.fx.byExternalID(s.T(), "t1")
	s.Equal(created.TransactionID, updated.TransactionID)
	s.Equal(created.CreatedAt, updated.CreatedAt)
	s.True(dec("-20").Equal(updated.Amount))
	s.Require().NotNil(updated.CategoryID)
	s.Equal("c2", *updated.CategoryID)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_RemovalTombstonesAndUnknownIsNoOp() {
	_, err := s.apply(domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-12.50", day(3), strPtr(testCategory))}, NextCursor: "cur1"})
	s.Require().NoError(err)

	result, err := s.apply(domain.DeltaPage{Removed: []string{"t1", "never-seen"}, NextCursor: "cur2"})
	s.Require().NoError(err)
	s.Equal(1, result.Removed)
	s.Equal([]string{testCategory}, result.Touched.CategoryIDs)

	t1, ok := s.fx.byExternalID(s.T(), "t1")
	s.Require().True(ok)
	s.True(t1.IsRemoved())

	visible, err := s.fx.repos.TransactionRepo.FindAllTransactions(s.ctx, domain.TransactionFilter{UserID: testUserID})
	s.Require().NoError(err)
	s.Empty(visible)

	// Removing again changes nothing.
	again, err := s.apply(domain.DeltaPage{Removed: []string{"t1"}, NextCursor: "cur3"})
	s.Require().NoError(err)
	s.Equal(0, again.Removed)
	s.Equal(1, again.Unchanged)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_AddedAndRemovedInSamePage() {
	result, err := s.apply(domain.DeltaPage{
		Added:      []domain.LedgerTransaction{ledgerTxn("t1", "-5", day(3), nil)},
		Removed:    []string{"t1"},
		NextCursor: "cur1",
	})
	s.Require().NoError(err)
	s.Equal(0, result.Created)
	_, ok := s.fx.byExternalID(s.T(), "t1")
	s.False(ok)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_ModifiedRecordRevivesTombstone() {
	_, err := s.apply(domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-5", day(3), nil)}, NextCursor: "cur1"})
	s.Require().NoError(err)
	_, err = s.apply(domain.DeltaPage{Removed: []string{"t1"}, NextCursor: "cur2"})
	s.Require().NoError(err)

	result, err := s.apply(domain.DeltaPage{Modified: []domain.LedgerTransaction{ledgerTxn("t1", "-5", day(3), nil)}, NextCursor: "cur3"})
	s.Require().NoError(err)
	s.Equal(1, result.Updated)

	t1, _ := s.fx.byExternalID(s.T(), "t1")
	s.False(t1.IsRemoved())
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_ResolvesCategoryKeyAndToleratesUnknownAccount() {
	rec := ledgerTxn("t1", "-8", day(3), nil)
	rec.CategoryKey = strPtr("FOOD_AND_DRINK")
	rec.ExternalAccountID = "acc-unknown"

	_, err := s.apply(domain.DeltaPage{Added: []domain.LedgerTransaction{rec}, NextCursor: "cur1"})
	s.Require().NoError(err)

	t1, _ := s.fx.byExternalID(s.T(), "t1")
	s.Require().NotNil(t1.CategoryID)
	s.Equal(testCategory, *t1.CategoryID)
	s.Nil(t1.BankAccountID)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_ForeignCategoryIsDropped() {
	s.Require().NoError(s.fx.repos.CategoryRepo.SaveCategory(s.ctx, domain.Category{
		CategoryID: "foreign", UserID: "user-2", Name: "Theirs", Type: domain.CategoryExpense,
	}))
	_, err := s.apply(domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-8", day(3), strPtr("foreign"))}, NextCursor: "cur1"})
	s.Require().NoError(err)

	t1, _ := s.fx.byExternalID(s.T(), "t1")
	s.Nil(t1.CategoryID)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_StaleCursorRollsBack() {
	account := s.fx.account(s.T())
	stale := "someone-else"
	page := domain.DeltaPage{Added: []domain.LedgerTransaction{ledgerTxn("t1", "-8", day(3), nil)}, NextCursor: "cur1"}

	err := s.fx.store.RunInTx(s.ctx, func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		_, err := s.engine.ApplyDelta(ctx, store, account, &stale, &page)
		return err
	})
	s.Require().ErrorIs(err, apperrors.ErrStorageConflict)

	s.Empty(s.fx.transactions(s.T()))
	s.Nil(s.fx.account(s.T()).Cursor)
}

func (s *ReconciliationEngineTestSuite) TestApplyDelta_ExternalIDOfAnotherUserConflicts() {
	s.Require().NoError(s.fx.repos.TransactionRepo.SaveTransaction(s.ctx, domain.Transaction{
		TransactionID: "other-txn", ExternalID: strPtr("t1"), UserID: "user-2", Amount: dec("1"), Date: day(2), Name: "theirs",
	}))
	_, err := s.apply(domain.DeltaPage{Modified: []domain.LedgerTransaction{ledgerTxn("t1", "-8", day(3), nil)}, NextCursor: "cur1"})
	s.Require().ErrorIs(err, apperrors.ErrStorageConflict)
	s.Nil(s.fx.account(s.T()).Cursor)
}

func TestApplyDelta_RejectsPageWithoutCursor(t *testing.T) {
	fx := newLedgerFixture(t)
	engine := services.NewReconciliationEngine()
	account := fx.account(t)

	err := fx.store.RunInTx(context.Background(), func(ctx context.Context, store portsrepo.LedgerTxStore) error {
		_, err := engine.ApplyDelta(ctx, store, account, nil, &domain.DeltaPage{})
		return err
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, fx.account(t).Cursor)
}
