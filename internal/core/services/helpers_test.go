package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/budget_sync_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/repositories/memory"
	"github.com/SscSPs/budget_sync_app/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID        = "user-1"
	testLinkedAccount = "la-1"
	testBankAccount   = "ba-1"
	testCategory      = "c1"
	testAccessToken   = "access-sandbox-1"
)

var (
	june1  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	june30 = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptrDec(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func day(d int) time.Time { return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC) }

// --- fake ledger provider ---

// fakeLedger serves scripted pages keyed by the cursor they answer.
type fakeLedger struct {
	mu       sync.Mutex
	pages    map[string]domain.DeltaPage // "" answers the nil cursor
	failures []error                     // returned, in order, before pages are served
	always   error                       // returned on every call when set
	calls    []string
	release  chan struct{} // when set, FetchPage waits for it to close
	entered  chan struct{} // signalled once per FetchPage call
}

var _ providers.LedgerProvider = (*fakeLedger)(nil)

func newFakeLedger() *fakeLedger {
	return &fakeLedger{pages: make(map[string]domain.DeltaPage), entered: make(chan struct{}, 16)}
}

func (f *fakeLedger) addPage(cursor *string, page domain.DeltaPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[cursorKey(cursor)] = page
}

func (f *fakeLedger) failNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, errs...)
}

func (f *fakeLedger) cursorsRequested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func cursorKey(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}

func (f *fakeLedger) FetchPage(ctx context.Context, accessToken string, cursor *string) (*domain.DeltaPage, error) {
	select {
	case f.entered <- struct{}{}:
	default:
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cursorKey(cursor))

	if accessToken != testAccessToken {
		return nil, errors.New("unexpected access token " + accessToken)
	}
	if f.always != nil {
		return nil, f.always
	}
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	page, ok := f.pages[cursorKey(cursor)]
	if !ok {
		// Nothing new: the provider hands back a cursor for the current position.
		next := cursorKey(cursor)
		if next == "" {
			next = "empty"
		}
		return &domain.DeltaPage{NextCursor: next}, nil
	}
	return &page, nil
}

func (f *fakeLedger) ExchangePublicToken(ctx context.Context, publicToken string) (*domain.LinkToken, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeLedger) GetInstitution(ctx context.Context, accessToken string) (*domain.Institution, error) {
	return nil, errors.New("not scripted")
}

func (f *fakeLedger) GetAccounts(ctx context.Context, accessToken string) ([]domain.BankAccount, error) {
	return nil, errors.New("not scripted")
}

// --- Mock ChangeNotifier ---
type MockChangeNotifier struct {
	mock.Mock
}

var _ portssvc.ChangeNotifier = (*MockChangeNotifier)(nil)

func (m *MockChangeNotifier) NotifyLedgerChanged(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- seeded store ---

type ledgerFixture struct {
	store  *memory.Store
	repos  portsrepo.RepositoryProvider
	cipher *utils.TokenCipher
}

// newLedgerFixture seeds one user with a linked account, a bank account,
// an expense category and a June budget on that category.
func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := memory.NewRepositoryProvider(store)
	cipher, err := utils.NewTokenCipher("")
	require.NoError(t, err)

	sealed, err := cipher.Seal(testAccessToken)
	require.NoError(t, err)

	require.NoError(t, repos.LinkedAccountRepo.SaveLinkedAccount(ctx, domain.LinkedAccount{
		LinkedAccountID: testLinkedAccount,
		ExternalItemID:  "item-1",
		UserID:          testUserID,
		AccessToken:     sealed,
		BankName:        "First Platypus Bank",
		IsActive:        true,
	}))
	require.NoError(t, repos.LinkedAccountRepo.SaveBankAccounts(ctx, []domain.BankAccount{{
		BankAccountID:   testBankAccount,
		LinkedAccountID: testLinkedAccount,
		ExternalID:      "acc-1",
		Name:            "Checking",
	}}))
	require.NoError(t, repos.CategoryRepo.SaveCategory(ctx, domain.Category{
		CategoryID:  testCategory,
		UserID:      testUserID,
		Name:        "Food",
		Type:        domain.CategoryExpense,
		ExternalKey: strPtr("FOOD_AND_DRINK"),
	}))
	require.NoError(t, repos.BudgetRepo.SaveBudget(ctx, domain.Budget{
		BudgetID:     "b1",
		UserID:       testUserID,
		Title:        "Groceries",
		TargetAmount: dec("100"),
		StartDate:    june1,
		EndDate:      june30,
		CategoryID:   strPtr(testCategory),
	}))

	return &ledgerFixture{store: store, repos: repos, cipher: cipher}
}

func (f *ledgerFixture) account(t *testing.T) *domain.LinkedAccount {
	t.Helper()
	acc, err := f.repos.LinkedAccountRepo.FindLinkedAccountByID(context.Background(), testLinkedAccount)
	require.NoError(t, err)
	return acc
}

func (f *ledgerFixture) budget(t *testing.T, id string) *domain.Budget {
	t.Helper()
	b, err := f.repos.BudgetRepo.FindBudgetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

// transactions returns every stored transaction of the test user, tombstones included.
func (f *ledgerFixture) transactions(t *testing.T) []domain.Transaction {
	t.Helper()
	txns, err := f.repos.TransactionRepo.FindAllTransactions(context.Background(), domain.TransactionFilter{UserID: testUserID, IncludeRemoved: true})
	require.NoError(t, err)
	return txns
}

func (f *ledgerFixture) byExternalID(t *testing.T, externalID string) (domain.Transaction, bool) {
	t.Helper()
	found, err := f.repos.TransactionRepo.FindTransactionsByExternalIDs(context.Background(), []string{externalID})
	require.NoError(t, err)
	txn, ok := found[externalID]
	return txn, ok
}

func ledgerTxn(externalID, amount string, date time.Time, categoryID *string) domain.LedgerTransaction {
	return domain.LedgerTransaction{
		ExternalID:        externalID,
		ExternalAccountID: "acc-1",
		Amount:            dec(amount),
		Date:              date,
		Name:              "txn " + externalID,
		CategoryID:        categoryID,
	}
}
