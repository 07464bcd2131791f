package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestTransactionFilterMatches(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	removedAt := day(20)
	txn := Transaction{
		TransactionID: "t1",
		UserID:        "u1",
		CategoryID:    strPtr("food"),
		BankAccountID: strPtr("chk"),
		Amount:        decimal.NewFromInt(-40),
		Date:          day(10),
		Name:          "Corner Grocery",
	}

	from, to := day(1), day(10)
	late := day(11)

	tests := []struct {
		name   string
		filter TransactionFilter
		txn    Transaction
		want   bool
	}{
		{"empty filter", TransactionFilter{}, txn, true},
		{"other user", TransactionFilter{UserID: "u2"}, txn, false},
		{"category match", TransactionFilter{UserID: "u1", CategoryID: strPtr("food")}, txn, true},
		{"category mismatch", TransactionFilter{CategoryID: strPtr("rent")}, txn, false},
		{"bank account mismatch", TransactionFilter{BankAccountID: strPtr("sav")}, txn, false},
		{"inclusive window end", TransactionFilter{From: &from, To: &to}, txn, true},
		{"before window", TransactionFilter{From: &late}, txn, false},
		{"evening of the last window day", TransactionFilter{From: &from, To: &to}, withDate(txn, day(10).Add(19*time.Hour)), true},
		{"morning after the window", TransactionFilter{To: &to}, withDate(txn, day(11).Add(time.Hour)), false},
		{"name is case insensitive", TransactionFilter{NameContains: "grocery"}, txn, true},
		{"tombstoned hidden", TransactionFilter{}, withRemoved(txn, removedAt), false},
		{"tombstoned included", TransactionFilter{IncludeRemoved: true}, withRemoved(txn, removedAt), true},
		{"uncategorized with category filter", TransactionFilter{CategoryID: strPtr("food")}, Transaction{UserID: "u1"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(tc.txn))
		})
	}
}

func withDate(t Transaction, d time.Time) Transaction {
	t.Date = d
	return t
}

func withRemoved(t Transaction, at time.Time) Transaction {
	t.RemovedAt = &at
	return t
}

func TestLinkedAccountFilterMatches(t *testing.T) {
	active := LinkedAccount{UserID: "u1", BankName: "First Platypus Bank", IsActive: true}
	inactive := LinkedAccount{UserID: "u1", BankName: "Tartan Bank", IsActive: false}

	assert.True(t, LinkedAccountFilter{UserID: "u1", Status: StatusAll}.Matches(inactive))
	assert.True(t, LinkedAccountFilter{Status: StatusActive}.Matches(active))
	assert.False(t, LinkedAccountFilter{Status: StatusActive}.Matches(inactive))
	assert.True(t, LinkedAccountFilter{Status: StatusInactive}.Matches(inactive))
	assert.True(t, LinkedAccountFilter{Name: " platypus "}.Matches(active))
	assert.False(t, LinkedAccountFilter{Name: "tartan"}.Matches(active))
	assert.False(t, LinkedAccountFilter{UserID: "u2"}.Matches(active))
}

func TestCompletionRules(t *testing.T) {
	target := decimal.NewFromInt(100)

	assert.True(t, BudgetCompleted(decimal.NewFromInt(-100), target, CategoryExpense))
	assert.False(t, BudgetCompleted(decimal.NewFromInt(-99), target, CategoryExpense))
	assert.False(t, BudgetCompleted(decimal.NewFromInt(150), target, CategoryExpense))
	assert.True(t, BudgetCompleted(decimal.NewFromInt(150), target, CategoryIncome))
	assert.True(t, GoalCompleted(decimal.NewFromInt(100), target))
	assert.False(t, GoalCompleted(decimal.NewFromInt(-100), target))
}

func TestIdentityCanAccess(t *testing.T) {
	assert.True(t, UserIdentity("u1").CanAccess("u1"))
	assert.False(t, UserIdentity("u1").CanAccess("u2"))
	assert.False(t, UserIdentity("").CanAccess(""))
	assert.True(t, SystemIdentity().CanAccess("anyone"))
}

func TestNewTouchedSetSortsAndDedupes(t *testing.T) {
	ts := NewTouchedSet("u1",
		map[string]struct{}{"b": {}, "a": {}},
		map[string]struct{}{},
		false)
	assert.Equal(t, []string{"a", "b"}, ts.CategoryIDs)
	assert.Empty(t, ts.AccountIDs)
	assert.False(t, ts.IsEmpty())
	assert.True(t, TouchedSet{}.IsEmpty())
}

func TestCalendarDay(t *testing.T) {
	evening := time.Date(2024, 6, 30, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), CalendarDay(evening))

	// The date as written in its own zone, not the UTC instant.
	est := time.FixedZone("EST", -5*3600)
	lateEast := time.Date(2024, 6, 30, 22, 0, 0, 0, est)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), CalendarDay(lateEast))
}
