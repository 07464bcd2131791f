package domain

import (
	"strings"
	"time"
)

// TransactionFilter is a fully specified transaction query. Storage backends
// turn it into a predicate (see Matches) or a SQL clause; nothing mutates it
// while a query is being built.
type TransactionFilter struct {
	UserID         string
	CategoryID     *string
	BankAccountID  *string
	From           *time.Time // inclusive
	To             *time.Time // inclusive
	NameContains   string
	IncludeRemoved bool
}

// Matches reports whether t satisfies the filter.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if !f.IncludeRemoved && t.IsRemoved() {
		return false
	}
	if f.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *f.CategoryID) {
		return false
	}
	if f.BankAccountID != nil && (t.BankAccountID == nil || *t.BankAccountID != *f.BankAccountID) {
		return false
	}
	day := CalendarDay(t.Date)
	if f.From != nil && day.Before(CalendarDay(*f.From)) {
		return false
	}
	if f.To != nil && day.After(CalendarDay(*f.To)) {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	return true
}

// BudgetFilter selects the transactions that feed a budget.
func BudgetFilter(b Budget) TransactionFilter {
	from, to := b.StartDate, b.EndDate
	return TransactionFilter{UserID: b.UserID, CategoryID: b.CategoryID, From: &from, To: &to}
}

// GoalFilter selects the transactions that feed a goal.
func GoalFilter(g Goal) TransactionFilter {
	from, to := g.StartDate, g.EndDate
	return TransactionFilter{UserID: g.UserID, CategoryID: g.CategoryID, BankAccountID: g.BankAccountID, From: &from, To: &to}
}

// LinkedAccountStatus filters linked accounts by their active flag.
type LinkedAccountStatus string

const (
	StatusActive   LinkedAccountStatus = "active"
	StatusInactive LinkedAccountStatus = "inactive"
	StatusAll      LinkedAccountStatus = "all"
)

// LinkedAccountFilter is a fully specified linked account query.
type LinkedAccountFilter struct {
	UserID string
	Name   string
	Status LinkedAccountStatus
}

// Matches reports whether a satisfies the filter.
func (f LinkedAccountFilter) Matches(a LinkedAccount) bool {
	if f.UserID != "" && a.UserID != f.UserID {
		return false
	}
	if name := strings.TrimSpace(f.Name); name != "" && !strings.Contains(strings.ToLower(a.BankName), strings.ToLower(name)) {
		return false
	}
	switch f.Status {
	case StatusActive:
		return a.IsActive
	case StatusInactive:
		return !a.IsActive
	}
	return true
}
