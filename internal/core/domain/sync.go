package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerTransaction is a transaction as reported by the aggregation provider.
type LedgerTransaction struct {
	ExternalID        string          `json:"externalID"`
	ExternalAccountID string          `json:"externalAccountID"`
	Amount            decimal.Decimal `json:"amount"`
	Date              time.Time       `json:"date"`
	Name              string          `json:"name"`
	CategoryID        *string         `json:"categoryID,omitempty"`
	CategoryKey       *string         `json:"categoryKey,omitempty"` // provider category, resolved via Category.ExternalKey
}

// DeltaPage is one bounded page of changes from the provider.
type DeltaPage struct {
	Added      []LedgerTransaction `json:"added"`
	Modified   []LedgerTransaction `json:"modified"`
	Removed    []string            `json:"removed"`
	NextCursor string              `json:"nextCursor"`
	HasMore    bool                `json:"hasMore"`
}

// Size is the number of records carried by the page.
func (p DeltaPage) Size() int {
	return len(p.Added) + len(p.Modified) + len(p.Removed)
}

// TouchedSet names the entities whose derived figures may be stale.
type TouchedSet struct {
	UserID        string
	CategoryIDs   []string
	AccountIDs    []string
	Uncategorized bool // an uncategorized transaction was touched
}

// IsEmpty reports whether nothing was touched.
func (t TouchedSet) IsEmpty() bool {
	return len(t.CategoryIDs) == 0 && len(t.AccountIDs) == 0 && !t.Uncategorized
}

// NewTouchedSet builds a TouchedSet with de-duplicated, sorted ids.
func NewTouchedSet(userID string, categoryIDs, accountIDs map[string]struct{}, uncategorized bool) TouchedSet {
	return TouchedSet{
		UserID:        userID,
		CategoryIDs:   sortedKeys(categoryIDs),
		AccountIDs:    sortedKeys(accountIDs),
		Uncategorized: uncategorized,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ApplyResult is what the reconciliation engine reports for one page.
type ApplyResult struct {
	Touched    TouchedSet
	Created    int
	Updated    int
	Removed    int
	Unchanged  int
	NextCursor string
}

// RecomputeResult counts the aggregate rows rewritten by a recomputation.
type RecomputeResult struct {
	BudgetsUpdated int
	GoalsUpdated   int
}

// SyncState is the state of a sync run for one linked account.
type SyncState string

const (
	SyncIdle          SyncState = "IDLE"
	SyncFetching      SyncState = "FETCHING"
	SyncReconciling   SyncState = "RECONCILING"
	SyncRecalculating SyncState = "RECALCULATING"
	SyncFailed        SyncState = "FAILED"
)

// IsActive reports whether a run in this state still holds the account.
func (s SyncState) IsActive() bool {
	return s == SyncFetching || s == SyncReconciling || s == SyncRecalculating
}

// SyncRun is a snapshot of a sync run.
type SyncRun struct {
	RunID           string     `json:"runID"`
	LinkedAccountID string     `json:"linkedAccountID"`
	State           SyncState  `json:"state"`
	StartedAt       time.Time  `json:"startedAt"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
	PagesApplied    int        `json:"pagesApplied"`
	Created         int        `json:"created"`
	Updated         int        `json:"updated"`
	Removed         int        `json:"removed"`
	Cursor          *string    `json:"-"`
	Error           string     `json:"error,omitempty"`
}
