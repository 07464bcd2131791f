package domain

// CategoryType is the direction of money a category tracks.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Category groups transactions. Transactions and budgets reference it weakly.
type Category struct {
	CategoryID  string       `json:"categoryID"`
	UserID      string       `json:"userID"`
	Name        string       `json:"name"`
	Icon        string       `json:"icon"`
	Type        CategoryType `json:"type"`
	ExternalKey *string      `json:"externalKey,omitempty"` // provider category mapped onto this one
	AuditFields
}
