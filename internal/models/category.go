package models

// Category is a row of categories.
type Category struct {
	CategoryID  string  `db:"category_id"`
	UserID      string  `db:"user_id"`
	Name        string  `db:"name"`
	Icon        string  `db:"icon"`
	Type        string  `db:"category_type"`
	ExternalKey *string `db:"external_key"`
	AuditFields
}
