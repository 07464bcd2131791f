package models

// LinkedAccount is a row of linked_accounts.
type LinkedAccount struct {
	LinkedAccountID string  `db:"linked_account_id"`
	ExternalItemID  string  `db:"external_item_id"`
	UserID          string  `db:"user_id"`
	AccessToken     string  `db:"access_token"` // sealed
	Cursor          *string `db:"sync_cursor"`
	InstitutionID   string  `db:"institution_id"`
	BankName        string  `db:"bank_name"`
	Logo            string  `db:"logo"`
	URL             string  `db:"url"`
	IsActive        bool    `db:"is_active"`
	AuditFields
}

// BankAccount is a row of bank_accounts.
type BankAccount struct {
	BankAccountID   string `db:"bank_account_id"`
	LinkedAccountID string `db:"linked_account_id"`
	ExternalID      string `db:"external_id"`
	Name            string `db:"name"`
	Type            string `db:"account_type"`
	Mask            string `db:"mask"`
}
