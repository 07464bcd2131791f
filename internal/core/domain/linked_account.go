package domain

// LinkedAccount is a connection to a financial institution through the
// aggregation provider (one provider "item"). It owns the sync cursor.
type LinkedAccount struct {
	LinkedAccountID string  `json:"linkedAccountID"`
	ExternalItemID  string  `json:"externalItemID"` // provider item id, unique
	UserID          string  `json:"userID"`
	AccessToken     string  `json:"-"`      // sealed provider access token
	Cursor          *string `json:"cursor"` // nil until the first page commits
	InstitutionID   string  `json:"institutionID"`
	BankName        string  `json:"bankName"`
	Logo            string  `json:"logo"`
	URL             string  `json:"url"`
	IsActive        bool    `json:"isActive"`
	AuditFields
}

// BankAccount is a single account (checking, credit card, ...) inside a linked account.
type BankAccount struct {
	BankAccountID   string `json:"bankAccountID"`
	LinkedAccountID string `json:"linkedAccountID"`
	ExternalID      string `json:"externalID"` // provider account id, unique
	Name            string `json:"name"`
	Type            string `json:"type"`
	Mask            string `json:"mask"`
}

// LinkedAccountSummary is the listing view of a linked account.
type LinkedAccountSummary struct {
	LinkedAccountID string  `json:"linkedAccountID"`
	ExternalItemID  string  `json:"externalItemID"`
	BankName        string  `json:"bankName"`
	Logo            string  `json:"logo"`
	URL             string  `json:"url"`
	AccountsCount   int     `json:"accountsCount"`
	IsActive        bool    `json:"isActive"`
	Cursor          *string `json:"-"`
}

// Institution describes the bank behind a linked account.
type Institution struct {
	InstitutionID string
	Name          string
	Logo          string
	URL           string
}

// LinkToken is the result of exchanging a public token with the provider.
type LinkToken struct {
	AccessToken    string
	ExternalItemID string
	InstitutionID  string
}
