// Package plaid adapts the Plaid API to the LedgerProvider port.
package plaid

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
	"github.com/SscSPs/budget_sync_app/internal/core/ports/providers"
	"github.com/plaid/plaid-go/v29/plaid"
)

const requestTimeout = 30 * time.Second

// Config selects the Plaid environment and credentials.
type Config struct {
	ClientID string
	Secret   string
	Env      string // sandbox or production
	PageSize int
}

// Client implements providers.LedgerProvider over the Plaid API.
type Client struct {
	api      *plaid.PlaidApiService
	pageSize int32
	logger   *slog.Logger
}

var _ providers.LedgerProvider = (*Client)(nil)

// NewClient builds a Plaid client for the configured environment.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	env, err := environment(cfg.Env)
	if err != nil {
		return nil, err
	}
	pc := plaid.NewConfiguration()
	pc.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	pc.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	pc.UseEnvironment(env)
	pc.HTTPClient = &http.Client{Timeout: requestTimeout}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 250
	}
	return &Client{
		api:      plaid.NewAPIClient(pc).PlaidApi,
		pageSize: int32(pageSize),
		logger:   logger,
	}, nil
}

func environment(name string) (plaid.Environment, error) {
	switch name {
	case "", "sandbox":
		return plaid.Sandbox, nil
	case "production":
		return plaid.Production, nil
	default:
		return "", fmt.Errorf("unknown plaid environment %q", name)
	}
}

// FetchPage calls /transactions/sync once.
func (c *Client) FetchPage(ctx context.Context, accessToken string, cursor *string) (*domain.DeltaPage, error) {
	req := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != nil {
		req.SetCursor(*cursor)
	}
	req.SetCount(c.pageSize)

	resp, httpResp, err := c.api.TransactionsSync(ctx).TransactionsSyncRequest(*req).Execute()
	if err != nil {
		return nil, c.wrap(ctx, "transactions sync", httpResp, err)
	}

	page := &domain.DeltaPage{
		Added:      make([]domain.LedgerTransaction, 0, len(resp.GetAdded())),
		Modified:   make([]domain.LedgerTransaction, 0, len(resp.GetModified())),
		Removed:    make([]string, 0, len(resp.GetRemoved())),
		NextCursor: resp.GetNextCursor(),
		HasMore:    resp.GetHasMore(),
	}
	for _, t := range resp.GetAdded() {
		lt, err := fromPlaidTransaction(t)
		if err != nil {
			return nil, err
		}
		page.Added = append(page.Added, lt)
	}
	for _, t := range resp.GetModified() {
		lt, err := fromPlaidTransaction(t)
		if err != nil {
			return nil, err
		}
		page.Modified = append(page.Modified, lt)
	}
	for _, r := range resp.GetRemoved() {
		page.Removed = append(page.Removed, r.GetTransactionId())
	}
	return page, nil
}

// ExchangePublicToken swaps a link public token for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*domain.LinkToken, error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, httpResp, err := c.api.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return nil, c.wrap(ctx, "public token exchange", httpResp, err)
	}

	token := &domain.LinkToken{AccessToken: resp.GetAccessToken(), ExternalItemID: resp.GetItemId()}
	item, httpResp, err := c.api.ItemGet(ctx).ItemGetRequest(*plaid.NewItemGetRequest(token.AccessToken)).Execute()
	if err != nil {
		return nil, c.wrap(ctx, "item get", httpResp, err)
	}
	itemData := item.GetItem()
	token.InstitutionID = itemData.GetInstitutionId()
	return token, nil
}

// GetInstitution describes the bank behind an access token.
func (c *Client) GetInstitution(ctx context.Context, accessToken string) (*domain.Institution, error) {
	item, httpResp, err := c.api.ItemGet(ctx).ItemGetRequest(*plaid.NewItemGetRequest(accessToken)).Execute()
	if err != nil {
		return nil, c.wrap(ctx, "item get", httpResp, err)
	}
	itemData := item.GetItem()
	institutionID := itemData.GetInstitutionId()
	if institutionID == "" {
		return &domain.Institution{}, nil
	}

	req := plaid.NewInstitutionsGetByIdRequest(institutionID, []plaid.CountryCode{plaid.COUNTRYCODE_US})
	req.SetOptions(plaid.InstitutionsGetByIdRequestOptions{IncludeOptionalMetadata: plaid.PtrBool(true)})
	resp, httpResp, err := c.api.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*req).Execute()
	if err != nil {
		return nil, c.wrap(ctx, "institution get", httpResp, err)
	}
	inst := resp.GetInstitution()
	return &domain.Institution{
		InstitutionID: institutionID,
		Name:          inst.GetName(),
		Logo:          inst.GetLogo(),
		URL:           inst.GetUrl(),
	}, nil
}

// GetAccounts lists the accounts behind an access token.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]domain.BankAccount, error) {
	resp, httpResp, err := c.api.AccountsGet(ctx).AccountsGetRequest(*plaid.NewAccountsGetRequest(accessToken)).Execute()
	if err != nil {
		return nil, c.wrap(ctx, "accounts get", httpResp, err)
	}
	out := make([]domain.BankAccount, 0, len(resp.GetAccounts()))
	for _, a := range resp.GetAccounts() {
		out = append(out, domain.BankAccount{
			ExternalID: a.GetAccountId(),
			Name:       a.GetName(),
			Type:       string(a.GetType()),
			Mask:       a.GetMask(),
		})
	}
	return out, nil
}

// wrap classifies a failed call and logs the provider's error code.
func (c *Client) wrap(ctx context.Context, op string, httpResp *http.Response, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("plaid %s: %w", op, ctx.Err())
	}
	status := 0
	if httpResp != nil {
		status = httpResp.StatusCode
	}
	var errorType, errorCode string
	if pe, perr := plaid.ToPlaidError(err); perr == nil {
		errorType, errorCode = string(pe.ErrorType), pe.ErrorCode
	}
	c.logger.Warn("Plaid request failed",
		slog.String("op", op),
		slog.Int("status", status),
		slog.String("error_type", errorType),
		slog.String("error_code", errorCode))
	return fmt.Errorf("plaid %s: %w", op, classify(status, errorType, errorCode, err))
}
