package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/middleware"
)

// WebhookNotifier posts {"userId": ...} to a configured URL whenever a
// user's ledger changes.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a WebhookNotifier. A nil client gets a 10 second timeout.
func NewWebhookNotifier(url string, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookNotifier{url: url, client: client}
}

type changePayload struct {
	UserID string `json:"userId"`
}

// NotifyLedgerChanged implements services.ChangeNotifier
func (n *WebhookNotifier) NotifyLedgerChanged(ctx context.Context, userID string) error {
	body, err := json.Marshal(changePayload{UserID: userID})
	if err != nil {
		return fmt.Errorf("encoding change notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building change notification: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending change notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("change notification rejected with status %d", resp.StatusCode)
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Change notification delivered", slog.String("user_id", userID))
	return nil
}

// LogNotifier only logs ledger changes. It is used when no webhook is configured.
type LogNotifier struct{}

// NotifyLedgerChanged implements services.ChangeNotifier
func (LogNotifier) NotifyLedgerChanged(ctx context.Context, userID string) error {
	middleware.GetLoggerFromCtx(ctx).Info("Ledger changed", slog.String("user_id", userID))
	return nil
}
