package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/budget_sync_app/internal/apperrors"
	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/SscSPs/budget_sync_app/internal/middleware"
	"github.com/SscSPs/budget_sync_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

const transactionsWebhookType = "TRANSACTIONS"

// syncWebhookCodes are the transaction webhook codes that mean new data is waiting.
var syncWebhookCodes = map[string]bool{
	"SYNC_UPDATES_AVAILABLE": true,
	"INITIAL_UPDATE":         true,
	"HISTORICAL_UPDATE":      true,
	"DEFAULT_UPDATE":         true,
}

type webhookHandler struct {
	syncService portssvc.SyncTriggerSvc
}

func registerWebhookRoutes(r *gin.Engine, cfg *config.Config, syncService portssvc.SyncTriggerSvc) error {
	webhookLimiter, err := middleware.NewMemoryRateLimiter(cfg.WebhookRateLimit)
	if err != nil {
		return fmt.Errorf("invalid webhook rate limit %q: %w", cfg.WebhookRateLimit, err)
	}
	RegisterWebhookRoutes(r.Group("/webhooks"), cfg.WebhookSecret, syncService, middleware.RateLimit(webhookLimiter))
	return nil
}

// RegisterWebhookRoutes registers the provider webhook behind the shared secret
// and any extra middleware, such as a rate limit.
func RegisterWebhookRoutes(rg *gin.RouterGroup, secret string, syncService portssvc.SyncTriggerSvc, extra ...gin.HandlerFunc) {
	h := &webhookHandler{syncService: syncService}
	chain := make([]gin.HandlerFunc, 0, len(extra)+2)
	chain = append(chain, extra...)
	chain = append(chain, middleware.WebhookAuth(secret), h.ledgerWebhook)
	rg.POST("/ledger", chain...)
}

// ledgerWebhook godoc
// @Summary Provider webhook
// @Description Starts a sync of the linked bank named by item_id when the provider reports new transactions. Other webhooks are acknowledged and ignored.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Param   X-Webhook-Secret header string true "Shared webhook secret"
// @Param   webhook body dto.LedgerWebhookRequest true "Webhook body"
// @Success 200 {object} map[string]string "Ignored"
// @Success 202 {object} map[string]string "Sync started or already running"
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Invalid secret"
// @Failure 404 {object} ErrorResponse "Unknown item"
// @Failure 429 {object} ErrorResponse "Too many requests"
// @Router /webhooks/ledger [post]
func (h *webhookHandler) ledgerWebhook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LedgerWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "webhook body")
		return
	}
	logger = logger.With(
		slog.String("webhook_type", req.WebhookType),
		slog.String("webhook_code", req.WebhookCode),
		slog.String("item_id", req.ItemID))

	if req.WebhookType != transactionsWebhookType || !syncWebhookCodes[req.WebhookCode] {
		logger.Debug("Ignoring webhook")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	run, err := h.syncService.TriggerSyncForItem(c.Request.Context(), req.ItemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyRunning) {
			logger.Info("Sync already running for webhook item")
			c.JSON(http.StatusAccepted, gin.H{"status": "already_running"})
			return
		}
		respondError(c, logger, err, "Failed to start sync from webhook")
		return
	}

	logger.Info("Sync started from webhook", slog.String("run_id", run.RunID))
	c.JSON(http.StatusAccepted, gin.H{"status": "started", "runID": run.RunID})
}
