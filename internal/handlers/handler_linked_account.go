package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/budget_sync_app/internal/core/ports/services"
	"github.com/SscSPs/budget_sync_app/internal/dto"
	"github.com/SscSPs/budget_sync_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// linkedAccountHandler handles HTTP requests related to linked bank accounts and their syncs.
type linkedAccountHandler struct {
	linkedAccountService portssvc.LinkedAccountSvcFacade
	syncService          portssvc.SyncSvcFacade
}

// newLinkedAccountHandler creates a new linkedAccountHandler.
func newLinkedAccountHandler(las portssvc.LinkedAccountSvcFacade, ss portssvc.SyncSvcFacade) *linkedAccountHandler {
	return &linkedAccountHandler{
		linkedAccountService: las,
		syncService:          ss,
	}
}

// RegisterLinkedAccountRoutes registers routes related to linked accounts.
func RegisterLinkedAccountRoutes(rg *gin.RouterGroup, linkedAccountService portssvc.LinkedAccountSvcFacade, syncService portssvc.SyncSvcFacade) {
	h := newLinkedAccountHandler(linkedAccountService, syncService)

	linked := rg.Group("/linked-accounts")
	{
		linked.POST("/exchange", h.exchangePublicToken)
		linked.GET("", h.listLinkedAccounts)
		linked.GET("/:id", h.getLinkedAccount)
		linked.PATCH("/:id", h.updateLinkedAccount)
		linked.POST("/:id/sync", h.triggerSync)
		linked.GET("/:id/sync", h.getSyncStatus)
	}
}

// exchangePublicToken godoc
// @Summary Link a bank
// @Description Exchanges the public token from the bank link flow, stores the institution and its accounts, and starts the first sync.
// @Tags linked-accounts
// @Accept  json
// @Produce  json
// @Param   request body dto.ExchangePublicTokenRequest true "Public token"
// @Success 201 {object} dto.LinkedAccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 409 {object} ErrorResponse "Bank already linked"
// @Failure 500 {object} ErrorResponse "Failed to link bank"
// @Security BearerAuth
// @Router /linked-accounts/exchange [post]
func (h *linkedAccountHandler) exchangePublicToken(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ExchangePublicTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request format")
		return
	}

	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	acc, bankAccounts, err := h.linkedAccountService.ExchangePublicToken(c.Request.Context(), identity, req)
	if err != nil {
		respondError(c, logger, err, "Failed to link bank")
		return
	}

	logger.Info("Bank linked", slog.String("linked_account_id", acc.LinkedAccountID))
	c.JSON(http.StatusCreated, dto.ToLinkedAccountResponse(acc, bankAccounts))
}

// listLinkedAccounts godoc
// @Summary List linked banks
// @Description Lists the caller's linked banks with their account counts.
// @Tags linked-accounts
// @Produce  json
// @Param   name query string false "Bank name contains"
// @Param   status query string false "active, inactive or all" default(all)
// @Success 200 {array} dto.LinkedAccountSummaryResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Failed to list linked accounts"
// @Security BearerAuth
// @Router /linked-accounts [get]
func (h *linkedAccountHandler) listLinkedAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	var params dto.ListLinkedAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err, "query parameters")
		return
	}

	summaries, err := h.linkedAccountService.ListLinkedAccounts(c.Request.Context(), identity, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list linked accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToLinkedAccountSummaryResponses(summaries))
}

// getLinkedAccount godoc
// @Summary Get a linked bank
// @Tags linked-accounts
// @Produce  json
// @Param   id path string true "Linked account ID"
// @Success 200 {object} dto.LinkedAccountResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Linked account not found"
// @Failure 500 {object} ErrorResponse "Failed to retrieve linked account"
// @Security BearerAuth
// @Router /linked-accounts/{id} [get]
func (h *linkedAccountHandler) getLinkedAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	acc, bankAccounts, err := h.linkedAccountService.GetLinkedAccount(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve linked account")
		return
	}
	c.JSON(http.StatusOK, dto.ToLinkedAccountResponse(acc, bankAccounts))
}

// updateLinkedAccount godoc
// @Summary Pause or resume a linked bank
// @Description Inactive banks are skipped by scheduled and webhook syncs.
// @Tags linked-accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Linked account ID"
// @Param   request body dto.UpdateLinkedAccountRequest true "Active flag"
// @Success 200 {object} dto.LinkedAccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Linked account not found"
// @Security BearerAuth
// @Router /linked-accounts/{id} [patch]
func (h *linkedAccountHandler) updateLinkedAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateLinkedAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err, "request format")
		return
	}
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	acc, err := h.linkedAccountService.SetLinkedAccountActive(c.Request.Context(), identity, c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, logger, err, "Failed to update linked account")
		return
	}
	c.JSON(http.StatusOK, dto.ToLinkedAccountResponse(acc, nil))
}

// triggerSync godoc
// @Summary Start a sync
// @Description Starts an incremental sync of the linked bank in the background. Only one sync per bank runs at a time.
// @Tags sync
// @Produce  json
// @Param   id path string true "Linked account ID"
// @Success 202 {object} dto.SyncRunResponse
// @Failure 400 {object} ErrorResponse "Linked account is inactive"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Linked account not found"
// @Failure 409 {object} ErrorResponse "A sync is already running"
// @Security BearerAuth
// @Router /linked-accounts/{id}/sync [post]
func (h *linkedAccountHandler) triggerSync(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	linkedAccountID := c.Param("id")
	logger = logger.With(slog.String("linked_account_id", linkedAccountID))

	run, err := h.syncService.TriggerSync(c.Request.Context(), identity, linkedAccountID)
	if err != nil {
		respondError(c, logger, err, "Failed to start sync")
		return
	}
	logger.Info("Sync triggered", slog.String("run_id", run.RunID))
	c.JSON(http.StatusAccepted, dto.ToSyncRunResponse(run))
}

// getSyncStatus godoc
// @Summary Get sync status
// @Description Returns the latest sync run of the linked bank, or an IDLE status if none ran yet.
// @Tags sync
// @Produce  json
// @Param   id path string true "Linked account ID"
// @Success 200 {object} dto.SyncRunResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Linked account not found"
// @Security BearerAuth
// @Router /linked-accounts/{id}/sync [get]
func (h *linkedAccountHandler) getSyncStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	identity, ok := middleware.GetIdentityFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	run, err := h.syncService.GetSyncStatus(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, logger, err, "Failed to get sync status")
		return
	}
	c.JSON(http.StatusOK, dto.ToSyncRunResponse(run))
}
