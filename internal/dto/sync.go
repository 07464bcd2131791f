package dto

import (
	"time"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

// SyncRunResponse reports the progress of a sync run.
type SyncRunResponse struct {
	RunID           string           `json:"runID"`
	LinkedAccountID string           `json:"linkedAccountID"`
	State           domain.SyncState `json:"state"`
	StartedAt       time.Time        `json:"startedAt"`
	FinishedAt      *time.Time       `json:"finishedAt,omitempty"`
	PagesApplied    int              `json:"pagesApplied"`
	Created         int              `json:"created"`
	Updated         int              `json:"updated"`
	Removed         int              `json:"removed"`
	Error           string           `json:"error,omitempty"`
}

// LedgerWebhookRequest is the subset of the provider's webhook body we act on.
type LedgerWebhookRequest struct {
	WebhookType string `json:"webhook_type" binding:"required"`
	WebhookCode string `json:"webhook_code" binding:"required"`
	ItemID      string `json:"item_id" binding:"required"`
}

// ToSyncRunResponse converts a domain.SyncRun to SyncRunResponse DTO.
func ToSyncRunResponse(run *domain.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		RunID:           run.RunID,
		LinkedAccountID: run.LinkedAccountID,
		State:           run.State,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
		PagesApplied:    run.PagesApplied,
		Created:         run.Created,
		Updated:         run.Updated,
		Removed:         run.Removed,
		Error:           run.Error,
	}
}
