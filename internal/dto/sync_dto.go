package dto

import (
	"time"

	"github.com/avhamm/vivalab-api/internal/models"
)

// SyncResultRequest is the sync worker's report of one delivery attempt.
type SyncResultRequest struct {
	Status string                 `json:"status" validate:"required,oneof=success failed skipped error"`
	Detail map[string]interface{} `json:"detail"`
}

// SyncLogEntryResponse serializes one delivery audit entry.
type SyncLogEntryResponse struct {
	ID           uint                   `json:"id"`
	AttemptID    uint                   `json:"attempt_id"`
	CanvasStatus string                 `json:"canvas_status"`
	Detail       map[string]interface{} `json:"detail"`
	SyncedAt     time.Time              `json:"synced_at"`
}

// NewSyncLogEntryResponse converts a SyncLogEntry model into a DTO.
func NewSyncLogEntryResponse(model models.SyncLogEntry) SyncLogEntryResponse {
	return SyncLogEntryResponse{
		ID:           model.ID,
		AttemptID:    model.AttemptID,
		CanvasStatus: model.CanvasStatus,
		Detail:       model.Detail,
		SyncedAt:     model.SyncedAt,
	}
}

// NewSyncLogEntryResponseSlice converts sync-log models into DTOs.
func NewSyncLogEntryResponseSlice(models []models.SyncLogEntry) []SyncLogEntryResponse {
	responses := make([]SyncLogEntryResponse, 0, len(models))
	for _, entry := range models {
		responses = append(responses, NewSyncLogEntryResponse(entry))
	}

	return responses
}
