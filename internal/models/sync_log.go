package models

import (
	"time"

	"gorm.io/datatypes"
)

// SyncLogEntry is one audit record of a single grade-book delivery attempt.
// Entries are append-only; an attempt accumulates one per delivery try.
type SyncLogEntry struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	AttemptID    uint              `gorm:"not null;index" json:"attempt_id"`
	CanvasStatus string            `gorm:"size:16;not null" json:"canvas_status"`
	Detail       datatypes.JSONMap `gorm:"type:json" json:"detail"`
	SyncedAt     time.Time         `gorm:"not null;index" json:"synced_at"`
}

// Delivery outcome values reported by the sync worker.
const (
	CanvasStatusSuccess = "success"
	CanvasStatusFailed  = "failed"
	CanvasStatusSkipped = "skipped"
	CanvasStatusError   = "error"
)

// IsKnownCanvasStatus reports whether the worker-reported status is one the audit trail accepts.
func IsKnownCanvasStatus(status string) bool {
	switch status {
	case CanvasStatusSuccess, CanvasStatusFailed, CanvasStatusSkipped, CanvasStatusError:
		return true
	}
	return false
}
