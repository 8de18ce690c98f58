package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/models"
)

// SyncLogRepository stores the append-only grade-passback audit trail.
type SyncLogRepository interface {
	Append(ctx context.Context, entry *models.SyncLogEntry) error
	ListByAttempt(ctx context.Context, attemptID uint, limit int) ([]models.SyncLogEntry, error)
}

type syncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository builds a sync-log repository.
func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) Append(ctx context.Context, entry *models.SyncLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByAttempt returns delivery audit entries newest first.
func (r *syncLogRepository) ListByAttempt(ctx context.Context, attemptID uint, limit int) ([]models.SyncLogEntry, error) {
	query := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("synced_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.SyncLogEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	return entries, nil
}
