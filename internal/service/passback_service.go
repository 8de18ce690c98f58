package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/avhamm/vivalab-api/internal/dto"
	"github.com/avhamm/vivalab-api/internal/models"
	"github.com/avhamm/vivalab-api/internal/observability"
	"github.com/avhamm/vivalab-api/internal/repository"
)

// ErrUnknownSyncStatus indicates the worker reported a delivery status outside
// the accepted set.
var ErrUnknownSyncStatus = errors.New("unknown passback status")

// PassbackService records and exposes the grade-book delivery audit trail.
// The queue delivers at least once, so recording the same outcome twice is
// safe: every report appends a fresh entry.
type PassbackService interface {
	RecordResult(ctx context.Context, attemptID uint, payload dto.SyncResultRequest) (dto.SyncLogEntryResponse, error)
	History(ctx context.Context, attemptID uint, limit int) ([]dto.SyncLogEntryResponse, error)
	LatestStatus(ctx context.Context, attemptID uint) (string, error)
}

type passbackService struct {
	syncLog   repository.SyncLogRepository
	attempts  repository.AttemptRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPassbackService constructs the delivery audit service. The redis client
// is optional; without it LatestStatus falls back to the database.
func NewPassbackService(syncLog repository.SyncLogRepository, attempts repository.AttemptRepository, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) PassbackService {
	return &passbackService{
		syncLog:   syncLog,
		attempts:  attempts,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "passback_service").Logger(),
		now:       time.Now,
	}
}

func latestStatusKey(attemptID uint) string {
	return fmt.Sprintf("passback:latest:%d", attemptID)
}

func (s *passbackService) RecordResult(ctx context.Context, attemptID uint, payload dto.SyncResultRequest) (dto.SyncLogEntryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SyncLogEntryResponse{}, err
	}
	if !models.IsKnownCanvasStatus(payload.Status) {
		return dto.SyncLogEntryResponse{}, ErrUnknownSyncStatus
	}

	exists, err := s.attempts.Exists(ctx, attemptID)
	if err != nil {
		return dto.SyncLogEntryResponse{}, err
	}
	if !exists {
		return dto.SyncLogEntryResponse{}, ErrAttemptNotFound
	}

	entry := models.SyncLogEntry{
		AttemptID:    attemptID,
		CanvasStatus: payload.Status,
		Detail:       datatypes.JSONMap(payload.Detail),
		SyncedAt:     s.now().UTC(),
	}
	if err := s.syncLog.Append(ctx, &entry); err != nil {
		return dto.SyncLogEntryResponse{}, err
	}

	observability.PassbackOutcomes().WithLabelValues(payload.Status).Inc()

	if s.cache != nil {
		cached, err := json.Marshal(entry.CanvasStatus)
		if err == nil {
			if err := s.cache.Set(ctx, latestStatusKey(attemptID), cached, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Uint("attempt_id", attemptID).Msg("failed to cache latest passback status")
			}
		}
	}

	return dto.NewSyncLogEntryResponse(entry), nil
}

// History returns the attempt's delivery audit entries, newest first.
func (s *passbackService) History(ctx context.Context, attemptID uint, limit int) ([]dto.SyncLogEntryResponse, error) {
	exists, err := s.attempts.Exists(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrAttemptNotFound
	}

	entries, err := s.syncLog.ListByAttempt(ctx, attemptID, limit)
	if err != nil {
		return nil, err
	}

	return dto.NewSyncLogEntryResponseSlice(entries), nil
}

// LatestStatus returns the most recent delivery outcome for the attempt, or
// an empty string when no delivery has been reported yet.
func (s *passbackService) LatestStatus(ctx context.Context, attemptID uint) (string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, latestStatusKey(attemptID)).Result(); err == nil {
			var status string
			if unmarshalErr := json.Unmarshal([]byte(cached), &status); unmarshalErr == nil {
				return status, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read passback status cache")
		}
	}

	entries, err := s.syncLog.ListByAttempt(ctx, attemptID, 1)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	status := entries[0].CanvasStatus
	if s.cache != nil {
		if cached, err := json.Marshal(status); err == nil {
			if err := s.cache.Set(ctx, latestStatusKey(attemptID), cached, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store passback status cache")
			}
		}
	}

	return status, nil
}
