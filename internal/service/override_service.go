package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/dto"
	"github.com/avhamm/vivalab-api/internal/grading"
	"github.com/avhamm/vivalab-api/internal/models"
	"github.com/avhamm/vivalab-api/internal/observability"
	"github.com/avhamm/vivalab-api/internal/repository"
)

// ErrResponseNotFound indicates the structure response was not located.
var ErrResponseNotFound = errors.New("response not found")

// ErrInvalidOverride indicates the override value lies outside [0, pointsPossible].
var ErrInvalidOverride = errors.New("override points outside allowed range")

// GradeActor identifies the instructor performing a manual grade change.
type GradeActor struct {
	ID   uint
	Role string
}

// OverrideService lets authorized reviewers replace grades outside the
// automatic pipeline.
type OverrideService interface {
	OverrideResponseGrade(ctx context.Context, responseID uint, payload dto.OverrideRequest, actor GradeActor) (dto.OverrideResponse, error)
	RecalculateAttemptScore(ctx context.Context, attemptID uint) (dto.RecalculatedScore, error)
}

type overrideService struct {
	responses repository.ResponseRepository
	attempts  repository.AttemptRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewOverrideService constructs the manual override service.
func NewOverrideService(responses repository.ResponseRepository, attempts repository.AttemptRepository, validate *validator.Validate, logger zerolog.Logger) OverrideService {
	return &overrideService{
		responses: responses,
		attempts:  attempts,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "override_service").Logger(),
		now:       time.Now,
	}
}

// OverrideResponseGrade replaces a response's points with the instructor's
// value and records the change. The attempt aggregate is untouched; callers
// follow up with RecalculateAttemptScore when they want it refreshed.
func (s *overrideService) OverrideResponseGrade(ctx context.Context, responseID uint, payload dto.OverrideRequest, actor GradeActor) (dto.OverrideResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.OverrideResponse{}, err
	}

	response, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.OverrideResponse{}, ErrResponseNotFound
		}
		return dto.OverrideResponse{}, err
	}

	points := *payload.Points
	if points < 0 || points > response.Structure.PointsPossible {
		return dto.OverrideResponse{}, ErrInvalidOverride
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))

	response.InstructorOverride = &points
	response.AutoGraded = false
	history := models.ResponseGradeHistory{
		ResponseID:   response.ID,
		Points:       points,
		Feedback:     feedback,
		OverriddenBy: actor.ID,
		OverriddenAt: s.now().UTC(),
	}

	if err := s.responses.ApplyOverride(ctx, &response, &history); err != nil {
		return dto.OverrideResponse{}, err
	}

	observability.OverridesApplied().Inc()
	s.logger.Info().
		Uint("response_id", response.ID).
		Uint("attempt_id", response.AttemptID).
		Uint("actor_id", actor.ID).
		Float64("points", points).
		Msg("response grade overridden")

	return dto.OverrideResponse{
		ResponseID:         response.ID,
		AttemptID:          response.AttemptID,
		StructureID:        response.StructureID,
		PointsEarned:       response.PointsEarned,
		InstructorOverride: response.InstructorOverride,
		AutoGraded:         false,
	}, nil
}

// RecalculateAttemptScore recomputes the attempt aggregate from the override
// value where present, else the auto-graded value. Each response counts as one
// nominal point of the denominator; the sum is scaled onto the lab's maximum.
// The matcher is never re-run here.
func (s *overrideService) RecalculateAttemptScore(ctx context.Context, attemptID uint) (dto.RecalculatedScore, error) {
	attempt, err := s.attempts.GetWithResponses(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.RecalculatedScore{}, ErrAttemptNotFound
		}
		return dto.RecalculatedScore{}, err
	}

	var totalScore float64
	if count := len(attempt.Responses); count > 0 {
		var earned float64
		for _, response := range attempt.Responses {
			earned += response.EffectivePoints()
		}
		totalScore = grading.Round2(earned / float64(count) * attempt.Lab.MaxPoints)
	}
	percentage := grading.Percentage(totalScore, attempt.Lab.MaxPoints)

	if err := s.attempts.UpdateAggregate(ctx, attempt.ID, totalScore, percentage); err != nil {
		return dto.RecalculatedScore{}, err
	}

	return dto.RecalculatedScore{
		AttemptID:  attempt.ID,
		TotalScore: totalScore,
		Percentage: percentage,
	}, nil
}
