package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/dto"
	"github.com/avhamm/vivalab-api/internal/grading"
	"github.com/avhamm/vivalab-api/internal/observability"
	"github.com/avhamm/vivalab-api/internal/queue"
	"github.com/avhamm/vivalab-api/internal/repository"
)

// ErrAttemptNotFound indicates the attempt was not located.
var ErrAttemptNotFound = errors.New("attempt not found")

// ErrAttemptAlreadyGraded indicates the attempt is in its terminal graded state.
var ErrAttemptAlreadyGraded = errors.New("attempt already graded")

// GradingService runs the automatic grading pipeline for submitted attempts.
type GradingService interface {
	GradeAttempt(ctx context.Context, attemptID uint) (dto.GradeResult, error)
}

type gradingService struct {
	attempts repository.AttemptRepository
	queue    queue.PassbackQueue
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewGradingService constructs the automatic grading service.
func NewGradingService(attempts repository.AttemptRepository, passback queue.PassbackQueue, logger zerolog.Logger) GradingService {
	return &gradingService{
		attempts: attempts,
		queue:    passback,
		logger:   logger.With().Str("component", "grading_service").Logger(),
		tracer:   otel.Tracer("github.com/avhamm/vivalab-api/internal/service/grading"),
		now:      time.Now,
	}
}

// GradeAttempt matches and scores every response of the attempt, commits the
// outcome in one transaction, and schedules grade-book passback. Grading is a
// one-time transition; re-invocation fails with ErrAttemptAlreadyGraded.
// Passback scheduling is fire-and-forget: an enqueue failure is logged and
// counted but never fails the grading call.
func (s *gradingService) GradeAttempt(ctx context.Context, attemptID uint) (dto.GradeResult, error) {
	ctx, span := s.tracer.Start(ctx, "grading.grade_attempt", trace.WithAttributes(
		attribute.Int64("grading.attempt_id", int64(attemptID)),
	))
	defer span.End()

	attempt, err := s.attempts.GetWithResponses(ctx, attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "attempt_not_found")
			return dto.GradeResult{}, ErrAttemptNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "attempt_lookup_failed")
		return dto.GradeResult{}, err
	}

	if attempt.IsGraded() {
		span.SetStatus(codes.Error, "already_graded")
		return dto.GradeResult{}, ErrAttemptAlreadyGraded
	}

	rubric, err := grading.ParseRubric(attempt.Lab.Rubric)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid_rubric")
		return dto.GradeResult{}, fmt.Errorf("lab %d: %w", attempt.LabID, err)
	}

	updates := make([]repository.ResponseGradeUpdate, 0, len(attempt.Responses))
	results := make([]dto.StructureResult, 0, len(attempt.Responses))
	items := make([]grading.AggregateItem, 0, len(attempt.Responses))

	for _, response := range attempt.Responses {
		structure := response.Structure
		candidate := grading.Candidate{
			Name:      structure.Name,
			LatinName: structure.LatinName,
			Aliases:   rubric.AliasesFor(structure.ID),
		}

		match := grading.MatchAnswer(response.Answer(), candidate, rubric)
		score := grading.ScoreStructure(match, structure.PointsPossible, response.HintsUsed, rubric)

		updates = append(updates, repository.ResponseGradeUpdate{
			ResponseID:   response.ID,
			MatchType:    match.Type,
			IsCorrect:    score.Correct,
			PointsEarned: score.Points,
			HintPenalty:  score.HintPenalty,
		})
		results = append(results, dto.StructureResult{
			ResponseID:     response.ID,
			StructureID:    structure.ID,
			StructureName:  structure.Name,
			StudentAnswer:  response.Answer(),
			IsCorrect:      score.Correct,
			PointsEarned:   score.Points,
			PointsPossible: structure.PointsPossible,
			HintsUsed:      response.HintsUsed,
			HintPenalty:    score.HintPenalty,
			MatchType:      match.Type,
		})
		items = append(items, grading.AggregateItem{
			Earned:   score.Points,
			Possible: structure.PointsPossible,
			Category: grading.CategoryOf(structure.TagList()),
		})
	}

	mode := "flat"
	var totalScore float64
	if rubric.Weighted() {
		mode = "weighted"
		totalScore = grading.AggregateWeighted(items, rubric.CategoryWeights, attempt.Lab.MaxPoints)
	} else {
		totalScore = grading.AggregateFlat(items, attempt.Lab.MaxPoints)
	}
	percentage := grading.Percentage(totalScore, attempt.Lab.MaxPoints)
	gradedAt := s.now().UTC()

	grade := repository.AttemptGrade{
		TotalScore: totalScore,
		Percentage: percentage,
		GradedAt:   gradedAt,
	}
	if err := s.attempts.CommitGrade(ctx, attempt.ID, updates, grade); err != nil {
		if errors.Is(err, repository.ErrGradeConflict) {
			span.SetStatus(codes.Error, "grade_conflict")
			return dto.GradeResult{}, ErrAttemptAlreadyGraded
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "grade_commit_failed")
		return dto.GradeResult{}, err
	}

	observability.AttemptsGraded().WithLabelValues(mode).Inc()

	job := queue.NewJob(attempt.ID)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Warn().Err(err).
			Uint("attempt_id", attempt.ID).
			Str("job_id", job.ID).
			Msg("failed to enqueue passback job")
		observability.PassbackEnqueueFailures().Inc()
	}

	span.SetAttributes(
		attribute.Float64("grading.total_score", totalScore),
		attribute.Float64("grading.percentage", percentage),
		attribute.String("grading.mode", mode),
	)

	return dto.GradeResult{
		AttemptID:        attempt.ID,
		TotalScore:       totalScore,
		MaxPoints:        attempt.Lab.MaxPoints,
		Percentage:       percentage,
		GradedAt:         gradedAt,
		StructureResults: results,
	}, nil
}
