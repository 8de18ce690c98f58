package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/models"
)

// ErrGradeConflict indicates the attempt reached the graded state before this
// grade commit could claim it.
var ErrGradeConflict = errors.New("attempt already graded")

// ResponseGradeUpdate carries the computed fields for one response within a
// grade commit.
type ResponseGradeUpdate struct {
	ResponseID   uint
	MatchType    string
	IsCorrect    bool
	PointsEarned float64
	HintPenalty  float64
}

// AttemptGrade carries the attempt-level aggregate written by a grade commit.
type AttemptGrade struct {
	TotalScore float64
	Percentage float64
	GradedAt   time.Time
}

// AttemptRepository provides persistence for grading workflows.
type AttemptRepository interface {
	GetWithResponses(ctx context.Context, id uint) (models.Attempt, error)
	Exists(ctx context.Context, id uint) (bool, error)
	CommitGrade(ctx context.Context, attemptID uint, responses []ResponseGradeUpdate, grade AttemptGrade) error
	UpdateAggregate(ctx context.Context, attemptID uint, totalScore, percentage float64) error
}

type attemptRepository struct {
	db *gorm.DB
}

// NewAttemptRepository builds a grading-aware attempt repository.
func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) GetWithResponses(ctx context.Context, id uint) (models.Attempt, error) {
	var attempt models.Attempt
	if err := r.db.WithContext(ctx).
		Preload("Lab").
		Preload("Responses.Structure").
		First(&attempt, id).Error; err != nil {
		return models.Attempt{}, err
	}

	return attempt, nil
}

func (r *attemptRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Attempt{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CommitGrade writes every response's computed fields and the attempt
// aggregate in one transaction. The status flip is conditional on the attempt
// not already being graded, so two concurrent graders cannot both commit.
func (r *attemptRepository) CommitGrade(ctx context.Context, attemptID uint, responses []ResponseGradeUpdate, grade AttemptGrade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Attempt{}).
			Where("id = ? AND status <> ?", attemptID, models.AttemptStatusGraded).
			Updates(map[string]interface{}{
				"status":      models.AttemptStatusGraded,
				"total_score": grade.TotalScore,
				"percentage":  grade.Percentage,
				"graded_at":   grade.GradedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrGradeConflict
		}

		for _, update := range responses {
			if err := tx.Model(&models.StructureResponse{}).
				Where("id = ? AND attempt_id = ?", update.ResponseID, attemptID).
				Updates(map[string]interface{}{
					"match_type":    update.MatchType,
					"is_correct":    update.IsCorrect,
					"points_earned": update.PointsEarned,
					"hint_penalty":  update.HintPenalty,
					"auto_graded":   true,
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *attemptRepository) UpdateAggregate(ctx context.Context, attemptID uint, totalScore, percentage float64) error {
	result := r.db.WithContext(ctx).Model(&models.Attempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"total_score": totalScore,
			"percentage":  percentage,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
