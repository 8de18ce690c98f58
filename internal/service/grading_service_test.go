package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/models"
	"github.com/avhamm/vivalab-api/internal/queue"
	"github.com/avhamm/vivalab-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeAttemptRepo struct {
	attempt     models.Attempt
	missing     bool
	commits     int
	lastGrade   repository.AttemptGrade
	lastUpdates []repository.ResponseGradeUpdate
	commitErr   error
	aggregates  []float64
}

func (f *fakeAttemptRepo) GetWithResponses(_ context.Context, id uint) (models.Attempt, error) {
	if f.missing {
		return models.Attempt{}, gorm.ErrRecordNotFound
	}
	return f.attempt, nil
}

func (f *fakeAttemptRepo) Exists(_ context.Context, id uint) (bool, error) {
	return !f.missing, nil
}

func (f *fakeAttemptRepo) CommitGrade(_ context.Context, _ uint, updates []repository.ResponseGradeUpdate, grade repository.AttemptGrade) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits++
	f.lastUpdates = updates
	f.lastGrade = grade
	return nil
}

func (f *fakeAttemptRepo) UpdateAggregate(_ context.Context, _ uint, totalScore, percentage float64) error {
	f.aggregates = append(f.aggregates, totalScore, percentage)
	return nil
}

type recordingQueue struct {
	jobs []queue.Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job queue.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func answerPtr(s string) *string { return &s }

func submittedAttempt(rubric datatypes.JSON) models.Attempt {
	structures := []struct {
		id     uint
		name   string
		answer string
	}{
		{1, "Aorta", "aorta"},
		{2, "Left Ventricle", "left ventricle"},
		{3, "Trachea", "trachea"},
		{4, "Scapula", "elbow"},
		{5, "Femur", "wrist bone"},
	}

	attempt := models.Attempt{
		ID:     11,
		LabID:  3,
		Status: models.AttemptStatusSubmitted,
		Lab:    models.Lab{ID: 3, Title: "Skeleton Lab", MaxPoints: 100, Rubric: rubric},
	}
	for i, s := range structures {
		attempt.Responses = append(attempt.Responses, models.StructureResponse{
			ID:          uint(100 + i),
			AttemptID:   attempt.ID,
			StructureID: s.id,
			RawAnswer:   answerPtr(s.answer),
			Structure:   models.Structure{ID: s.id, LabID: 3, Name: s.name, PointsPossible: 1},
		})
	}
	return attempt
}

func TestGradeAttemptEndToEnd(t *testing.T) {
	repo := &fakeAttemptRepo{attempt: submittedAttempt(nil)}
	passback := &recordingQueue{}
	svc := NewGradingService(repo, passback, testLogger())

	result, err := svc.GradeAttempt(context.Background(), 11)
	require.NoError(t, err)

	// 3 of 5 structures exact, equal weight, maxPoints 100.
	require.Equal(t, 60.0, result.TotalScore)
	require.Equal(t, 60.0, result.Percentage)
	require.Equal(t, 100.0, result.MaxPoints)
	require.Len(t, result.StructureResults, 5)
	require.Equal(t, "exact", result.StructureResults[0].MatchType)
	require.True(t, result.StructureResults[0].IsCorrect)
	require.Equal(t, "none", result.StructureResults[3].MatchType)
	require.False(t, result.StructureResults[3].IsCorrect)

	require.Equal(t, 1, repo.commits)
	require.Len(t, repo.lastUpdates, 5)
	require.Equal(t, 60.0, repo.lastGrade.TotalScore)

	require.Len(t, passback.jobs, 1)
	require.Equal(t, uint(11), passback.jobs[0].AttemptID)
	require.Equal(t, 3, passback.jobs[0].Retry.MaxAttempts)
}

func TestGradeAttemptNotFound(t *testing.T) {
	svc := NewGradingService(&fakeAttemptRepo{missing: true}, &recordingQueue{}, testLogger())

	_, err := svc.GradeAttempt(context.Background(), 404)
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestGradeAttemptAlreadyGraded(t *testing.T) {
	attempt := submittedAttempt(nil)
	attempt.Status = models.AttemptStatusGraded
	repo := &fakeAttemptRepo{attempt: attempt}
	svc := NewGradingService(repo, &recordingQueue{}, testLogger())

	_, err := svc.GradeAttempt(context.Background(), 11)
	require.ErrorIs(t, err, ErrAttemptAlreadyGraded)
	require.Equal(t, 0, repo.commits)
}

func TestGradeAttemptConcurrentCommitLosesGracefully(t *testing.T) {
	repo := &fakeAttemptRepo{attempt: submittedAttempt(nil), commitErr: repository.ErrGradeConflict}
	svc := NewGradingService(repo, &recordingQueue{}, testLogger())

	_, err := svc.GradeAttempt(context.Background(), 11)
	require.ErrorIs(t, err, ErrAttemptAlreadyGraded)
}

func TestGradeAttemptEnqueueFailureDoesNotFailGrading(t *testing.T) {
	repo := &fakeAttemptRepo{attempt: submittedAttempt(nil)}
	passback := &recordingQueue{err: errors.New("broker unavailable")}
	svc := NewGradingService(repo, passback, testLogger())

	result, err := svc.GradeAttempt(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, 60.0, result.TotalScore)
	require.Equal(t, 60.0, result.Percentage)
	require.Equal(t, 1, repo.commits)
}

func TestGradeAttemptHintPenaltyApplied(t *testing.T) {
	attempt := submittedAttempt(nil)
	attempt.Responses = attempt.Responses[:1]
	attempt.Responses[0].HintsUsed = 2
	attempt.Responses[0].Structure.PointsPossible = 10
	repo := &fakeAttemptRepo{attempt: attempt}
	svc := NewGradingService(repo, &recordingQueue{}, testLogger())

	result, err := svc.GradeAttempt(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, 8.0, result.StructureResults[0].PointsEarned)
	require.Equal(t, 2.0, result.StructureResults[0].HintPenalty)
	// Single 10-point structure rescaled onto 100.
	require.Equal(t, 80.0, result.TotalScore)
}

func TestGradeAttemptWeightedMode(t *testing.T) {
	rubric := datatypes.JSON(`{"category_weights": {"bones": 3, "organs": 1}}`)
	attempt := submittedAttempt(rubric)
	for i := range attempt.Responses {
		if i < 2 {
			attempt.Responses[i].Structure.Tags = "organs"
		} else {
			attempt.Responses[i].Structure.Tags = "bones"
		}
	}

	repo := &fakeAttemptRepo{attempt: attempt}
	svc := NewGradingService(repo, &recordingQueue{}, testLogger())

	result, err := svc.GradeAttempt(context.Background(), 11)
	require.NoError(t, err)
	// organs: 2/2 correct (weight 1), bones: 1/3 correct (weight 3).
	// (1.0*1 + (1/3)*3) / 4 * 100 = 50
	require.Equal(t, 50.0, result.TotalScore)
}

func TestGradeAttemptInvalidRubric(t *testing.T) {
	attempt := submittedAttempt(datatypes.JSON(`{"hint_penalty_percent": "lots"}`))
	repo := &fakeAttemptRepo{attempt: attempt}
	svc := NewGradingService(repo, &recordingQueue{}, testLogger())

	_, err := svc.GradeAttempt(context.Background(), 11)
	require.Error(t, err)
	require.Equal(t, 0, repo.commits)
}
