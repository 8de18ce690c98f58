package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/dto"
	"github.com/avhamm/vivalab-api/internal/models"
	"github.com/avhamm/vivalab-api/internal/repository"
)

type fakeResponseRepo struct {
	response    models.StructureResponse
	missing     bool
	applied     *models.StructureResponse
	lastHistory *models.ResponseGradeHistory
}

func (f *fakeResponseRepo) GetByID(_ context.Context, id uint) (models.StructureResponse, error) {
	if f.missing {
		return models.StructureResponse{}, gorm.ErrRecordNotFound
	}
	return f.response, nil
}

func (f *fakeResponseRepo) ApplyOverride(_ context.Context, response *models.StructureResponse, history *models.ResponseGradeHistory) error {
	f.applied = response
	f.lastHistory = history
	return nil
}

func pointsPtr(v float64) *float64 { return &v }

func gradedResponse() models.StructureResponse {
	return models.StructureResponse{
		ID:           101,
		AttemptID:    11,
		StructureID:  1,
		RawAnswer:    answerPtr("aotra"),
		MatchType:    "fuzzy",
		IsCorrect:    true,
		PointsEarned: 8,
		AutoGraded:   true,
		Structure:    models.Structure{ID: 1, Name: "Aorta", PointsPossible: 10},
	}
}

func TestOverrideResponseGrade(t *testing.T) {
	repo := &fakeResponseRepo{response: gradedResponse()}
	svc := NewOverrideService(repo, &fakeAttemptRepo{}, validator.New(), testLogger())

	payload := dto.OverrideRequest{Points: pointsPtr(5), Feedback: "Accent mark missing, half credit"}
	actor := GradeActor{ID: 7, Role: "instructor"}

	result, err := svc.OverrideResponseGrade(context.Background(), 101, payload, actor)
	require.NoError(t, err)
	require.Equal(t, uint(101), result.ResponseID)
	require.NotNil(t, result.InstructorOverride)
	require.Equal(t, 5.0, *result.InstructorOverride)
	require.False(t, result.AutoGraded)

	require.NotNil(t, repo.applied)
	require.False(t, repo.applied.AutoGraded)
	require.NotNil(t, repo.lastHistory)
	require.Equal(t, uint(7), repo.lastHistory.OverriddenBy)
	require.Equal(t, 5.0, repo.lastHistory.Points)
}

func TestOverrideResponseGradeSanitizesFeedback(t *testing.T) {
	repo := &fakeResponseRepo{response: gradedResponse()}
	svc := NewOverrideService(repo, &fakeAttemptRepo{}, validator.New(), testLogger())

	payload := dto.OverrideRequest{Points: pointsPtr(5), Feedback: `<script>alert(1)</script>see rubric`}
	_, err := svc.OverrideResponseGrade(context.Background(), 101, payload, GradeActor{ID: 7})
	require.NoError(t, err)
	require.Equal(t, "see rubric", repo.lastHistory.Feedback)
}

func TestOverrideResponseGradeOutOfBounds(t *testing.T) {
	repo := &fakeResponseRepo{response: gradedResponse()}
	svc := NewOverrideService(repo, &fakeAttemptRepo{}, validator.New(), testLogger())

	_, err := svc.OverrideResponseGrade(context.Background(), 101, dto.OverrideRequest{Points: pointsPtr(11)}, GradeActor{ID: 7})
	require.ErrorIs(t, err, ErrInvalidOverride)
	require.Nil(t, repo.applied)
}

func TestOverrideResponseGradeMissingPoints(t *testing.T) {
	svc := NewOverrideService(&fakeResponseRepo{response: gradedResponse()}, &fakeAttemptRepo{}, validator.New(), testLogger())

	_, err := svc.OverrideResponseGrade(context.Background(), 101, dto.OverrideRequest{}, GradeActor{ID: 7})
	require.Error(t, err)
}

func TestOverrideResponseGradeNotFound(t *testing.T) {
	svc := NewOverrideService(&fakeResponseRepo{missing: true}, &fakeAttemptRepo{}, validator.New(), testLogger())

	_, err := svc.OverrideResponseGrade(context.Background(), 404, dto.OverrideRequest{Points: pointsPtr(1)}, GradeActor{ID: 7})
	require.ErrorIs(t, err, ErrResponseNotFound)
}

func TestRecalculateAttemptScore(t *testing.T) {
	attempt := models.Attempt{
		ID:     11,
		Status: models.AttemptStatusGraded,
		Lab:    models.Lab{ID: 3, MaxPoints: 100},
		Responses: []models.StructureResponse{
			{ID: 101, PointsEarned: 1, Structure: models.Structure{PointsPossible: 1}},
			{ID: 102, PointsEarned: 0, InstructorOverride: pointsPtr(1), Structure: models.Structure{PointsPossible: 1}},
			{ID: 103, PointsEarned: 0, Structure: models.Structure{PointsPossible: 1}},
			{ID: 104, PointsEarned: 1, Structure: models.Structure{PointsPossible: 1}},
		},
	}
	attempts := &fakeAttemptRepo{attempt: attempt}
	svc := NewOverrideService(&fakeResponseRepo{}, attempts, validator.New(), testLogger())

	result, err := svc.RecalculateAttemptScore(context.Background(), 11)
	require.NoError(t, err)
	// 3 of 4 responses earn credit after the override.
	require.Equal(t, 75.0, result.TotalScore)
	require.Equal(t, 75.0, result.Percentage)
	require.Equal(t, []float64{75, 75}, attempts.aggregates)
}

func TestRecalculateAttemptScoreNotFound(t *testing.T) {
	svc := NewOverrideService(&fakeResponseRepo{}, &fakeAttemptRepo{missing: true}, validator.New(), testLogger())

	_, err := svc.RecalculateAttemptScore(context.Background(), 404)
	require.ErrorIs(t, err, ErrAttemptNotFound)
}

var (
	_ repository.ResponseRepository = (*fakeResponseRepo)(nil)
	_ repository.AttemptRepository  = (*fakeAttemptRepo)(nil)
)
