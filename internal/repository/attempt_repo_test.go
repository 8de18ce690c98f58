package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Lab{},
		&models.Structure{},
		&models.Attempt{},
		&models.StructureResponse{},
		&models.ResponseGradeHistory{},
		&models.SyncLogEntry{},
	))
	return db
}

func seedAttempt(t *testing.T, db *gorm.DB) models.Attempt {
	t.Helper()

	lab := models.Lab{Title: "Heart Dissection", MaxPoints: 100}
	require.NoError(t, db.Create(&lab).Error)

	structure := models.Structure{LabID: lab.ID, Name: "Aorta", PointsPossible: 10}
	require.NoError(t, db.Create(&structure).Error)

	answer := "aorta"
	attempt := models.Attempt{
		LabID:     lab.ID,
		StudentID: 7,
		Status:    models.AttemptStatusSubmitted,
		Responses: []models.StructureResponse{
			{StructureID: structure.ID, RawAnswer: &answer, HintsUsed: 1},
		},
	}
	require.NoError(t, db.Create(&attempt).Error)
	return attempt
}

func TestAttemptRepositoryGetWithResponses(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	seeded := seedAttempt(t, db)

	attempt, err := repo.GetWithResponses(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.Equal(t, "Heart Dissection", attempt.Lab.Title)
	require.Len(t, attempt.Responses, 1)
	require.Equal(t, "Aorta", attempt.Responses[0].Structure.Name)

	_, err = repo.GetWithResponses(context.Background(), seeded.ID+100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAttemptRepositoryCommitGrade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	seeded := seedAttempt(t, db)

	updates := []ResponseGradeUpdate{{
		ResponseID:   seeded.Responses[0].ID,
		MatchType:    "exact",
		IsCorrect:    true,
		PointsEarned: 9,
		HintPenalty:  1,
	}}
	grade := AttemptGrade{TotalScore: 90, Percentage: 90, GradedAt: time.Now().UTC()}

	require.NoError(t, repo.CommitGrade(context.Background(), seeded.ID, updates, grade))

	var attempt models.Attempt
	require.NoError(t, db.Preload("Responses").First(&attempt, seeded.ID).Error)
	require.Equal(t, models.AttemptStatusGraded, attempt.Status)
	require.Equal(t, 90.0, *attempt.TotalScore)
	require.NotNil(t, attempt.GradedAt)
	require.True(t, attempt.Responses[0].AutoGraded)
	require.Equal(t, 9.0, attempt.Responses[0].PointsEarned)
	require.Equal(t, "exact", attempt.Responses[0].MatchType)
}

func TestAttemptRepositoryCommitGradeRejectsSecondCommit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	seeded := seedAttempt(t, db)

	grade := AttemptGrade{TotalScore: 90, Percentage: 90, GradedAt: time.Now().UTC()}
	require.NoError(t, repo.CommitGrade(context.Background(), seeded.ID, nil, grade))

	second := AttemptGrade{TotalScore: 10, Percentage: 10, GradedAt: time.Now().UTC()}
	err := repo.CommitGrade(context.Background(), seeded.ID, nil, second)
	require.ErrorIs(t, err, ErrGradeConflict)

	var attempt models.Attempt
	require.NoError(t, db.First(&attempt, seeded.ID).Error)
	require.Equal(t, 90.0, *attempt.TotalScore, "stored score must survive the rejected commit")
}

func TestAttemptRepositoryUpdateAggregate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	seeded := seedAttempt(t, db)

	require.NoError(t, repo.UpdateAggregate(context.Background(), seeded.ID, 42.5, 42.5))

	var attempt models.Attempt
	require.NoError(t, db.First(&attempt, seeded.ID).Error)
	require.Equal(t, 42.5, *attempt.TotalScore)

	err := repo.UpdateAggregate(context.Background(), seeded.ID+100, 1, 1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAttemptRepositoryExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAttemptRepository(db)
	seeded := seedAttempt(t, db)

	exists, err := repo.Exists(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(context.Background(), seeded.ID+100)
	require.NoError(t, err)
	require.False(t, exists)
}
