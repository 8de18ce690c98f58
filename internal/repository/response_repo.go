package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/avhamm/vivalab-api/internal/models"
)

// ResponseRepository provides persistence for manual grade overrides.
type ResponseRepository interface {
	GetByID(ctx context.Context, id uint) (models.StructureResponse, error)
	ApplyOverride(ctx context.Context, response *models.StructureResponse, history *models.ResponseGradeHistory) error
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository builds a structure-response repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) GetByID(ctx context.Context, id uint) (models.StructureResponse, error) {
	var response models.StructureResponse
	if err := r.db.WithContext(ctx).
		Preload("Structure").
		First(&response, id).Error; err != nil {
		return models.StructureResponse{}, err
	}

	return response, nil
}

// ApplyOverride saves the overridden response together with its audit row.
func (r *responseRepository) ApplyOverride(ctx context.Context, response *models.StructureResponse, history *models.ResponseGradeHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.StructureResponse{}).
			Where("id = ?", response.ID).
			Updates(map[string]interface{}{
				"instructor_override": response.InstructorOverride,
				"auto_graded":         false,
			}).Error; err != nil {
			return err
		}
		return tx.Create(history).Error
	})
}
