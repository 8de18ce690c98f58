package models

import "time"

// Attempt is one student's submission instance for a lab.
type Attempt struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	LabID       uint                `gorm:"not null;index" json:"lab_id"`
	StudentID   uint                `gorm:"not null;index" json:"student_id"`
	Status      string              `gorm:"size:32;not null;default:not_started" json:"status"`
	TotalScore  *float64            `json:"total_score"`
	Percentage  *float64            `json:"percentage"`
	StartedAt   *time.Time          `json:"started_at"`
	SubmittedAt *time.Time          `json:"submitted_at"`
	GradedAt    *time.Time          `json:"graded_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Lab         Lab                 `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"lab"`
	Responses   []StructureResponse `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"responses,omitempty"`
}

// Attempt status values. Transitions only move forward; graded is terminal.
const (
	AttemptStatusNotStarted = "not_started"
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
	AttemptStatusGraded     = "graded"
)

// IsGraded reports whether the attempt has reached its terminal state.
func (a Attempt) IsGraded() bool {
	return a.Status == AttemptStatusGraded
}
