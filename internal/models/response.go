package models

import "time"

// StructureResponse holds one student's answer for one structure of an attempt.
type StructureResponse struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	AttemptID          uint      `gorm:"not null;index" json:"attempt_id"`
	StructureID        uint      `gorm:"not null;index" json:"structure_id"`
	RawAnswer          *string   `gorm:"type:text" json:"raw_answer"`
	HintsUsed          int       `gorm:"not null;default:0" json:"hints_used"`
	MatchType          string    `gorm:"size:16" json:"match_type"`
	IsCorrect          bool      `gorm:"not null;default:false" json:"is_correct"`
	PointsEarned       float64   `gorm:"not null;default:0" json:"points_earned"`
	HintPenalty        float64   `gorm:"not null;default:0" json:"hint_penalty"`
	AutoGraded         bool      `gorm:"not null;default:false" json:"auto_graded"`
	InstructorOverride *float64  `json:"instructor_override"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	Structure          Structure `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"structure"`
}

// EffectivePoints returns the instructor override when present, else the auto-graded points.
func (r StructureResponse) EffectivePoints() float64 {
	if r.InstructorOverride != nil {
		return *r.InstructorOverride
	}
	return r.PointsEarned
}

// Answer returns the raw answer text, treating an absent answer as empty.
func (r StructureResponse) Answer() string {
	if r.RawAnswer == nil {
		return ""
	}
	return *r.RawAnswer
}
