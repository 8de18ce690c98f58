package dto

import "time"

// GradeResult is the full outcome of automatically grading one attempt.
type GradeResult struct {
	AttemptID        uint              `json:"attempt_id"`
	TotalScore       float64           `json:"total_score"`
	MaxPoints        float64           `json:"max_points"`
	Percentage       float64           `json:"percentage"`
	GradedAt         time.Time         `json:"graded_at"`
	StructureResults []StructureResult `json:"structure_results"`
}

// StructureResult is the grading outcome for one structure of an attempt.
type StructureResult struct {
	ResponseID     uint    `json:"response_id"`
	StructureID    uint    `json:"structure_id"`
	StructureName  string  `json:"structure_name"`
	StudentAnswer  string  `json:"student_answer"`
	IsCorrect      bool    `json:"is_correct"`
	PointsEarned   float64 `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
	HintsUsed      int     `json:"hints_used"`
	HintPenalty    float64 `json:"hint_penalty"`
	MatchType      string  `json:"match_type"`
}

// OverrideRequest replaces a structure response's points with an
// instructor-supplied value.
type OverrideRequest struct {
	Points   *float64 `json:"points" validate:"required,gte=0"`
	Feedback string   `json:"feedback" validate:"omitempty,min=3"`
}

// OverrideResponse reflects the response after a manual override.
type OverrideResponse struct {
	ResponseID         uint     `json:"response_id"`
	AttemptID          uint     `json:"attempt_id"`
	StructureID        uint     `json:"structure_id"`
	PointsEarned       float64  `json:"points_earned"`
	InstructorOverride *float64 `json:"instructor_override"`
	AutoGraded         bool     `json:"auto_graded"`
}

// RecalculatedScore is the attempt aggregate produced by a manual
// recalculation.
type RecalculatedScore struct {
	AttemptID  uint    `json:"attempt_id"`
	TotalScore float64 `json:"total_score"`
	Percentage float64 `json:"percentage"`
}
