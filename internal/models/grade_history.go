package models

import "time"

// ResponseGradeHistory records one manual grade change for a structure response.
type ResponseGradeHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ResponseID   uint      `gorm:"not null;index" json:"response_id"`
	Points       float64   `gorm:"not null" json:"points"`
	Feedback     string    `gorm:"type:text" json:"feedback"`
	OverriddenBy uint      `gorm:"not null" json:"overridden_by"`
	OverriddenAt time.Time `gorm:"not null" json:"overridden_at"`
}
