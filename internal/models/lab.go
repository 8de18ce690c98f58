package models

import (
	"time"

	"gorm.io/datatypes"
)

// Lab represents one anatomy identification exercise with its grading configuration.
type Lab struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	MaxPoints   float64        `gorm:"not null;default:100" json:"max_points"`
	Rubric      datatypes.JSON `gorm:"type:json" json:"rubric"`
	LineItemURL string         `gorm:"size:512" json:"line_item_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Structures  []Structure    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"structures,omitempty"`
}

// HasLineItem reports whether the lab is linked to an external grade-book column.
func (l Lab) HasLineItem() bool {
	return l.LineItemURL != ""
}
