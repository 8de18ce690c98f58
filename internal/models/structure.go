package models

import (
	"strings"
	"time"
)

// Structure is an anatomical feature students must identify on a lab specimen.
type Structure struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	LabID          uint      `gorm:"not null;index" json:"lab_id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	LatinName      string    `gorm:"size:255" json:"latin_name"`
	Tags           string    `gorm:"size:512" json:"tags"`
	PointsPossible float64   `gorm:"not null;default:1" json:"points_possible"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TagList splits the comma-separated tag column into trimmed tags.
func (s Structure) TagList() []string {
	if strings.TrimSpace(s.Tags) == "" {
		return nil
	}
	parts := strings.Split(s.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
