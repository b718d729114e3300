package models

import "time"

// DriftReport records a divergence found by the consistency checker
// between a denormalized counter (or membership set) and its backing
// data (PostgreSQL).
type DriftReport struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	EntityKind string    `json:"entity_kind" gorm:"size:20;index"` // post, user
	EntityID   string    `json:"entity_id" gorm:"index"`
	Field      string    `json:"field" gorm:"size:40"`
	Expected   int       `json:"expected"`
	Actual     int       `json:"actual"`
	Detail     string    `json:"detail,omitempty"`
	DetectedAt time.Time `json:"detected_at" gorm:"index"`
}
