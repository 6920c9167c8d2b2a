package models

import (
	"time"

	"gorm.io/datatypes"
)

// AssistantMessage stores a generated narrative for one user together with a
// binary quality signal. Scores holds the composite-score snapshot the
// narrative was generated from, so a later read can show what the model saw.
type AssistantMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Score     bool           `gorm:"not null;default:false" json:"score"`
	Scores    datatypes.JSON `json:"scores,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	User      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
