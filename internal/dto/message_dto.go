package dto

import (
	"time"

	"github.com/iago-labs/iago-go-api/internal/models"
)

// MessageRateRequest carries the binary quality signal for a stored narrative.
type MessageRateRequest struct {
	Score *bool `json:"score" validate:"required"`
}

// MessageResponse is the public projection of a stored narrative.
type MessageResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Message   string    `json:"message"`
	Score     bool      `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessageResponse converts a stored narrative into its public projection.
func NewMessageResponse(message models.AssistantMessage) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		UserID:    message.UserID,
		Message:   message.Message,
		Score:     message.Score,
		CreatedAt: message.CreatedAt,
	}
}
