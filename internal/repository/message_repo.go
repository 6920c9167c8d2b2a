package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/models"
)

// MessageRepository defines data operations for stored assistant narratives.
type MessageRepository interface {
	GetByUser(ctx context.Context, userID uint) (models.AssistantMessage, error)
	Create(ctx context.Context, message *models.AssistantMessage) error
	Update(ctx context.Context, message *models.AssistantMessage) error
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository instantiates the repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) GetByUser(ctx context.Context, userID uint) (models.AssistantMessage, error) {
	var message models.AssistantMessage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&message).Error; err != nil {
		return models.AssistantMessage{}, err
	}

	return message, nil
}

func (r *messageRepository) Create(ctx context.Context, message *models.AssistantMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) Update(ctx context.Context, message *models.AssistantMessage) error {
	return r.db.WithContext(ctx).Save(message).Error
}

func (r *messageRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.AssistantMessage{})

	return result.RowsAffected, result.Error
}
