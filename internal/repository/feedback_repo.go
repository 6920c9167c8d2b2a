package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/models"
)

// FeedbackRepository defines data operations for feedback records and their
// answers. CreateWithAnswers runs in a single transaction so a failed insert
// never leaves a partially written answer set behind.
type FeedbackRepository interface {
	GetByUserAndKind(ctx context.Context, userID uint, selfAssessment bool) (models.Feedback, error)
	ListAnswers(ctx context.Context, feedbackID uint) ([]models.FeedbackAnswer, error)
	CreateWithAnswers(ctx context.Context, feedback *models.Feedback, answers []models.FeedbackAnswer) error
	UpdateAnswer(ctx context.Context, answer *models.FeedbackAnswer) error
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository instantiates the repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) GetByUserAndKind(ctx context.Context, userID uint, selfAssessment bool) (models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("self_assessment = ?", selfAssessment).
		First(&feedback).Error; err != nil {
		return models.Feedback{}, err
	}

	return feedback, nil
}

func (r *feedbackRepository) ListAnswers(ctx context.Context, feedbackID uint) ([]models.FeedbackAnswer, error) {
	var answers []models.FeedbackAnswer
	if err := r.db.WithContext(ctx).
		Where("feedback_id = ?", feedbackID).
		Order("question_number ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}

	return answers, nil
}

func (r *feedbackRepository) CreateWithAnswers(ctx context.Context, feedback *models.Feedback, answers []models.FeedbackAnswer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(feedback).Error; err != nil {
			return err
		}

		for i := range answers {
			answers[i].FeedbackID = feedback.ID
		}

		if len(answers) == 0 {
			return nil
		}

		return tx.Create(&answers).Error
	})
}

func (r *feedbackRepository) UpdateAnswer(ctx context.Context, answer *models.FeedbackAnswer) error {
	return r.db.WithContext(ctx).Save(answer).Error
}
