package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/dto"
	"github.com/iago-labs/iago-go-api/internal/models"
	"github.com/iago-labs/iago-go-api/internal/repository"
)

// ErrUserNotFound indicates the referenced user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrFeedbackExists indicates a feedback of the same kind was already submitted for the user.
var ErrFeedbackExists = errors.New("feedback already exists")

// ErrNotLeader indicates a leader-only operation was attempted by a collaborator.
var ErrNotLeader = errors.New("only leaders can submit feedback for other users")

// ErrLeaderNotAllowed indicates a collaborator-only operation was attempted by a leader.
var ErrLeaderNotAllowed = errors.New("leaders have no self-assessment")

// ErrAnswerNotFound indicates an update referenced a question number that was never submitted.
var ErrAnswerNotFound = errors.New("answer not found")

// ErrDuplicateQuestion indicates a submission repeats a question number.
var ErrDuplicateQuestion = errors.New("duplicate question number")

// ScoresInvalidator drops derived composite-score state after a feedback mutation.
type ScoresInvalidator interface {
	InvalidateScores(ctx context.Context, userID uint)
}

// FeedbackService orchestrates questionnaire submissions and reads.
type FeedbackService interface {
	SubmitSelf(ctx context.Context, userID uint, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error)
	SubmitForUser(ctx context.Context, leaderID, evalueeID uint, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error)
	UpdateSelf(ctx context.Context, userID uint, payload dto.FeedbackUpdateRequest) (dto.FeedbackResponse, error)
	Get(ctx context.Context, userID uint, selfAssessment bool) (dto.FeedbackResponse, error)
}

type feedbackService struct {
	feedback  repository.FeedbackRepository
	users     repository.UserRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	scores    ScoresInvalidator
	events    EventPublisher
	logger    zerolog.Logger
}

// NewFeedbackService constructs a FeedbackService instance.
func NewFeedbackService(feedbackRepo repository.FeedbackRepository, userRepo repository.UserRepository, validate *validator.Validate, scores ScoresInvalidator, events EventPublisher, logger zerolog.Logger) FeedbackService {
	return &feedbackService{
		feedback:  feedbackRepo,
		users:     userRepo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		scores:    scores,
		events:    events,
		logger:    logger.With().Str("component", "feedback_service").Logger(),
	}
}

func (s *feedbackService) SubmitSelf(ctx context.Context, userID uint, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	if user.IsLeader {
		return dto.FeedbackResponse{}, ErrLeaderNotAllowed
	}

	return s.submit(ctx, user.ID, true, payload)
}

func (s *feedbackService) SubmitForUser(ctx context.Context, leaderID, evalueeID uint, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error) {
	leader, err := s.loadUser(ctx, leaderID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	if !leader.IsLeader {
		return dto.FeedbackResponse{}, ErrNotLeader
	}

	evaluee, err := s.loadUser(ctx, evalueeID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	// The record is owned by the evaluee, not the submitting leader.
	return s.submit(ctx, evaluee.ID, false, payload)
}

func (s *feedbackService) submit(ctx context.Context, userID uint, selfAssessment bool, payload dto.FeedbackSubmitRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	if err := checkUniqueQuestions(payload.Answers); err != nil {
		return dto.FeedbackResponse{}, err
	}

	if _, err := s.feedback.GetByUserAndKind(ctx, userID, selfAssessment); err == nil {
		return dto.FeedbackResponse{}, ErrFeedbackExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.FeedbackResponse{}, err
	}

	feedback := models.Feedback{
		UserID:         userID,
		SelfAssessment: selfAssessment,
	}

	answers := make([]models.FeedbackAnswer, 0, len(payload.Answers))
	for _, answer := range payload.Answers {
		answers = append(answers, models.FeedbackAnswer{
			QuestionNumber: answer.QuestionNumber,
			Answer:         answer.Answer,
			Explanation:    s.sanitize(answer.Explanation),
		})
	}

	if err := s.feedback.CreateWithAnswers(ctx, &feedback, answers); err != nil {
		// The composite unique index closes the race between the existence
		// check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.FeedbackResponse{}, ErrFeedbackExists
		}
		return dto.FeedbackResponse{}, err
	}

	s.scores.InvalidateScores(ctx, userID)
	s.events.Publish(SubjectFeedbackSubmitted, map[string]interface{}{
		"user_id":         userID,
		"feedback_id":     feedback.ID,
		"self_assessment": selfAssessment,
		"answers":         len(answers),
	})

	s.logger.Info().Uint("feedback_id", feedback.ID).Uint("user_id", userID).Bool("self_assessment", selfAssessment).Msg("feedback submitted")

	return dto.NewFeedbackResponse(feedback, answers), nil
}

func (s *feedbackService) UpdateSelf(ctx context.Context, userID uint, payload dto.FeedbackUpdateRequest) (dto.FeedbackResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.FeedbackResponse{}, err
	}

	if err := checkUniqueQuestions(payload.Answers); err != nil {
		return dto.FeedbackResponse{}, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	if user.IsLeader {
		return dto.FeedbackResponse{}, ErrLeaderNotAllowed
	}

	feedback, err := s.feedback.GetByUserAndKind(ctx, userID, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrFeedbackNotFound
		}
		return dto.FeedbackResponse{}, err
	}

	stored, err := s.feedback.ListAnswers(ctx, feedback.ID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	byNumber := make(map[int]*models.FeedbackAnswer, len(stored))
	for i := range stored {
		byNumber[stored[i].QuestionNumber] = &stored[i]
	}

	for _, answer := range payload.Answers {
		existing, ok := byNumber[answer.QuestionNumber]
		if !ok {
			return dto.FeedbackResponse{}, fmt.Errorf("%w: question %d", ErrAnswerNotFound, answer.QuestionNumber)
		}
		existing.Answer = answer.Answer
		existing.Explanation = s.sanitize(answer.Explanation)
		if err := s.feedback.UpdateAnswer(ctx, existing); err != nil {
			return dto.FeedbackResponse{}, err
		}
	}

	s.scores.InvalidateScores(ctx, userID)

	s.logger.Info().Uint("feedback_id", feedback.ID).Uint("user_id", userID).Msg("feedback updated")

	return dto.NewFeedbackResponse(feedback, stored), nil
}

func (s *feedbackService) Get(ctx context.Context, userID uint, selfAssessment bool) (dto.FeedbackResponse, error) {
	feedback, err := s.feedback.GetByUserAndKind(ctx, userID, selfAssessment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.FeedbackResponse{}, ErrFeedbackNotFound
		}
		return dto.FeedbackResponse{}, err
	}

	answers, err := s.feedback.ListAnswers(ctx, feedback.ID)
	if err != nil {
		return dto.FeedbackResponse{}, err
	}

	return dto.NewFeedbackResponse(feedback, answers), nil
}

func (s *feedbackService) loadUser(ctx context.Context, userID uint) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *feedbackService) sanitize(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(text))
}

func checkUniqueQuestions(answers []dto.AnswerRequest) error {
	seen := make(map[int]struct{}, len(answers))
	for _, answer := range answers {
		if _, ok := seen[answer.QuestionNumber]; ok {
			return fmt.Errorf("%w: question %d", ErrDuplicateQuestion, answer.QuestionNumber)
		}
		seen[answer.QuestionNumber] = struct{}{}
	}
	return nil
}
