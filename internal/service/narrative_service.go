package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/dto"
	"github.com/iago-labs/iago-go-api/internal/models"
	"github.com/iago-labs/iago-go-api/internal/repository"
	"github.com/iago-labs/iago-go-api/pkg/ai"
)

// ErrMessageNotFound indicates no stored narrative exists for the user.
var ErrMessageNotFound = errors.New("message not found")

// ErrMessageExists indicates a narrative was already generated for the user;
// it must be deleted before a new one is produced.
var ErrMessageExists = errors.New("message already exists")

// ErrAssistant indicates the language model call failed.
var ErrAssistant = errors.New("assistant request failed")

// NarrativeService runs the aggregate, assemble, generate, persist pipeline
// and manages the stored narrative afterwards.
type NarrativeService interface {
	Generate(ctx context.Context, userID uint) (dto.MessageResponse, error)
	GetMessage(ctx context.Context, userID uint) (dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, userID uint) error
	Rate(ctx context.Context, userID uint, score bool) (dto.MessageResponse, error)
}

type narrativeService struct {
	review    ReviewService
	users     repository.UserRepository
	messages  repository.MessageRepository
	generator ai.Generator
	events    EventPublisher
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewNarrativeService constructs a NarrativeService instance.
func NewNarrativeService(review ReviewService, userRepo repository.UserRepository, messageRepo repository.MessageRepository, generator ai.Generator, events EventPublisher, logger zerolog.Logger) NarrativeService {
	return &narrativeService{
		review:    review,
		users:     userRepo,
		messages:  messageRepo,
		generator: generator,
		events:    events,
		logger:    logger.With().Str("component", "narrative_service").Logger(),
		tracer:    otel.Tracer("github.com/iago-labs/iago-go-api/internal/service/narrative"),
	}
}

func (s *narrativeService) Generate(ctx context.Context, userID uint) (dto.MessageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "narrative.generate", trace.WithAttributes(
		attribute.Int64("narrative.user_id", int64(userID)),
	))
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrUserNotFound
		}
		return dto.MessageResponse{}, err
	}

	if user.IsLeader {
		return dto.MessageResponse{}, ErrLeaderNotAllowed
	}

	if _, err := s.messages.GetByUser(ctx, userID); err == nil {
		return dto.MessageResponse{}, ErrMessageExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.MessageResponse{}, err
	}

	scores, err := s.review.Aggregate(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregation_failed")
		return dto.MessageResponse{}, err
	}

	narrative, err := s.generator.Generate(ctx, ai.NarrativeInput{
		CollaboratorName: user.Name,
		Questions:        scores,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation_failed")
		return dto.MessageResponse{}, fmt.Errorf("%w: %v", ErrAssistant, err)
	}

	snapshot, err := json.Marshal(compositeSnapshot(scores))
	if err != nil {
		return dto.MessageResponse{}, err
	}

	message := models.AssistantMessage{
		UserID:  user.ID,
		Message: narrative,
		Score:   false,
		Scores:  snapshot,
	}

	if err := s.messages.Create(ctx, &message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.MessageResponse{}, err
	}

	s.events.Publish(SubjectNarrativeGenerated, map[string]interface{}{
		"user_id":    user.ID,
		"message_id": message.ID,
		"questions":  len(scores),
	})

	s.logger.Info().Uint("message_id", message.ID).Uint("user_id", user.ID).Int("questions", len(scores)).Msg("narrative generated")

	return dto.NewMessageResponse(message), nil
}

func (s *narrativeService) GetMessage(ctx context.Context, userID uint) (dto.MessageResponse, error) {
	message, err := s.messages.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrMessageNotFound
		}
		return dto.MessageResponse{}, err
	}

	return dto.NewMessageResponse(message), nil
}

func (s *narrativeService) DeleteMessage(ctx context.Context, userID uint) error {
	deleted, err := s.messages.DeleteByUser(ctx, userID)
	if err != nil {
		return err
	}

	if deleted == 0 {
		return ErrMessageNotFound
	}

	s.logger.Info().Uint("user_id", userID).Msg("narrative deleted")

	return nil
}

// Rate sets the binary quality signal. Repeating the same value is a no-op
// write; the message text is never touched.
func (s *narrativeService) Rate(ctx context.Context, userID uint, score bool) (dto.MessageResponse, error) {
	message, err := s.messages.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrMessageNotFound
		}
		return dto.MessageResponse{}, err
	}

	if message.Score != score {
		message.Score = score
		if err := s.messages.Update(ctx, &message); err != nil {
			return dto.MessageResponse{}, err
		}
	}

	return dto.NewMessageResponse(message), nil
}

type compositeEntry struct {
	QuestionNumber int     `json:"question_number"`
	Composite      float64 `json:"composite"`
}

func compositeSnapshot(scores []ai.QuestionScore) []compositeEntry {
	entries := make([]compositeEntry, 0, len(scores))
	for _, score := range scores {
		entries = append(entries, compositeEntry{
			QuestionNumber: score.QuestionNumber,
			Composite:      score.Composite,
		})
	}
	return entries
}
