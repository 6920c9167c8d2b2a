package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/models"
	"github.com/iago-labs/iago-go-api/internal/repository"
	"github.com/iago-labs/iago-go-api/pkg/ai"
)

// ErrFeedbackNotFound indicates the self or leader feedback (or its answers)
// is missing for the user.
var ErrFeedbackNotFound = errors.New("feedback not found")

// ErrAnswerCountMismatch indicates the self and leader answer sets differ in size.
var ErrAnswerCountMismatch = errors.New("answer sets do not match")

// ErrUnpairedQuestions indicates the two answer sets cover different question numbers.
var ErrUnpairedQuestions = errors.New("unpaired question numbers")

// Composite score weights. The leader's answer dominates; together with its
// share of the midpoint the leader carries 0.85 of the final value.
const (
	weightMean   = 0.15
	weightSelf   = 0.15
	weightLeader = 0.70
)

// ReviewService pairs the self and leader questionnaires for a user and
// computes the weighted composite per question.
type ReviewService interface {
	Aggregate(ctx context.Context, userID uint) ([]ai.QuestionScore, error)
	Scores(ctx context.Context, userID uint) ([]ai.QuestionScore, error)
	InvalidateScores(ctx context.Context, userID uint)
}

type reviewService struct {
	feedback repository.FeedbackRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewReviewService constructs a ReviewService instance. The redis client is
// optional; without it Scores always re-aggregates.
func NewReviewService(feedbackRepo repository.FeedbackRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) ReviewService {
	return &reviewService{
		feedback: feedbackRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "review_service").Logger(),
		tracer:   otel.Tracer("github.com/iago-labs/iago-go-api/internal/service/review"),
	}
}

func (s *reviewService) Aggregate(ctx context.Context, userID uint) ([]ai.QuestionScore, error) {
	ctx, span := s.tracer.Start(ctx, "review.aggregate", trace.WithAttributes(
		attribute.Int64("review.user_id", int64(userID)),
	))
	defer span.End()

	selfAnswers, err := s.loadAnswers(ctx, userID, true)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	leaderAnswers, err := s.loadAnswers(ctx, userID, false)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(selfAnswers) != len(leaderAnswers) {
		err := fmt.Errorf("%w: %d self answers, %d leader answers", ErrAnswerCountMismatch, len(selfAnswers), len(leaderAnswers))
		span.RecordError(err)
		return nil, err
	}

	scores, err := pairAnswers(selfAnswers, leaderAnswers)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("review.questions", len(scores)))

	return scores, nil
}

func (s *reviewService) loadAnswers(ctx context.Context, userID uint, selfAssessment bool) ([]models.FeedbackAnswer, error) {
	feedback, err := s.feedback.GetByUserAndKind(ctx, userID, selfAssessment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}

	answers, err := s.feedback.ListAnswers(ctx, feedback.ID)
	if err != nil {
		return nil, err
	}

	if len(answers) == 0 {
		return nil, ErrFeedbackNotFound
	}

	return answers, nil
}

// pairAnswers matches both ordered answer sets by question number. A question
// present on one side only fails the aggregation instead of being silently
// dropped.
func pairAnswers(selfAnswers, leaderAnswers []models.FeedbackAnswer) ([]ai.QuestionScore, error) {
	byNumber := make(map[int]models.FeedbackAnswer, len(leaderAnswers))
	for _, answer := range leaderAnswers {
		byNumber[answer.QuestionNumber] = answer
	}

	scores := make([]ai.QuestionScore, 0, len(selfAnswers))
	var unpaired []int

	for _, self := range selfAnswers {
		leader, ok := byNumber[self.QuestionNumber]
		if !ok {
			unpaired = append(unpaired, self.QuestionNumber)
			continue
		}
		delete(byNumber, self.QuestionNumber)

		scores = append(scores, ai.QuestionScore{
			QuestionNumber:    self.QuestionNumber,
			SelfAnswer:        self.Answer,
			SelfExplanation:   self.Explanation,
			LeaderAnswer:      leader.Answer,
			LeaderExplanation: leader.Explanation,
			Composite:         composite(self.Answer, leader.Answer),
		})
	}

	for number := range byNumber {
		unpaired = append(unpaired, number)
	}

	if len(unpaired) > 0 {
		sort.Ints(unpaired)
		return nil, fmt.Errorf("%w: %v", ErrUnpairedQuestions, unpaired)
	}

	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: no paired questions", ErrAnswerCountMismatch)
	}

	return scores, nil
}

func composite(selfAnswer, leaderAnswer int) float64 {
	mean := float64(selfAnswer+leaderAnswer) / 2
	return mean*weightMean + float64(selfAnswer)*weightSelf + float64(leaderAnswer)*weightLeader
}

// Scores returns the composite summary for a user, serving from cache when a
// fresh aggregation already ran.
func (s *reviewService) Scores(ctx context.Context, userID uint) ([]ai.QuestionScore, error) {
	cacheKey := scoresCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var scores []ai.QuestionScore
			if unmarshalErr := json.Unmarshal([]byte(cached), &scores); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("scores cache hit")
				return scores, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read scores cache")
		}
	}

	scores, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(scores); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store scores cache")
			}
		}
	}

	return scores, nil
}

// InvalidateScores drops the cached summary after a feedback mutation.
func (s *reviewService) InvalidateScores(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, scoresCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate scores cache")
	}
}

func scoresCacheKey(userID uint) string {
	return fmt.Sprintf("review:scores:%d", userID)
}
