package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iago-labs/iago-go-api/internal/models"
)

func answerSet(values map[int]int) []models.FeedbackAnswer {
	answers := make([]models.FeedbackAnswer, 0, len(values))
	for number, value := range values {
		answers = append(answers, models.FeedbackAnswer{
			QuestionNumber: number,
			Answer:         value,
		})
	}
	return answers
}

func TestReviewServiceAggregateComposite(t *testing.T) {
	feedbackRepo := newMemoryFeedbackRepo()
	userID := uint(1)

	feedbackRepo.seed(userID, true, []models.FeedbackAnswer{
		{QuestionNumber: 1, Answer: 3, Explanation: "self view"},
		{QuestionNumber: 2, Answer: 4},
	})
	feedbackRepo.seed(userID, false, []models.FeedbackAnswer{
		{QuestionNumber: 1, Answer: 5, Explanation: "leader view"},
		{QuestionNumber: 2, Answer: 5},
	})

	svc := NewReviewService(feedbackRepo, nil, time.Minute, zerolog.Nop())

	scores, err := svc.Aggregate(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, scores, 2)

	require.Equal(t, 1, scores[0].QuestionNumber)
	require.Equal(t, 3, scores[0].SelfAnswer)
	require.Equal(t, 5, scores[0].LeaderAnswer)
	require.Equal(t, "self view", scores[0].SelfExplanation)
	require.Equal(t, "leader view", scores[0].LeaderExplanation)
	// mean(3,5)*0.15 + 3*0.15 + 5*0.70
	require.InDelta(t, 4.55, scores[0].Composite, 0.0001)

	require.Equal(t, 2, scores[1].QuestionNumber)
	require.InDelta(t, 4.775, scores[1].Composite, 0.0001)
}

func TestReviewServiceAggregateMissingFeedback(t *testing.T) {
	feedbackRepo := newMemoryFeedbackRepo()
	feedbackRepo.seed(4, true, answerSet(map[int]int{1: 3}))

	svc := NewReviewService(feedbackRepo, nil, time.Minute, zerolog.Nop())

	_, err := svc.Aggregate(context.Background(), 4)
	require.ErrorIs(t, err, ErrFeedbackNotFound)

	_, err = svc.Aggregate(context.Background(), 99)
	require.ErrorIs(t, err, ErrFeedbackNotFound)
}

func TestReviewServiceAggregateEmptyAnswers(t *testing.T) {
	feedbackRepo := newMemoryFeedbackRepo()
	feedbackRepo.seed(7, true, nil)
	feedbackRepo.seed(7, false, answerSet(map[int]int{1: 4}))

	svc := NewReviewService(feedbackRepo, nil, time.Minute, zerolog.Nop())

	_, err := svc.Aggregate(context.Background(), 7)
	require.ErrorIs(t, err, ErrFeedbackNotFound)
}

func TestReviewServiceAggregateCountMismatch(t *testing.T) {
	feedbackRepo := newMemoryFeedbackRepo()
	feedbackRepo.seed(2, true, answerSet(map[int]int{1: 3, 2: 4}))
	feedbackRepo.seed(2, false, answerSet(map[int]int{1: 5}))

	svc := NewReviewService(feedbackRepo, nil, time.Minute, zerolog.Nop())

	_, err := svc.Aggregate(context.Background(), 2)
	require.ErrorIs(t, err, ErrAnswerCountMismatch)
}

func TestReviewServiceAggregateUnpairedQuestions(t *testing.T) {
	feedbackRepo := newMemoryFeedbackRepo()
	feedbackRepo.seed(3, true, answerSet(map[int]int{1: 3, 2: 4}))
	feedbackRepo.seed(3, false, answerSet(map[int]int{1: 5, 9: 5}))

	svc := NewReviewService(feedbackRepo, nil, time.Minute, zerolog.Nop())

	_, err := svc.Aggregate(context.Background(), 3)
	require.ErrorIs(t, err, ErrUnpairedQuestions)
	require.Contains(t, err.Error(), "2")
	require.Contains(t, err.Error(), "9")
}

func TestReviewServiceScoresCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	feedbackRepo := newMemoryFeedbackRepo()
	userID := uint(5)
	selfFeedback := feedbackRepo.seed(userID, true, []models.FeedbackAnswer{{QuestionNumber: 1, Answer: 3}})
	feedbackRepo.seed(userID, false, []models.FeedbackAnswer{{QuestionNumber: 1, Answer: 5}})

	svc := NewReviewService(feedbackRepo, redisClient, time.Minute, zerolog.Nop())

	ctx := context.Background()
	first, err := svc.Scores(ctx, userID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.InDelta(t, 4.55, first[0].Composite, 0.0001)

	// Mutate underlying answers; the cached summary must still be served.
	stored := feedbackRepo.answers[selfFeedback.ID]
	stored[0].Answer = 1
	feedbackRepo.answers[selfFeedback.ID] = stored

	second, err := svc.Scores(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// Invalidation drops the cache and the next read recomputes.
	svc.InvalidateScores(ctx, userID)

	third, err := svc.Scores(ctx, userID)
	require.NoError(t, err)
	require.InDelta(t, composite(1, 5), third[0].Composite, 0.0001)
}

func TestReviewServiceScoresWithoutCache(t *testing.T) {
	feedbackRepo := newMemoryFeedbackRepo()
	feedbackRepo.seed(6, true, []models.FeedbackAnswer{{QuestionNumber: 1, Answer: 4}})
	feedbackRepo.seed(6, false, []models.FeedbackAnswer{{QuestionNumber: 1, Answer: 4}})

	svc := NewReviewService(feedbackRepo, nil, time.Minute, zerolog.Nop())

	scores, err := svc.Scores(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.InDelta(t, 4.0, scores[0].Composite, 0.0001)

	// No cache configured; invalidation is a no-op.
	svc.InvalidateScores(context.Background(), 6)
}

func TestCompositeWeights(t *testing.T) {
	require.InDelta(t, 5.0, composite(5, 5), 0.0001)
	require.InDelta(t, 1.0, composite(1, 1), 0.0001)
	require.InDelta(t, 4.55, composite(3, 5), 0.0001)
	require.InDelta(t, 4.775, composite(4, 5), 0.0001)
}
