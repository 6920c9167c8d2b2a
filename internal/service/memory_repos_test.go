package service

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/iago-labs/iago-go-api/internal/models"
)

type memoryUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		users:  make(map[uint]models.User),
		nextID: 1,
	}
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ListCollaborators(ctx context.Context, limit, offset int) ([]models.User, error) {
	collaborators := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		if !user.IsLeader {
			collaborators = append(collaborators, user)
		}
	}

	sort.Slice(collaborators, func(i, j int) bool {
		return collaborators[i].Name < collaborators[j].Name
	})

	if offset > 0 {
		if offset >= len(collaborators) {
			return []models.User{}, nil
		}
		collaborators = collaborators[offset:]
	}
	if limit > 0 && limit < len(collaborators) {
		collaborators = collaborators[:limit]
	}

	return collaborators, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) add(user models.User) models.User {
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.users[user.ID] = user
	return user
}

type memoryFeedbackRepo struct {
	feedbacks    map[uint]models.Feedback
	answers      map[uint][]models.FeedbackAnswer
	nextID       uint
	nextAnswerID uint
}

func newMemoryFeedbackRepo() *memoryFeedbackRepo {
	return &memoryFeedbackRepo{
		feedbacks:    make(map[uint]models.Feedback),
		answers:      make(map[uint][]models.FeedbackAnswer),
		nextID:       1,
		nextAnswerID: 1,
	}
}

func (m *memoryFeedbackRepo) GetByUserAndKind(ctx context.Context, userID uint, selfAssessment bool) (models.Feedback, error) {
	for _, feedback := range m.feedbacks {
		if feedback.UserID == userID && feedback.SelfAssessment == selfAssessment {
			return feedback, nil
		}
	}
	return models.Feedback{}, gorm.ErrRecordNotFound
}

func (m *memoryFeedbackRepo) ListAnswers(ctx context.Context, feedbackID uint) ([]models.FeedbackAnswer, error) {
	answers := append([]models.FeedbackAnswer(nil), m.answers[feedbackID]...)
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].QuestionNumber < answers[j].QuestionNumber
	})
	return answers, nil
}

func (m *memoryFeedbackRepo) CreateWithAnswers(ctx context.Context, feedback *models.Feedback, answers []models.FeedbackAnswer) error {
	for _, existing := range m.feedbacks {
		if existing.UserID == feedback.UserID && existing.SelfAssessment == feedback.SelfAssessment {
			return gorm.ErrDuplicatedKey
		}
	}

	feedback.ID = m.nextID
	m.nextID++
	m.feedbacks[feedback.ID] = *feedback

	stored := make([]models.FeedbackAnswer, 0, len(answers))
	for i := range answers {
		answers[i].ID = m.nextAnswerID
		m.nextAnswerID++
		answers[i].FeedbackID = feedback.ID
		stored = append(stored, answers[i])
	}
	m.answers[feedback.ID] = stored

	return nil
}

func (m *memoryFeedbackRepo) UpdateAnswer(ctx context.Context, answer *models.FeedbackAnswer) error {
	stored := m.answers[answer.FeedbackID]
	for i := range stored {
		if stored[i].ID == answer.ID {
			stored[i] = *answer
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// seed registers a feedback with its answers directly, bypassing service checks.
func (m *memoryFeedbackRepo) seed(userID uint, selfAssessment bool, answers []models.FeedbackAnswer) models.Feedback {
	feedback := models.Feedback{UserID: userID, SelfAssessment: selfAssessment}
	if err := m.CreateWithAnswers(context.Background(), &feedback, answers); err != nil {
		panic(err)
	}
	return feedback
}

type memoryMessageRepo struct {
	messages map[uint]models.AssistantMessage
	nextID   uint
}

func newMemoryMessageRepo() *memoryMessageRepo {
	return &memoryMessageRepo{
		messages: make(map[uint]models.AssistantMessage),
		nextID:   1,
	}
}

func (m *memoryMessageRepo) GetByUser(ctx context.Context, userID uint) (models.AssistantMessage, error) {
	for _, message := range m.messages {
		if message.UserID == userID {
			return message, nil
		}
	}
	return models.AssistantMessage{}, gorm.ErrRecordNotFound
}

func (m *memoryMessageRepo) Create(ctx context.Context, message *models.AssistantMessage) error {
	message.ID = m.nextID
	m.nextID++
	m.messages[message.ID] = *message
	return nil
}

func (m *memoryMessageRepo) Update(ctx context.Context, message *models.AssistantMessage) error {
	if _, ok := m.messages[message.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.messages[message.ID] = *message
	return nil
}

func (m *memoryMessageRepo) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	var deleted int64
	for id, message := range m.messages {
		if message.UserID == userID {
			delete(m.messages, id)
			deleted++
		}
	}
	return deleted, nil
}

type recordingPublisher struct {
	subjects []string
	payloads []map[string]interface{}
}

func (r *recordingPublisher) Publish(subject string, data map[string]interface{}) {
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
}

type noopInvalidator struct {
	invalidated []uint
}

func (n *noopInvalidator) InvalidateScores(ctx context.Context, userID uint) {
	n.invalidated = append(n.invalidated, userID)
}
