package models

import "time"

// Feedback groups one questionnaire submission about a user. SelfAssessment
// distinguishes the collaborator's own answers from the leader's. The composite
// unique index guarantees at most one submission per (user, kind) at the
// storage layer, so concurrent duplicate submissions cannot both land.
type Feedback struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"not null;uniqueIndex:idx_feedback_user_kind" json:"user_id"`
	SelfAssessment bool             `gorm:"not null;uniqueIndex:idx_feedback_user_kind" json:"self_assessment"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	User           User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Answers        []FeedbackAnswer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"answers,omitempty"`
}

// FeedbackAnswer is a single questionnaire answer. Answers are scored on a
// 1..5 scale; question numbers are unique within one feedback record.
type FeedbackAnswer struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FeedbackID     uint      `gorm:"not null;uniqueIndex:idx_answer_feedback_question" json:"feedback_id"`
	QuestionNumber int       `gorm:"not null;uniqueIndex:idx_answer_feedback_question" json:"question_number"`
	Answer         int       `gorm:"not null;check:answer >= 1 AND answer <= 5" json:"answer"`
	Explanation    string    `gorm:"type:text" json:"explanation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Answer scale bounds.
const (
	AnswerMin = 1
	AnswerMax = 5
)
