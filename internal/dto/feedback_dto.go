package dto

import (
	"github.com/iago-labs/iago-go-api/internal/models"
)

// AnswerRequest is one questionnaire answer in a submission or update.
type AnswerRequest struct {
	QuestionNumber int    `json:"question_number" validate:"required,min=1"`
	Answer         int    `json:"answer" validate:"required,min=1,max=5"`
	Explanation    string `json:"explanation" validate:"max=4000"`
}

// FeedbackSubmitRequest carries a full questionnaire submission.
type FeedbackSubmitRequest struct {
	Answers []AnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

// FeedbackUpdateRequest carries answer mutations for an existing submission.
// Only the listed question numbers are touched.
type FeedbackUpdateRequest struct {
	Answers []AnswerRequest `json:"answers" validate:"required,min=1,dive"`
}

// AnswerResponse is the public projection of a stored answer.
type AnswerResponse struct {
	QuestionNumber int    `json:"question_number"`
	Answer         int    `json:"answer"`
	Explanation    string `json:"explanation"`
}

// FeedbackResponse is the public projection of a feedback record with its
// answers ordered by question number.
type FeedbackResponse struct {
	FeedbackID     uint             `json:"feedback_id"`
	UserID         uint             `json:"user_id"`
	SelfAssessment bool             `json:"self_assessment"`
	Answers        []AnswerResponse `json:"answers"`
}

// NewFeedbackResponse builds the projection from a feedback record and its
// ordered answers.
func NewFeedbackResponse(feedback models.Feedback, answers []models.FeedbackAnswer) FeedbackResponse {
	response := FeedbackResponse{
		FeedbackID:     feedback.ID,
		UserID:         feedback.UserID,
		SelfAssessment: feedback.SelfAssessment,
		Answers:        make([]AnswerResponse, 0, len(answers)),
	}

	for _, answer := range answers {
		response.Answers = append(response.Answers, AnswerResponse{
			QuestionNumber: answer.QuestionNumber,
			Answer:         answer.Answer,
			Explanation:    answer.Explanation,
		})
	}

	return response
}
