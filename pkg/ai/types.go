package ai

import "context"

// QuestionScore pairs a collaborator's answer with the leader's for one
// questionnaire question, together with the weighted composite.
type QuestionScore struct {
	QuestionNumber    int
	SelfAnswer        int
	SelfExplanation   string
	LeaderAnswer      int
	LeaderExplanation string
	Composite         float64
}

// NarrativeInput contains everything the assistant needs to write a blended
// narrative for one collaborator.
type NarrativeInput struct {
	CollaboratorName string
	Questions        []QuestionScore
}

// Generator describes a language model capable of producing a narrative from
// paired questionnaire scores.
type Generator interface {
	Generate(ctx context.Context, input NarrativeInput) (string, error)
}
