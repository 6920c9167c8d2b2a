package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestEventPublisherNilConnection(t *testing.T) {
	publisher := NewEventPublisher(nil, zerolog.Nop())

	// Without a broker connection publishing is a silent no-op.
	require.NotPanics(t, func() {
		publisher.Publish(SubjectFeedbackSubmitted, map[string]interface{}{"user_id": uint(1)})
		publisher.Publish(SubjectNarrativeGenerated, nil)
	})
}
