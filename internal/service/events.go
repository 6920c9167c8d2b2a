package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Event subjects published on the review stream.
const (
	SubjectFeedbackSubmitted  = "review.feedback.submitted"
	SubjectNarrativeGenerated = "review.narrative.generated"
)

// Event is the envelope published to NATS when something notable happens in
// the review pipeline. Publishing is fire-and-forget; a broker outage never
// fails the request that produced the event.
type Event struct {
	ID      string                 `json:"id"`
	Subject string                 `json:"subject"`
	SentAt  time.Time              `json:"sent_at"`
	Data    map[string]interface{} `json:"data"`
}

// EventPublisher emits review pipeline events.
type EventPublisher interface {
	Publish(subject string, data map[string]interface{})
}

type natsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewEventPublisher constructs a NATS-backed publisher. A nil connection
// yields a publisher that drops events, so callers never need nil checks.
func NewEventPublisher(conn *nats.Conn, logger zerolog.Logger) EventPublisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(subject string, data map[string]interface{}) {
	if p.conn == nil {
		return
	}

	event := Event{
		ID:      uuid.NewString(),
		Subject: subject,
		SentAt:  time.Now().UTC(),
		Data:    data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
