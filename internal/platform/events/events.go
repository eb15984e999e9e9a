// Package events publishes domain events about alerts to a message broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	TypeAlertCreated  = "alert.created"
	TypeAlertReviewed = "alert.reviewed"
)

// Event is the envelope written to the broker. Key groups events for the
// same aggregate onto one partition.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	AgencyID   uuid.UUID       `json:"agency_id"`
	Key        string          `json:"-"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// New wraps payload in an Event.
func New(eventType string, agencyID uuid.UUID, key string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		AgencyID:   agencyID,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, evts ...Event) error
	Close() error
}

// LogPublisher writes events to the log instead of a broker. It is used when
// no brokers are configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, evts ...Event) error {
	for _, evt := range evts {
		p.logger.Debug().
			Str("event_id", evt.ID.String()).
			Str("event_type", evt.Type).
			Str("agency_id", evt.AgencyID.String()).
			RawJSON("payload", evt.Payload).
			Msg("event")
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }
