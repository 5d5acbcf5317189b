// Package events publishes domain events for downstream processing.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// EventTypeCalculationRecorded is the event emitted after each scored calculation.
const EventTypeCalculationRecorded = "calculation_recorded"

// CalculationRecorded is published after a calculation has been scored.
// The worker consumes it to maintain daily usage aggregates.
type CalculationRecorded struct {
	EventType     string    `json:"event_type"`
	CalculationID string    `json:"calculation_id"`
	SessionID     string    `json:"session_id"`
	Mode          string    `json:"mode"`
	Score         int       `json:"score"`
	DistanceKm    float64   `json:"distance_km"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// Publisher publishes domain events.
type Publisher interface {
	PublishCalculationRecorded(ctx context.Context, event CalculationRecorded) error
	Close() error
}

// PubSubPublisher publishes events to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// PubSubPublisherConfig holds configuration for the Pub/Sub publisher.
type PubSubPublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// NewPubSubPublisher creates a publisher bound to the configured topic.
func NewPubSubPublisher(ctx context.Context, cfg PubSubPublisherConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubPublisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// PublishCalculationRecorded publishes a calculation event and waits for the
// server acknowledgement.
func (p *PubSubPublisher) PublishCalculationRecorded(ctx context.Context, event CalculationRecorded) error {
	event.EventType = EventTypeCalculationRecorded

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type": EventTypeCalculationRecorded,
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.topicName, err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Str("calculation_id", event.CalculationID).
		Msg("published calculation event")

	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}

// NoopPublisher discards events. Used when no Pub/Sub project is configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that drops all events.
func NewNoopPublisher(logger zerolog.Logger) *NoopPublisher {
	logger.Warn().Msg("event publishing disabled, calculation aggregates will not update")
	return &NoopPublisher{}
}

// PublishCalculationRecorded discards the event.
func (p *NoopPublisher) PublishCalculationRecorded(_ context.Context, _ CalculationRecorded) error {
	return nil
}

// Close is a no-op.
func (p *NoopPublisher) Close() error {
	return nil
}

// Interface guards.
var (
	_ Publisher = (*PubSubPublisher)(nil)
	_ Publisher = (*NoopPublisher)(nil)
)
