package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/commutewise/commutewise/internal/events"
)

// PubSubHandler consumes calculation events from a Pub/Sub subscription and
// feeds them to the aggregator.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	aggregator       *Aggregator
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Aggregator       *Aggregator
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Configure receive settings.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		aggregator:       cfg.Aggregator,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. Blocks until the context is
// cancelled or the subscription fails.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		startTime := time.Now()

		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		retry, err := h.handlePayload(ctx, msg.Data)
		if err != nil {
			logger.Error().Err(err).Bool("retry", retry).Msg("event processing failed")
			if retry {
				msg.Nack()
			} else {
				// Ack malformed or unknown events to prevent redelivery loops.
				msg.Ack()
			}
			return
		}

		logger.Debug().
			Dur("duration", time.Since(startTime)).
			Msg("event processed")

		msg.Ack()
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// handlePayload decodes and applies one event payload. The retry return
// reports whether a failure is worth redelivering.
func (h *PubSubHandler) handlePayload(ctx context.Context, data []byte) (retry bool, err error) {
	var event events.CalculationRecorded
	if err := json.Unmarshal(data, &event); err != nil {
		return false, fmt.Errorf("parsing event: %w", err)
	}

	if event.EventType != events.EventTypeCalculationRecorded {
		return false, fmt.Errorf("unknown event type %q", event.EventType)
	}

	if err := h.aggregator.Process(ctx, &event); err != nil {
		return true, fmt.Errorf("aggregating event: %w", err)
	}

	return false, nil
}
