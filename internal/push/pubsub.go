package push

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Publisher is the subset of a Pub/Sub topic publisher used by PubSubPublisher.
type Publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
	Stop()
}

// PubSubConfig holds configuration for the Pub/Sub publisher.
type PubSubConfig struct {
	ProjectID string
	Topic     string
	Logger    zerolog.Logger
}

// PubSubPublisher hands messages to a Pub/Sub topic for asynchronous
// delivery by the worker.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher Publisher
	topic     string
	logger    zerolog.Logger
}

// NewPubSubPublisher connects to Pub/Sub and returns a publisher for cfg.Topic.
func NewPubSubPublisher(ctx context.Context, cfg PubSubConfig) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	p := NewPubSubPublisherWith(client.Publisher(cfg.Topic), cfg.Topic, cfg.Logger)
	p.client = client
	return p, nil
}

// NewPubSubPublisherWith wraps an existing publisher.
func NewPubSubPublisherWith(publisher Publisher, topic string, logger zerolog.Logger) *PubSubPublisher {
	return &PubSubPublisher{
		publisher: publisher,
		topic:     topic,
		logger:    logger.With().Str("sender", "pubsub").Str("topic", topic).Logger(),
	}
}

// Send publishes msg as JSON and waits for the server to accept it. The
// report counts the tokens as queued; delivery results are only known to
// the worker.
func (p *PubSubPublisher) Send(ctx context.Context, msg Message) (*Report, error) {
	if len(msg.Tokens) == 0 {
		return nil, ErrNoTokens
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode push message: %w", err)
	}

	id, err := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"kind": "push"},
	}).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("publish push message: %w", err)
	}

	p.logger.Debug().
		Str("message_id", id).
		Int("tokens", len(msg.Tokens)).
		Msg("push message queued")

	return &Report{Success: len(msg.Tokens)}, nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.publisher.Stop()
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

var _ Sender = (*PubSubPublisher)(nil)
