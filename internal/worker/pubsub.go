// Package worker delivers queued push notifications.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/push"
)

// ErrMalformedMessage marks a message that can never be delivered.
var ErrMalformedMessage = errors.New("malformed push message")

// TokenPruner removes device bindings for tokens the transport rejected.
type TokenPruner interface {
	UnbindAll(ctx context.Context, tokens []string) (int, error)
}

// PubSubHandler handles Pub/Sub push messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	sender           push.Sender
	devices          TokenPruner
	metrics          *metrics.Metrics
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Sender           push.Sender

	// Devices is optional. Without it unregistered tokens are only logged.
	Devices TokenPruner

	Metrics *metrics.Metrics
	Logger  zerolog.Logger
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

	h := NewHandler(cfg)
	h.client = client
	h.subscriber = subscriber
	return h, nil
}

// NewHandler creates a handler without a Pub/Sub connection. Messages are
// fed to it through Process.
func NewHandler(cfg PubSubConfig) *PubSubHandler {
	return &PubSubHandler{
		subscriptionName: cfg.SubscriptionName,
		sender:           cfg.Sender,
		devices:          cfg.Devices,
		metrics:          cfg.Metrics,
		logger:           cfg.Logger,
	}
}

// Start begins processing Pub/Sub messages. It blocks until ctx is done.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	if h.client == nil {
		return nil
	}
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	err := h.Process(logger.WithContext(ctx), msg.Data)
	switch {
	case err == nil:
		msg.Ack()
	case errors.Is(err, ErrMalformedMessage):
		// Redelivery cannot fix a bad payload.
		logger.Warn().Err(err).Msg("dropping malformed message")
		msg.Ack()
	default:
		logger.Error().Err(err).Msg("push delivery failed")
		msg.Nack()
	}
}

// Process decodes one queued message and delivers it. Errors wrapping
// ErrMalformedMessage must not be retried; all others may be.
func (h *PubSubHandler) Process(ctx context.Context, data []byte) error {
	startTime := time.Now()
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &h.logger
	}

	var msg push.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedMessage, err.Error())
	}
	if len(msg.Tokens) == 0 || msg.Title == "" {
		return fmt.Errorf("%w: missing tokens or title", ErrMalformedMessage)
	}

	report, err := h.sender.Send(ctx, msg)
	if err != nil {
		h.metrics.PushFailed()
		return err
	}
	h.metrics.PushSent(report.Success, report.Failure, len(report.Unregistered))

	if len(report.Unregistered) > 0 && h.devices != nil {
		removed, err := h.devices.UnbindAll(ctx, report.Unregistered)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to unbind unregistered devices")
		} else {
			logger.Info().Int("removed", removed).Msg("unbound unregistered devices")
		}
	}

	logger.Info().
		Int("success", report.Success).
		Int("failure", report.Failure).
		Dur("duration", time.Since(startTime)).
		Msg("push delivered")

	return nil
}
