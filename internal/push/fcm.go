package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/carejournal/carejournal/internal/provider/resilience"
)

// MaxTokensPerBatch is the FCM multicast limit.
const MaxTokensPerBatch = 500

// MulticastClient is the subset of the FCM messaging client used by FCMSender.
type MulticastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMConfig holds configuration for the FCM sender.
type FCMConfig struct {
	Client MulticastClient
	Guard  resilience.GuardConfig
	Logger zerolog.Logger
}

// FCMSender sends notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client MulticastClient
	guard  *resilience.Guard[*messaging.BatchResponse]
	logger zerolog.Logger
}

// NewFCMMessagingClient initializes the Firebase app from a service account
// file and returns its messaging client.
func NewFCMMessagingClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("firebase credentials file is required")
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}
	return client, nil
}

// NewFCMSender creates a new FCM sender.
func NewFCMSender(cfg FCMConfig) *FCMSender {
	if cfg.Guard.Name == "" {
		cfg.Guard.Name = "fcm"
	}
	return &FCMSender{
		client: cfg.Client,
		guard:  resilience.NewGuard[*messaging.BatchResponse](cfg.Guard),
		logger: cfg.Logger.With().Str("sender", "fcm").Logger(),
	}
}

// Send delivers msg in batches of MaxTokensPerBatch. Per-token failures are
// counted in the report; a batch that cannot be sent at all aborts Send.
func (s *FCMSender) Send(ctx context.Context, msg Message) (*Report, error) {
	if len(msg.Tokens) == 0 {
		return nil, ErrNoTokens
	}

	report := &Report{}
	for start := 0; start < len(msg.Tokens); start += MaxTokensPerBatch {
		end := min(start+MaxTokensPerBatch, len(msg.Tokens))
		batch := msg.Tokens[start:end]

		resp, err := s.guard.Do(ctx, func(ctx context.Context) (*messaging.BatchResponse, error) {
			return s.client.SendEachForMulticast(ctx, multicast(batch, msg.Title, msg.Body))
		})
		if err != nil {
			return report, fmt.Errorf("send batch %d-%d: %w", start, end, err)
		}

		report.Merge(batchReport(batch, resp))
	}

	s.logger.Debug().
		Int("success", report.Success).
		Int("failure", report.Failure).
		Int("unregistered", len(report.Unregistered)).
		Msg("push sent")

	return report, nil
}

func multicast(tokens []string, title, body string) *messaging.MulticastMessage {
	badge := 0
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}
}

// batchReport maps FCM responses back to tokens. Responses are in the same
// order as the tokens of the request.
func batchReport(tokens []string, resp *messaging.BatchResponse) *Report {
	r := &Report{}
	if resp == nil {
		return r
	}
	r.Success = resp.SuccessCount
	r.Failure = resp.FailureCount
	for i, sr := range resp.Responses {
		if sr == nil || sr.Success || i >= len(tokens) {
			continue
		}
		if messaging.IsUnregistered(sr.Error) {
			r.Unregistered = append(r.Unregistered, tokens[i])
		}
	}
	return r
}

// Name returns the provider name used for health reporting.
func (s *FCMSender) Name() string {
	return s.guard.Name()
}

var _ Sender = (*FCMSender)(nil)
