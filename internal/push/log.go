package push

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender logs messages instead of delivering them. Used in development
// when no FCM credentials are configured.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a new log-only sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("sender", "log").Logger()}
}

// Send logs msg and reports every token as delivered.
func (s *LogSender) Send(_ context.Context, msg Message) (*Report, error) {
	if len(msg.Tokens) == 0 {
		return nil, ErrNoTokens
	}

	s.logger.Info().
		Int("tokens", len(msg.Tokens)).
		Str("title", msg.Title).
		Str("body", msg.Body).
		Msg("push notification")

	return &Report{Success: len(msg.Tokens)}, nil
}

var _ Sender = (*LogSender)(nil)
