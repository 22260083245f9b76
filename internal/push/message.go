// Package push delivers notifications to registered devices.
package push

import (
	"context"
	"errors"
)

// ErrNoTokens is returned when a message has no recipients.
var ErrNoTokens = errors.New("message has no device tokens")

// Message is a notification addressed to a set of device tokens.
type Message struct {
	Tokens []string `json:"tokens"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
}

// Report summarizes the outcome of a Send.
type Report struct {
	Success int
	Failure int

	// Unregistered lists tokens the transport reported as no longer valid.
	Unregistered []string
}

// Merge adds other's counts and unregistered tokens to r.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Success += other.Success
	r.Failure += other.Failure
	r.Unregistered = append(r.Unregistered, other.Unregistered...)
}

// Sender delivers a message to its device tokens.
type Sender interface {
	Send(ctx context.Context, msg Message) (*Report, error)
}
