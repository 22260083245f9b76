package push

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/filter"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/user"
)

// UserLister lists users matching filters.
type UserLister interface {
	List(ctx context.Context, filters []filter.Filter) ([]*user.User, error)
}

// TokenStore resolves and prunes device bindings.
type TokenStore interface {
	Tokens(ctx context.Context, userIDs []int64) ([]string, error)
	UnbindAll(ctx context.Context, tokens []string) (int, error)
}

// NotifierConfig holds configuration for the Notifier.
type NotifierConfig struct {
	Users   UserLister
	Devices TokenStore
	Sender  Sender
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// Notifier addresses notifications to groups of users.
type Notifier struct {
	users   UserLister
	devices TokenStore
	sender  Sender
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewNotifier creates a new notifier.
func NewNotifier(cfg NotifierConfig) *Notifier {
	return &Notifier{
		users:   cfg.Users,
		devices: cfg.Devices,
		sender:  cfg.Sender,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// NotifyDepartment sends title and body to every device owned by a user of
// the department. A department without devices is a no-op. Tokens the
// transport reports as unregistered are unbound.
func (n *Notifier) NotifyDepartment(ctx context.Context, departmentID int64, title, body string) error {
	users, err := n.users.List(ctx, []filter.Filter{
		{Property: "departmentId", Value: strconv.FormatInt(departmentID, 10)},
	})
	if err != nil {
		return fmt.Errorf("list department users: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	tokens, err := n.devices.Tokens(ctx, ids)
	if err != nil {
		return fmt.Errorf("list department devices: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	return n.notify(ctx, Message{Tokens: tokens, Title: title, Body: body}, departmentID)
}

func (n *Notifier) notify(ctx context.Context, msg Message, departmentID int64) error {
	report, err := n.sender.Send(ctx, msg)
	if err != nil {
		n.metrics.PushFailed()
		return fmt.Errorf("send push: %w", err)
	}
	n.metrics.PushSent(report.Success, report.Failure, len(report.Unregistered))

	if len(report.Unregistered) > 0 {
		removed, err := n.devices.UnbindAll(ctx, report.Unregistered)
		if err != nil {
			n.logger.Warn().Err(err).Msg("failed to unbind unregistered devices")
		} else {
			n.logger.Info().
				Int64("department_id", departmentID).
				Int("removed", removed).
				Msg("unbound unregistered devices")
		}
	}
	return nil
}
