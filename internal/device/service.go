package device

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service provides device binding operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new device service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Bind records that token belongs to userID. A blank token is a no-op.
// Returns true if a new binding was created.
func (s *Service) Bind(ctx context.Context, token string, userID int64) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}

	now := s.now()
	return s.repo.Upsert(ctx, &Binding{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Unbind removes a binding. Returns ErrDeviceNotFound if the token is unknown.
func (s *Service) Unbind(ctx context.Context, token string) error {
	return s.repo.DeleteByToken(ctx, token)
}

// UnbindAll removes every binding in tokens that still exists and returns how
// many were removed.
func (s *Service) UnbindAll(ctx context.Context, tokens []string) (int, error) {
	removed := 0
	for _, token := range tokens {
		err := s.repo.DeleteByToken(ctx, token)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, ErrDeviceNotFound):
		default:
			return removed, err
		}
	}
	return removed, nil
}

// Tokens returns the device tokens owned by any of userIDs.
func (s *Service) Tokens(ctx context.Context, userIDs []int64) ([]string, error) {
	bindings, err := s.repo.ListByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	tokens := make([]string, 0, len(bindings))
	for _, b := range bindings {
		tokens = append(tokens, b.Token)
	}
	return tokens, nil
}

// Get retrieves a binding by token.
func (s *Service) Get(ctx context.Context, token string) (*Binding, error) {
	return s.repo.GetByToken(ctx, token)
}

// Exists reports whether token is bound.
func (s *Service) Exists(ctx context.Context, token string) (bool, error) {
	return s.repo.Exists(ctx, token)
}

// RemoveUser deletes all bindings of a user.
func (s *Service) RemoveUser(ctx context.Context, userID int64) error {
	return s.repo.DeleteByUser(ctx, userID)
}
