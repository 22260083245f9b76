// Package auth issues session tokens, resolves the caller of a request and
// answers role questions about it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/device"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/user"
)

// Predefined service errors.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so the two cannot be told apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTooManyAttempts is returned while an email is locked out.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// ErrDeviceNotBound is returned when signing out a token that has no
	// binding.
	ErrDeviceNotBound = errors.New("device token is not registered")
)

// UserFinder looks users up for login and identity resolution.
type UserFinder interface {
	Get(ctx context.Context, id int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// DeviceBinder records, looks up and removes device bindings.
type DeviceBinder interface {
	Bind(ctx context.Context, token string, userID int64) (bool, error)
	Get(ctx context.Context, token string) (*device.Binding, error)
	Unbind(ctx context.Context, token string) error
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Verify(password, hash string) bool
}

// LoginThrottle limits repeated failed logins per email.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *user.User `json:"user"`
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	JWTService *JWTService
	Users      UserFinder
	Devices    DeviceBinder
	Passwords  PasswordVerifier

	// Throttle is optional. Without it failed logins are not limited.
	Throttle LoginThrottle

	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// Service issues and resolves session credentials.
type Service struct {
	jwtService *JWTService
	users      UserFinder
	devices    DeviceBinder
	passwords  PasswordVerifier
	throttle   LoginThrottle
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		jwtService: cfg.JWTService,
		users:      cfg.Users,
		devices:    cfg.Devices,
		passwords:  cfg.Passwords,
		throttle:   cfg.Throttle,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Login verifies email and password, issues a session token and binds the
// supplied device token to the user. An unknown email and a wrong password
// both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(req.Email)

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable")
		} else if !ok {
			s.metrics.Login(metrics.LoginThrottled)
			return nil, ErrTooManyAttempts
		}
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, s.failLogin(ctx, email)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.passwords.Verify(req.Password, u.PasswordHash) {
		return nil, s.failLogin(ctx, email)
	}

	token, expiresAt, err := s.jwtService.GenerateToken(u.ID)
	if err != nil {
		return nil, err
	}

	bound := false
	if req.DeviceToken != nil {
		if _, err := s.devices.Bind(ctx, *req.DeviceToken, u.ID); err != nil {
			return nil, fmt.Errorf("binding device: %w", err)
		}
		bound = strings.TrimSpace(*req.DeviceToken) != ""
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	s.metrics.Login(metrics.LoginSuccess)
	s.logger.Info().
		Int64("user_id", u.ID).
		Bool("device_bound", bound).
		Msg("user logged in")

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      u,
	}, nil
}

func (s *Service) failLogin(ctx context.Context, email string) error {
	s.metrics.Login(metrics.LoginFailure)
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("failed to record login failure")
		}
	}
	return ErrInvalidCredentials
}

// SignOut removes the binding of deviceToken. Signing out a token without a
// binding returns ErrDeviceNotBound; a second sign-out of the same token is
// therefore an error. A token bound to another user is answered the same
// way and left in place.
func (s *Service) SignOut(ctx context.Context, req *models.SignOutRequest) error {
	binding, err := s.devices.Get(ctx, req.DeviceToken)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return ErrDeviceNotBound
		}
		return fmt.Errorf("looking up device: %w", err)
	}
	if binding.UserID != req.UserID {
		s.logger.Warn().
			Int64("user_id", req.UserID).
			Int64("owner_id", binding.UserID).
			Msg("sign out of a device bound to another user refused")
		return ErrDeviceNotBound
	}

	if err := s.devices.Unbind(ctx, req.DeviceToken); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return ErrDeviceNotBound
		}
		return fmt.Errorf("unbinding device: %w", err)
	}

	s.metrics.SignOut()
	s.logger.Info().Int64("user_id", req.UserID).Msg("user signed out")
	return nil
}

// ResolveIdentity validates a session token and loads the RoleContext of its
// subject. The user is read on every call so role and department changes
// apply immediately.
func (s *Service) ResolveIdentity(ctx context.Context, token string) (*RoleContext, error) {
	userID, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject no longer exists", ErrInvalidToken)
		}
		return nil, fmt.Errorf("loading identity: %w", err)
	}

	return NewRoleContext(IdentityFromUser(u)), nil
}
