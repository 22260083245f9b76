package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/auth"
	"github.com/carejournal/carejournal/internal/metrics"
)

// Guard response texts.
const (
	NoIdentityTitle    = "Could not find the user"
	NoIdentityDetail   = "User does not exist in the request context"
	AccessDeniedTitle  = "Access denied"
	AccessDeniedDetail = "You can't access this resource"
)

// IdentityResolver turns a bearer token into the caller's RoleContext.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (*auth.RoleContext, error)
}

// Identity resolves the bearer token of every request and stores the
// caller's RoleContext in the request context. Requests without a usable
// token continue unauthenticated; the guards below decide whether that is
// acceptable.
func Identity(resolver IdentityResolver, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			rc, err := resolver.ResolveIdentity(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrTokenExpired) {
					log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("failed to resolve identity")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithRoleContext(r.Context(), rc)
			annotateIdentity(ctx, rc)
			annotateSpan(r, rc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token of a "Bearer" Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")

	// Check for Bearer prefix (case-insensitive)
	const bearerPrefix = "Bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	return token, token != ""
}

// RequireAuthenticated rejects requests without a resolved identity with 401.
func RequireAuthenticated(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.RoleContextFrom(r.Context()); !ok {
				m.GuardDenied("authenticated", http.StatusUnauthorized)
				writeNoIdentity(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin lets only admins through. A missing identity is 401, any
// other caller 403. A role without a rank is denied and logged.
func RequireAdmin(m *metrics.Metrics, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := auth.RoleContextFrom(r.Context())
			if !ok {
				m.GuardDenied("admin", http.StatusUnauthorized)
				writeNoIdentity(w, r)
				return
			}

			isAdmin, err := rc.IsAdmin()
			if err != nil {
				log.Error().Err(err).
					Int64("user_id", rc.UserID()).
					Str("request_id", GetRequestID(r.Context())).
					Msg("role evaluation failed")
			}
			if !isAdmin {
				m.GuardDenied("admin", http.StatusForbidden)
				writeAccessDenied(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeNoIdentity(w http.ResponseWriter, r *http.Request) {
	problem := models.NewProblem(models.ProblemTypeUnauthorized, NoIdentityTitle, http.StatusUnauthorized, GetRequestID(r.Context()))
	problem.Detail = NoIdentityDetail
	problem.Instance = r.URL.Path
	problem.Write(w)
}

func writeAccessDenied(w http.ResponseWriter, r *http.Request) {
	problem := models.NewForbidden(GetRequestID(r.Context()), AccessDeniedTitle, AccessDeniedDetail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// GetUserID returns the authenticated user ID, or 0 when the request is
// unauthenticated.
func GetUserID(ctx context.Context) int64 {
	if rc, ok := auth.RoleContextFrom(ctx); ok {
		return rc.UserID()
	}
	return 0
}
