package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/carejournal/carejournal/internal/auth"
)

// identityFields is filled in by the Identity middleware, which runs inside
// Logger, so the completed request can be logged with its caller.
type identityFields struct {
	userID int64
	role   string
}

type identityFieldsKey struct{}

func annotateIdentity(ctx context.Context, rc *auth.RoleContext) {
	if f, ok := ctx.Value(identityFieldsKey{}).(*identityFields); ok {
		f.userID = rc.UserID()
		f.role = string(rc.Identity().Role)
	}
}

// Logger returns a middleware that logs HTTP requests.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newStatusRecorder(w)
			fields := &identityFields{}

			// Process request
			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), identityFieldsKey{}, fields)))

			// Log request
			duration := time.Since(start)
			requestID := GetRequestID(r.Context())

			// Extract trace ID from span context
			spanCtx := trace.SpanContextFromContext(r.Context())
			traceID := ""
			spanID := ""
			if spanCtx.IsValid() {
				traceID = spanCtx.TraceID().String()
				spanID = spanCtx.SpanID().String()
			}

			event := log.Info()
			if fields.userID != 0 {
				event = event.Int64("user_id", fields.userID).Str("role", fields.role)
			}
			event.
				Str("request_id", requestID).
				Str("trace_id", traceID).
				Str("span_id", spanID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", routePattern(r)).
				Int("status", wrapped.statusCode).
				Int64("bytes", wrapped.written).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("request completed")
		})
	}
}
