package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/metrics"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// Name labels rejections in the guard denial metric.
	Name         string
	RequestLimit int
	WindowLength time.Duration
}

// Rate limits per endpoint class.
var (
	// AuthRateLimit guards login, sign-out and first-user bootstrap per IP.
	AuthRateLimit = RateLimitConfig{Name: "rate_auth", RequestLimit: 10, WindowLength: time.Minute}

	// ExpensiveRateLimit guards endpoints that fan out push notifications.
	ExpensiveRateLimit = RateLimitConfig{Name: "rate_expensive", RequestLimit: 30, WindowLength: time.Minute}

	// StandardRateLimit applies to every authenticated endpoint per user.
	StandardRateLimit = RateLimitConfig{Name: "rate_standard", RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP limits requests per client IP as resolved by chi's RealIP.
func RateLimitByIP(cfg RateLimitConfig, m *metrics.Metrics) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(limitExceeded(cfg, m)),
	)
}

// RateLimitByUser limits requests per authenticated user and falls back to
// the client IP for anonymous requests.
func RateLimitByUser(cfg RateLimitConfig, m *metrics.Metrics) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(keyByUserOrIP),
		httprate.WithLimitHandler(limitExceeded(cfg, m)),
	)
}

func keyByUserOrIP(r *http.Request) (string, error) {
	if userID := GetUserID(r.Context()); userID != 0 {
		return "user:" + strconv.FormatInt(userID, 10), nil
	}
	return httprate.KeyByRealIP(r)
}

// limitExceeded answers with a 429 problem. httprate does not expose the
// window reset time, so Retry-After is the full window.
func limitExceeded(cfg RateLimitConfig, m *metrics.Metrics) http.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(cfg.WindowLength.Seconds())))

	return func(w http.ResponseWriter, r *http.Request) {
		m.GuardDenied(cfg.Name, http.StatusTooManyRequests)

		problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
		problem.Instance = r.URL.Path
		w.Header().Set("Retry-After", retryAfter)
		problem.Write(w)
	}
}
