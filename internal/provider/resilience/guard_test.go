package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carejournal/carejournal/internal/provider/resilience"
)

var errTransient = errors.New("transient")

func fastConfig(name string) resilience.GuardConfig {
	cfg := resilience.DefaultGuardConfig(name)
	cfg.InitialInterval = time.Millisecond
	cfg.MaxInterval = 5 * time.Millisecond
	return cfg
}

func TestGuard_Success(t *testing.T) {
	guard := resilience.NewGuard[string](fastConfig("test"))

	got, err := guard.Do(context.Background(), func(context.Context) (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestGuard_RetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32

	cfg := fastConfig("test-retry")
	cfg.MaxRetries = 5
	cbConfig := resilience.DefaultCircuitBreakerConfig("test-retry")
	// Increase threshold so circuit doesn't trip during test
	cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.Requests >= 100 }
	cfg.CircuitBreaker = &cbConfig
	guard := resilience.NewGuard[int](cfg)

	got, err := guard.Do(context.Background(), func(context.Context) (int, error) {
		if attempts.Add(1) < 3 {
			return 0, errTransient
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestGuard_PermanentNotRetried(t *testing.T) {
	var attempts atomic.Int32
	guard := resilience.NewGuard[int](fastConfig("test-permanent"))
	errInvalid := errors.New("invalid argument")

	_, err := guard.Do(context.Background(), func(context.Context) (int, error) {
		attempts.Add(1)
		return 0, resilience.Permanent(errInvalid)
	})
	assert.ErrorIs(t, err, errInvalid)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGuard_CircuitBreakerTrips(t *testing.T) {
	var attempts atomic.Int32

	cfg := fastConfig("test-trip")
	cfg.MaxRetries = 1
	cbConfig := resilience.DefaultCircuitBreakerConfig("test-trip")
	cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= 3 }
	cbConfig.Timeout = time.Minute
	cfg.CircuitBreaker = &cbConfig
	guard := resilience.NewGuard[int](cfg)

	failing := func(context.Context) (int, error) {
		attempts.Add(1)
		return 0, errTransient
	}

	for i := 0; i < 3; i++ {
		_, _ = guard.Do(context.Background(), failing)
	}
	assert.Equal(t, gobreaker.StateOpen, guard.CircuitBreakerState())

	before := attempts.Load()
	_, err := guard.Do(context.Background(), failing)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, before, attempts.Load(), "open circuit must not call the provider")
}

func TestGuard_AttemptTimeout(t *testing.T) {
	cfg := fastConfig("test-timeout")
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxRetries = 1
	guard := resilience.NewGuard[int](cfg)

	_, err := guard.Do(context.Background(), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuard_ContextCancellation(t *testing.T) {
	guard := resilience.NewGuard[int](fastConfig("test-cancel"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := guard.Do(ctx, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	assert.Error(t, err)
}

func TestDefaultCircuitBreakerConfig(t *testing.T) {
	cfg := resilience.DefaultCircuitBreakerConfig("fcm")

	assert.Equal(t, "fcm", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.NotNil(t, cfg.ReadyToTrip)
	assert.NotNil(t, cfg.IsSuccessful)
}

func TestCountsAgainstProvider(t *testing.T) {
	assert.True(t, resilience.CountsAgainstProvider(nil))
	assert.True(t, resilience.CountsAgainstProvider(fmt.Errorf("send: %w", context.Canceled)))
	assert.False(t, resilience.CountsAgainstProvider(context.DeadlineExceeded))
	assert.False(t, resilience.CountsAgainstProvider(errors.New("fcm unavailable")))
}

func TestDefaultReadyToTrip(t *testing.T) {
	tests := []struct {
		name   string
		counts gobreaker.Counts
		want   bool
	}{
		{"too few requests", gobreaker.Counts{Requests: 4, TotalFailures: 4}, false},
		{"below ratio", gobreaker.Counts{Requests: 10, TotalFailures: 4}, false},
		{"at ratio", gobreaker.Counts{Requests: 10, TotalFailures: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resilience.DefaultReadyToTrip(tt.counts))
		})
	}
}

func TestDefaultGuardConfig(t *testing.T) {
	cfg := resilience.DefaultGuardConfig("fcm")

	assert.Equal(t, "fcm", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(3), cfg.MaxRetries)
	require.NotNil(t, cfg.CircuitBreaker)
}
