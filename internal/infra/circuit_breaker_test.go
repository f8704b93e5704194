package infra

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote down")

func failing() error { return errRemote }
func passing() error { return nil }

func TestTripsOpenAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(failing), errRemote)
	}
	assert.Equal(t, CBOpen, cb.State())

	// Open breaker fast-fails without invoking fn.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Minute})

	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))
	require.NoError(t, cb.Execute(passing))
	require.Error(t, cb.Execute(failing))
	require.Error(t, cb.Execute(failing))

	assert.Equal(t, CBClosed, cb.State(), "non-consecutive failures must not trip the breaker")
}

func TestHalfOpenProbeAndRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(failing))
	require.Equal(t, CBOpen, cb.State())

	time.Sleep(15 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	// Two successful probes close the breaker.
	require.NoError(t, cb.Execute(passing))
	require.NoError(t, cb.Execute(passing))
	assert.Equal(t, CBClosed, cb.State())
}

func TestFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(failing))
	time.Sleep(15 * time.Millisecond)
	require.Equal(t, CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(failing))
	assert.Equal(t, CBOpen, cb.State())
}

func TestZeroConfigFallsBackToDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	def := DefaultCBConfig()
	assert.Equal(t, def.FailureThreshold, cb.cfg.FailureThreshold)
	assert.Equal(t, def.SuccessThreshold, cb.cfg.SuccessThreshold)
	assert.Equal(t, def.OpenTimeout, cb.cfg.OpenTimeout)
}
