package bankapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     3,
		ResetTimeout:    time.Minute,
		HalfOpenMaxSucc: 2,
	})

	assert.Equal(t, StateClosed, cb.GetState())
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.GetState())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.GetState())
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     3,
		ResetTimeout:    time.Minute,
		HalfOpenMaxSucc: 2,
	})

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	assert.Equal(t, 0, cb.GetFailureCount())

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     1,
		ResetTimeout:    10 * time.Millisecond,
		HalfOpenMaxSucc: 2,
	})

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	time.Sleep(20 * time.Millisecond)

	// First check after the reset timeout moves the breaker to half-open.
	assert.False(t, cb.IsOpen())
	assert.Equal(t, StateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     1,
		ResetTimeout:    10 * time.Millisecond,
		HalfOpenMaxSucc: 2,
	})

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.GetState())
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(DefaultCircuitBreakerConfig())

	for i := 0; i < DefaultCircuitBreakerConfig().MaxFailures; i++ {
		cb.RecordFailure()
	}
	assert.True(t, cb.IsOpen())

	cb.Reset()
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 0, cb.GetFailureCount())
}

func TestBreakerState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
