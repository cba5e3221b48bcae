package store

import (
	"errors"
	"sync"
	"time"

	"github.com/tair/pos-core/pkg/logger"
)

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half-open"
)

// ErrCircuitOpen is returned while a mirror is being skipped
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker stops hammering a mirror that keeps failing
type CircuitBreaker struct {
	name            string
	maxFailures     int
	openTimeout     time.Duration
	halfOpenSuccess int
	state           CircuitState
	failures        int
	successCount    int
	lastStateChange time.Time
	now             func() time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a breaker that opens after maxFailures
// consecutive failures and probes again after openTimeout.
func NewCircuitBreaker(name string, maxFailures int, openTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:            name,
		maxFailures:     maxFailures,
		openTimeout:     openTimeout,
		halfOpenSuccess: 1,
		state:           StateClosed,
		lastStateChange: time.Now(),
		now:             time.Now,
	}
}

// Call executes fn unless the circuit is open
func (cb *CircuitBreaker) Call(fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen && cb.now().Sub(cb.lastStateChange) > cb.openTimeout {
		cb.transition(StateHalfOpen)
		cb.successCount = 0
		logger.Logger.Info().
			Str("circuit", cb.name).
			Msg("Circuit breaker transitioning to half-open")
	}
	state := cb.state
	cb.mu.Unlock()

	if state == StateOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++

	if cb.state == StateHalfOpen {
		cb.transition(StateOpen)
		logger.Logger.Warn().
			Str("circuit", cb.name).
			Msg("Circuit breaker reopened after half-open failure")
		return
	}
	if cb.failures >= cb.maxFailures && cb.state == StateClosed {
		cb.transition(StateOpen)
		logger.Logger.Error().
			Str("circuit", cb.name).
			Int("failures", cb.failures).
			Int("threshold", cb.maxFailures).
			Msg("Circuit breaker opened")
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.halfOpenSuccess {
			cb.transition(StateClosed)
			cb.failures = 0
			cb.successCount = 0
			logger.Logger.Info().
				Str("circuit", cb.name).
				Msg("Circuit breaker closed after successful recovery")
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) transition(state CircuitState) {
	cb.state = state
	cb.lastStateChange = cb.now()
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the circuit, used after a successful full resync
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.successCount = 0
	cb.transition(StateClosed)
}
