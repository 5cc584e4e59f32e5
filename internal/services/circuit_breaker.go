package services

import (
	"errors"
	"sync"
	"time"

	"simple-bank-api/internal/config"
	"simple-bank-api/internal/models"
)

var (
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

type CircuitBreakerConfig struct {
	Name             string
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "currency_api",
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// CircuitBreakerConfigFrom builds breaker settings for the currency API
func CircuitBreakerConfigFrom(cfg config.CurrencyConfig) CircuitBreakerConfig {
	c := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold > 0 {
		c.FailureThreshold = cfg.FailureThreshold
	}
	if cfg.SuccessThreshold > 0 {
		c.SuccessThreshold = cfg.SuccessThreshold
	}
	if cfg.OpenTimeout > 0 {
		c.OpenTimeout = cfg.OpenTimeout
	}
	return c
}

const (
	StateClosed models.CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker stops calls to a failing dependency. After FailureThreshold
// consecutive failures it opens; once OpenTimeout has passed it lets trial calls
// through (half-open) and closes again after SuccessThreshold successes.
type CircuitBreaker struct {
	mu                sync.Mutex
	config            CircuitBreakerConfig
	metrics           MetricsRecorderInterface
	state             models.CircuitBreakerState
	failures          int
	halfOpenSuccesses int
	openedAt          time.Time
	now               func() time.Time
}

// NewCircuitBreaker creates a closed breaker. metrics may be nil.
func NewCircuitBreaker(config CircuitBreakerConfig, metrics MetricsRecorderInterface) CircuitBreakerInterface {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	cb := &CircuitBreaker{
		config:  config,
		metrics: metrics,
		state:   StateClosed,
		now:     time.Now,
	}
	cb.reportState()
	return cb
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.OpenTimeout {
		cb.setState(StateHalfOpen)
		return false
	}

	return cb.state == StateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.halfOpenSuccesses++
		if cb.halfOpenSuccesses >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.setState(StateOpen)
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
	}
}

func (cb *CircuitBreaker) GetState() models.CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
}

func (cb *CircuitBreaker) GetFailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// setState must be called with mu held
func (cb *CircuitBreaker) setState(state models.CircuitBreakerState) {
	cb.state = state
	cb.halfOpenSuccesses = 0
	switch state {
	case StateOpen:
		cb.openedAt = cb.now()
	case StateClosed:
		cb.failures = 0
	}
	cb.reportState()
}

func (cb *CircuitBreaker) reportState() {
	cb.metrics.RecordGauge("circuit_breaker_state", float64(cb.state), map[string]string{"service": cb.config.Name})
}
