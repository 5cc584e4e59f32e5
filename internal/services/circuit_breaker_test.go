package services

import (
	"testing"
	"time"

	"simple-bank-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CircuitBreakerTestSuite struct {
	suite.Suite
	breaker *CircuitBreaker
	clock   time.Time
}

func (s *CircuitBreakerTestSuite) SetupTest() {
	s.clock = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.breaker = NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "currency_api",
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}, nil).(*CircuitBreaker)
	s.breaker.now = func() time.Time { return s.clock }
}

func TestCircuitBreakerTestSuite(t *testing.T) {
	suite.Run(t, new(CircuitBreakerTestSuite))
}

func (s *CircuitBreakerTestSuite) trip() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
}

func (s *CircuitBreakerTestSuite) TestStartsClosed() {
	s.False(s.breaker.IsOpen())
	s.Equal(StateClosed, s.breaker.GetState())
	s.Equal(0, s.breaker.GetFailureCount())
}

func (s *CircuitBreakerTestSuite) TestOpensAtThreshold() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.False(s.breaker.IsOpen())
	s.Equal(2, s.breaker.GetFailureCount())

	s.breaker.RecordFailure()
	s.True(s.breaker.IsOpen())
}

func (s *CircuitBreakerTestSuite) TestSuccessResetsFailureCount() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.breaker.RecordSuccess()

	s.Equal(0, s.breaker.GetFailureCount())
	s.breaker.RecordFailure()
	s.False(s.breaker.IsOpen())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenAfterTimeout() {
	s.trip()

	s.clock = s.clock.Add(29 * time.Second)
	s.True(s.breaker.IsOpen())

	s.clock = s.clock.Add(time.Second)
	s.False(s.breaker.IsOpen())
	s.Equal(StateHalfOpen, s.breaker.GetState())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenClosesAfterSuccesses() {
	s.trip()
	s.clock = s.clock.Add(time.Minute)
	s.False(s.breaker.IsOpen())

	s.breaker.RecordSuccess()
	s.Equal(StateHalfOpen, s.breaker.GetState())
	s.breaker.RecordSuccess()
	s.Equal(StateClosed, s.breaker.GetState())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenFailureReopens() {
	s.trip()
	s.clock = s.clock.Add(time.Minute)
	s.False(s.breaker.IsOpen())

	s.breaker.RecordFailure()

	s.Equal(StateOpen, s.breaker.GetState())
	s.True(s.breaker.IsOpen())
}

func (s *CircuitBreakerTestSuite) TestReset() {
	s.trip()
	s.breaker.Reset()

	s.False(s.breaker.IsOpen())
	s.Equal(0, s.breaker.GetFailureCount())
}

func TestCircuitBreakerConfigFrom(t *testing.T) {
	cfg := CircuitBreakerConfigFrom(config.CurrencyConfig{FailureThreshold: 7, OpenTimeout: time.Minute})

	assert.Equal(t, "currency_api", cfg.Name)
	assert.Equal(t, 7, cfg.FailureThreshold)
	assert.Equal(t, 2, cfg.SuccessThreshold)
	assert.Equal(t, time.Minute, cfg.OpenTimeout)
}
