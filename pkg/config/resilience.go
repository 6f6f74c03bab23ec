package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ResilienceConfig tunes how event publishing copes with a degraded broker.
type ResilienceConfig struct {
	Retry          RetryConfig          `koanf:"retry"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuitbreaker"`
}

// RetryConfig feeds the JetStream publish retry options.
type RetryConfig struct {
	MaxAttempts    uint          `koanf:"maxattempts"`
	InitialBackoff time.Duration `koanf:"initialbackoff"`
}

// CircuitBreakerConfig feeds messaging.BreakerPublisher.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	ErrorRatePercent    int           `koanf:"errorratepercent"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

func (c *ResilienceConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Resilience ---\n")
	fmt.Fprintf(&b, "  retry: %d attempts, %v apart\n", c.Retry.MaxAttempts, c.Retry.InitialBackoff)
	fmt.Fprintf(&b, "  circuitbreaker: trips after %d consecutive failures or %d%% errors, reopens after %v\n",
		c.CircuitBreaker.ConsecutiveFailures, c.CircuitBreaker.ErrorRatePercent, c.CircuitBreaker.OpenTimeout)
	return b.String()
}

func (c *ResilienceConfig) Validate() error {
	return errors.Join(c.Retry.validate(), c.CircuitBreaker.validate())
}

func (c *RetryConfig) validate() error {
	if c.MaxAttempts == 0 {
		return errors.New("resilience.retry.maxattempts must be at least 1")
	}
	if c.InitialBackoff <= 0 {
		return errors.New("resilience.retry.initialbackoff must be positive")
	}
	return nil
}

func (c *CircuitBreakerConfig) validate() error {
	if c.ConsecutiveFailures == 0 {
		return errors.New("resilience.circuitbreaker.consecutivefailures must be at least 1")
	}
	if c.ErrorRatePercent < 0 || c.ErrorRatePercent > 100 {
		return fmt.Errorf("resilience.circuitbreaker.errorratepercent must be within 0..100, got %d", c.ErrorRatePercent)
	}
	if c.OpenTimeout <= 0 {
		return errors.New("resilience.circuitbreaker.opentimeout must be positive")
	}
	return nil
}
