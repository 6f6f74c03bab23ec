package config

import (
	"fmt"
	"time"
)

// ShutdownConfig bounds each graceful stop: HTTP and pprof servers, meter and tracer providers.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Shutdown ---\n  timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown.timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
