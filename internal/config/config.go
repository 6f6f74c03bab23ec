// Package config defines the inventory service configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/inventory/pkg/config"
	"github.com/abgdnv/inventory/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	IDGen      IDGenConfig             `koanf:"idgen"`
	Nats       config.NATSConfig       `koanf:"nats"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
}

// IDGenConfig tunes the product ID generator.
type IDGenConfig struct {
	// AcquireTimeout bounds the wait for the generator guard; zero waits for the request context.
	AcquireTimeout time.Duration `koanf:"acquiretimeout"`
	// AdvisoryLock also serializes generation across processes with pg_advisory_xact_lock.
	AdvisoryLock    bool  `koanf:"advisorylock"`
	AdvisoryLockKey int64 `koanf:"advisorylockkey"`
}

func (c *IDGenConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Product ID generator ---\n")
	b.WriteString(fmt.Sprintf("  acquiretimeout: %s\n", c.AcquireTimeout))
	b.WriteString(fmt.Sprintf("  advisorylock: %t\n", c.AdvisoryLock))
	b.WriteString(fmt.Sprintf("  advisorylockkey: %d\n", c.AdvisoryLockKey))
	return b.String()
}

func (c *IDGenConfig) Validate() error {
	if c.AcquireTimeout < 0 {
		return fmt.Errorf("invalid idgen acquire timeout: %v", c.AcquireTimeout)
	}
	if c.AdvisoryLock && c.AdvisoryLockKey == 0 {
		return fmt.Errorf("idgen advisory lock is enabled but advisorylockkey is not configured")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.IDGen.String())
	b.WriteString(c.Nats.String())
	b.WriteString(c.Resilience.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer,
		&c.Database,
		&c.Log,
		&c.PProf,
		&c.Shutdown,
		&c.IDGen,
		&c.Nats,
		&c.Resilience,
		&c.Telemetry,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
