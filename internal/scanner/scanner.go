package scanner

import (
	"time"

	"github.com/wonny/aegis-intraday/pkg/config"
)

const (
	// DefaultWorkers is the pool width of both pipeline stages
	DefaultWorkers = 10

	// DefaultTimeout bounds one provider call
	DefaultTimeout = 10 * time.Second

	// barInterval is the sampling interval requested from the provider
	barInterval = time.Minute
)

// Config holds the pipeline concurrency settings.
// It is read once per run and never mutated.
type Config struct {
	Workers int
	Timeout time.Duration
}

// ConfigFrom builds a Config from application settings
func ConfigFrom(cfg config.ScannerConfig) Config {
	return Config{
		Workers: cfg.Workers,
		Timeout: cfg.Timeout,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
