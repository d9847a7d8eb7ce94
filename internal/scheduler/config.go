package scheduler

import (
	"time"
)

// Config controls the reconciliation loop interval and window sizing.
type Config struct {
	RunInterval time.Duration
	Lookback    time.Duration
	RunTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Hour,
		Lookback:    24 * time.Hour,
		RunTimeout:  10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.Lookback <= 0 {
		c.Lookback = defaults.Lookback
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}
