package config

import (
	"fmt"
	"time"
)

// RetryBackoffMode enumerates supported backoff growth modes.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// RetryConfig configures per-object upload retries during sync. Pipeline
// stages themselves are never retried; a failed publish is rerun by the
// operator or CI.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode,omitempty"`
	Initial    time.Duration    `yaml:"initial,omitempty"`
	Max        time.Duration    `yaml:"max,omitempty"`
	MaxRetries int              `yaml:"max_retries,omitempty"`
}

func (r *RetryConfig) applyDefaults() {
	if r.Mode == "" {
		r.Mode = RetryBackoffLinear
	}
	if r.Initial <= 0 {
		r.Initial = time.Second
	}
	if r.Max <= 0 {
		r.Max = 30 * time.Second
	}
	// MaxRetries deliberately defaults to 0: no automatic retry unless the
	// operator opts in.
}

// Validate checks the retry configuration invariants.
func (r RetryConfig) Validate() error {
	switch r.Mode {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return fmt.Errorf("unknown retry backoff mode: %q", r.Mode)
	}
	if r.MaxRetries < 0 {
		return fmt.Errorf("retry max_retries cannot be negative")
	}
	return nil
}
