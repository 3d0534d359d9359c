package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for the faults the daemon treats as
// unrecoverable at init: a missing RPC host, a non-positive listen port,
// and a missing capture file path when capture is enabled.
func Validate(cfg *Config) error {
	if cfg.Validator.RPCHost == "" {
		return ErrRPCHostRequired
	}
	if cfg.Local.ListenPort <= 0 {
		return ErrInvalidListenPort
	}
	if cfg.Capture.Enabled && cfg.Capture.File == "" {
		return ErrCaptureFileRequired
	}
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, l := range validLevels {
		if strings.ToLower(cfg.Level) == l {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return ErrInvalidLogLevel
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return ErrInvalidLogFormat
	}
	return nil
}
