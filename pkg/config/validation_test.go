package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Validator: ValidatorConfig{RPCHost: "http://localhost:8899"},
		Local:     LocalConfig{ListenPort: 8910},
		Logging:   LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidateRejectsMissingRPCHost(t *testing.T) {
	cfg := validConfig()
	cfg.Validator.RPCHost = ""
	assert.ErrorIs(t, Validate(cfg), ErrRPCHostRequired)
}

func TestValidateRejectsNonPositiveListenPort(t *testing.T) {
	cfg := validConfig()
	cfg.Local.ListenPort = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidListenPort)
}

func TestValidateRejectsCaptureEnabledWithoutFile(t *testing.T) {
	cfg := validConfig()
	cfg.Capture.Enabled = true
	assert.ErrorIs(t, Validate(cfg), ErrCaptureFileRequired)
}

func TestValidateAcceptsCaptureEnabledWithFile(t *testing.T) {
	cfg := validConfig()
	cfg.Capture.Enabled = true
	cfg.Capture.File = "/var/log/oracle/capture.gz"
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsInvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.ErrorIs(t, Validate(cfg), ErrInvalidLogLevel)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Validator: ValidatorConfig{RPCHost: "http://localhost:8899"}}
	applyDefaults(cfg)
	assert.Equal(t, 8910, cfg.Local.ListenPort)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
}
