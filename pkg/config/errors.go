package config

import "errors"

var (
	// ErrRPCHostRequired indicates that validator.rpc_host must be specified.
	ErrRPCHostRequired = errors.New("validator.rpc_host must be specified")
	// ErrInvalidListenPort indicates that local.listen_port must be positive.
	ErrInvalidListenPort = errors.New("local.listen_port must be positive")
	// ErrCaptureFileRequired indicates capture.file must be set when capture is enabled.
	ErrCaptureFileRequired = errors.New("capture.file must be specified when capture.enabled is true")
	// ErrInvalidLogLevel indicates that the log level is invalid.
	ErrInvalidLogLevel = errors.New("invalid logging.level")
	// ErrInvalidLogFormat indicates that the log format is invalid.
	ErrInvalidLogFormat = errors.New("invalid logging.format")
)
