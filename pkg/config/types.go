package config

import "time"

// Config is the daemon's root configuration: RPC host, listening port,
// content directory, and capture enable/file, plus the ambient logging and
// metrics blocks every daemon component shares. It has no version field.
type Config struct {
	Validator ValidatorConfig `yaml:"validator"`
	Local     LocalConfig     `yaml:"local"`
	Capture   CaptureConfig   `yaml:"capture"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ValidatorConfig points the RPC client at the validator it bootstraps
// from.
type ValidatorConfig struct {
	RPCHost       string   `yaml:"rpc_host"`
	MappingKey    string   `yaml:"mapping_key"`
	ReconnectWait Duration `yaml:"reconnect_wait"`
	RequestWait   Duration `yaml:"request_wait"`
}

// LocalConfig configures the local server that accepts publisher
// connections.
type LocalConfig struct {
	ListenPort int    `yaml:"listen_port"`
	ContentDir string `yaml:"content_dir"`
}

// CaptureConfig configures the optional capture sink.
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures the zerolog-backed logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration that parses from a YAML
// string like "5s" rather than a raw integer of nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration.
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
