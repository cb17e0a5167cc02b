// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for tw5keep-server.
type ServerConfig struct {
	Wiki    WikiSection    `koanf:"wiki"`
	Server  ServerSection  `koanf:"server"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// WikiSection configures the document and its snapshots.
type WikiSection struct {
	// File is the path of the wiki document. It must exist at startup.
	File string `koanf:"file"`

	// BackupDir holds backup.<epoch_millis>.html snapshots.
	// Created at startup if absent.
	BackupDir string `koanf:"backup_dir"`

	// SerializeUpdates runs PUT saves one at a time.
	// Default false: concurrent saves race and the last promotion wins.
	SerializeUpdates bool `koanf:"serialize_updates"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`

	// ShutdownTimeout bounds how long in-flight requests may run after
	// a termination signal.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HTTPConfig configures the wiki HTTP listener.
type HTTPConfig struct {
	// Address is the bind IP address.
	Address string `koanf:"address"`

	// Port is the bind port. Required.
	Port int `koanf:"port"`

	// RateLimit is the per-client request limit (requests/second).
	// 0 disables rate limiting.
	RateLimit int `koanf:"rate_limit"`
}

// MetricsSection configures the Prometheus listener.
type MetricsSection struct {
	// Addr is the host:port of the metrics listener. Empty disables it.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
