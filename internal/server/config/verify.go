// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Verify validates the configuration.
//
// It performs no I/O: the existence of the document and the backup
// directory are startup concerns, not configuration errors.
func Verify(cfg *ServerConfig) error {
	if err := verifyWiki(&cfg.Wiki); err != nil {
		return err
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyWiki(cfg *WikiSection) error {
	if cfg.File == "" {
		return errors.New("wiki.file is required")
	}
	if cfg.BackupDir == "" {
		return errors.New("wiki.backup_dir is required")
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if net.ParseIP(cfg.HTTP.Address) == nil {
		return fmt.Errorf("invalid IP address: %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.Port == 0 {
		return errors.New("server.http.port is required")
	}
	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("server.http.port must be in 1..65535, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.RateLimit < 0 {
		return errors.New("server.http.rate_limit must not be negative")
	}
	if cfg.ShutdownTimeout < 0 {
		return errors.New("server.shutdown_timeout must not be negative")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "console":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return nil
}

// ListenAddr returns the host:port the wiki listener binds to.
func (c *ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Server.HTTP.Address, strconv.Itoa(c.Server.HTTP.Port))
}
