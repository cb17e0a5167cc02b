package main

import (
	"github.com/urfave/cli/v2"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"wiki-file":         "wiki.file",
	"backup-dir":        "wiki.backup_dir",
	"serialize-updates": "wiki.serialize_updates",
	"address":           "server.http.address",
	"port":              "server.http.port",
	"rate-limit":        "server.http.rate_limit",
	"shutdown-timeout":  "server.shutdown_timeout",
	"metrics-addr":      "metrics.addr",
	"log-level":         "log.level",
	"log-format":        "log.format",
}

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to YAML configuration file",
			EnvVars: []string{"TW5KEEP_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "wiki-file",
			Usage: "Path of the wiki document",
		},
		&cli.StringFlag{
			Name:  "backup-dir",
			Usage: "Directory for backup.<epoch_millis>.html snapshots",
		},
		&cli.StringFlag{
			Name:        "address",
			Usage:       "IP address to bind",
			DefaultText: "0.0.0.0",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "Port to bind (required unless set in config)",
		},
		&cli.IntFlag{
			Name:  "rate-limit",
			Usage: "Per-client requests per second, 0 disables",
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Grace period for in-flight requests on shutdown",
			DefaultText: "10s",
		},
		&cli.BoolFlag{
			Name:  "serialize-updates",
			Usage: "Run saves one at a time",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "host:port for the Prometheus metrics listener, empty disables",
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			DefaultText: "info",
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (text, json)",
			DefaultText: "text",
		},
	}
}

// flagOverrides returns the configuration keys for the flags the user
// actually set, so unset flags never mask file or environment values.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for name, key := range flagKeys {
		if !c.IsSet(name) {
			continue
		}
		overrides[key] = c.Value(name)
	}
	return overrides
}
