// Package config defines the server configuration structure.
//
// Configuration is loaded once at startup by confloader (defaults, YAML
// file, TW5KEEP_ environment variables, then command-line flags), checked
// by Verify and then shared read-only by every request handler. Only the
// log level may change afterwards, through the config file watcher.
package config
