// Package confloader provides configuration loading.
//
// It wraps koanf to load configuration from multiple sources into a typed
// struct. Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (TW5KEEP_ prefix)
//  3. Configuration file (YAML)
//  4. Default values (pre-populated target struct)
//
// Environment variables nest with a double underscore, so single
// underscores can stay inside key names:
//
//	TW5KEEP_WIKI__BACKUP_DIR=/srv/backups   -> wiki.backup_dir
//	TW5KEEP_SERVER__HTTP__PORT=8080         -> server.http.port
//
// A Watcher reports changes to the configuration file so selected settings
// (the log level) can be re-applied at runtime.
package confloader
