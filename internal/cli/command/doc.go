// Package command provides the tw5keep-cli command tree.
//
//	tw5keep-cli probe
//	tw5keep-cli pull [--out FILE]
//	tw5keep-cli push FILE
//	tw5keep-cli backups list --backup-dir DIR [--wide]
//	tw5keep-cli backups restore NAME --backup-dir DIR --wiki-file FILE
//
// probe, pull and push talk to a running server; backups works directly on
// the backup directory.
package command
