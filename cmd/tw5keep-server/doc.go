// Package main provides the entry point for tw5keep-server.
//
// tw5keep-server serves a single TiddlyWiki document over HTTP and accepts
// saves from the browser's PUT saver. Every save is first written to
// <backup-dir>/backup.<epoch_millis>.html and then copied over the
// document, so every version stays on disk.
//
// Usage:
//
//	tw5keep-server --wiki-file index.html --backup-dir backups --port 8080
//	tw5keep-server --config /etc/tw5keep/config.yaml
package main
