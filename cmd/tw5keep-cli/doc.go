// Package main provides the entry point for tw5keep-cli.
//
// tw5keep-cli probes, downloads and uploads the document of a running
// tw5keep-server, and lists or restores backups on the local disk.
package main
