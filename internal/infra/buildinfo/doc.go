// Package buildinfo exposes version information stamped at link time.
//
//	go build -ldflags "-X github.com/yndnr/tw5keep/internal/infra/buildinfo.Version=v0.3.0 \
//	  -X github.com/yndnr/tw5keep/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Without ldflags the commit falls back to the VCS revision recorded by
// the Go toolchain, when available.
package buildinfo
