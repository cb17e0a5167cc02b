// Package service provides domain services for tw5keep.
//
// Domain services hold the persistence protocol and define interfaces for
// their storage dependencies so they can be tested without a filesystem.
//
// This package contains:
//
//   - WikiService: document loading and the snapshot-then-promote save
//
// WikiService keeps no per-request state. By default concurrent saves are
// not coordinated, so the last promotion wins; SerializeUpdates opts into a
// single-writer mutex.
package service
