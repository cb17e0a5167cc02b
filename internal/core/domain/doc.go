// Package domain defines the core domain types for tw5keep.
//
// The only persistent entities are the wiki document and its snapshots,
// both plain byte blobs on disk, so this package mostly carries the
// structured error codes shared by the service and HTTP layers.
package domain
