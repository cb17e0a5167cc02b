// Package wikistore provides filesystem persistence for the wiki document.
//
// A Store owns two locations:
//
//   - the document: a single HTML file overwritten in place on every
//     successful save
//   - the backup directory: an append-only set of snapshots named
//     backup.<epoch_millis>.html
//
// Saving is a two-step protocol. The new content is first written and
// fsynced as a snapshot, then the snapshot is copied over the document
// (promotion). The document therefore never holds content that has no
// snapshot on disk. Promotion is a copy, not a rename.
//
// Snapshot names have millisecond resolution. Two snapshots taken within
// the same millisecond share a name and the later write wins.
//
// Nothing in this package deletes a snapshot.
package wikistore
