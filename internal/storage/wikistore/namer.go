package wikistore

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	snapshotPrefix    = "backup."
	snapshotExtension = ".html"
)

// SnapshotName returns the file name of a snapshot taken at t:
// backup.<T>.html where T is t in milliseconds since the Unix epoch,
// in decimal without padding.
func SnapshotName(t time.Time) string {
	return snapshotPrefix + strconv.FormatInt(t.UnixMilli(), 10) + snapshotExtension
}

// SnapshotPath returns the path of a snapshot taken at t inside dir.
// It is a pure function of its inputs: it neither touches the filesystem
// nor guarantees uniqueness.
func SnapshotPath(dir string, t time.Time) string {
	return filepath.Join(dir, SnapshotName(t))
}

// ParseSnapshotName reports whether name is a snapshot file name and, if so,
// returns the creation time encoded in it.
func ParseSnapshotName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExtension) {
		return time.Time{}, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotExtension)
	if digits == "" {
		return time.Time{}, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
	}
	millis, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}
