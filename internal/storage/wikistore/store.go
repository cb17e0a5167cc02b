package wikistore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spaolacci/murmur3"

	"github.com/yndnr/tw5keep/internal/core/domain"
)

const (
	dirPerm      = 0750
	snapshotPerm = 0640
	documentPerm = 0644
)

// Config configures a Store.
type Config struct {
	// WikiFile is the path of the canonical document.
	WikiFile string

	// BackupDir is the directory that holds snapshots.
	BackupDir string

	// Clock drives snapshot naming. Defaults to the real clock.
	Clock clockwork.Clock
}

// Store reads and writes the wiki document and its snapshots.
//
// A Store holds no mutable state and is safe for concurrent use; it does
// not serialize writers.
type Store struct {
	wikiFile  string
	backupDir string
	clock     clockwork.Clock
}

// SnapshotInfo describes a snapshot file.
type SnapshotInfo struct {
	Name        string    `json:"name" yaml:"name"`
	Path        string    `json:"path" yaml:"path" table:"wide"`
	Size        int64     `json:"size" yaml:"size"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	Fingerprint string    `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty" table:"wide"`
}

// New creates a Store. It does not touch the filesystem.
func New(cfg Config) (*Store, error) {
	if cfg.WikiFile == "" {
		return nil, errors.New("wikistore: wiki file is required")
	}
	if cfg.BackupDir == "" {
		return nil, errors.New("wikistore: backup dir is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	return &Store{
		wikiFile:  cfg.WikiFile,
		backupDir: cfg.BackupDir,
		clock:     cfg.Clock,
	}, nil
}

// WikiFile returns the document path.
func (s *Store) WikiFile() string {
	return s.wikiFile
}

// BackupDir returns the snapshot directory.
func (s *Store) BackupDir() string {
	return s.backupDir
}

// NextSnapshotPath names a snapshot for the current time of the store clock.
func (s *Store) NextSnapshotPath() string {
	return SnapshotPath(s.backupDir, s.clock.Now())
}

// EnsureBackupDir creates the backup directory if it does not exist.
func (s *Store) EnsureBackupDir() error {
	if err := os.MkdirAll(s.backupDir, dirPerm); err != nil {
		return fmt.Errorf("wikistore: create backup dir: %w", err)
	}
	return nil
}

// Read returns the full current document.
func (s *Store) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.wikiFile)
	if err != nil {
		return nil, fmt.Errorf("wikistore: read document: %w", err)
	}
	return data, nil
}

// WriteSnapshot creates a snapshot at path holding data and fsyncs it.
// The backup directory must already exist.
func (s *Store) WriteSnapshot(ctx context.Context, path string, data []byte) (*SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, snapshotPerm)
	if err != nil {
		return nil, fmt.Errorf("wikistore: write snapshot: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, fmt.Errorf("wikistore: write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return nil, fmt.Errorf("wikistore: sync snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("wikistore: close snapshot: %w", err)
	}

	return s.snapshotInfo(path, int64(len(data)), Fingerprint(data)), nil
}

// Promote copies the snapshot at snapshotPath over the document.
func (s *Store) Promote(ctx context.Context, snapshotPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := copyFile(snapshotPath, s.wikiFile, documentPerm); err != nil {
		return fmt.Errorf("wikistore: promote %s: %w", filepath.Base(snapshotPath), err)
	}
	return nil
}

// SnapshotDocument copies the current document into a new snapshot.
// It fails if the document is missing or unreadable.
func (s *Store) SnapshotDocument(ctx context.Context) (*SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.NextSnapshotPath()
	h := murmur3.New128()
	n, err := copyFile(s.wikiFile, path, snapshotPerm, h)
	if err != nil {
		return nil, fmt.Errorf("wikistore: back up document to %s: %w", path, err)
	}
	h1, h2 := h.Sum128()

	return s.snapshotInfo(path, n, formatFingerprint(h1, h2)), nil
}

// ListSnapshots returns the snapshots in the backup directory, oldest first.
// Files that are not named like snapshots are ignored.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	return ListSnapshots(ctx, s.backupDir)
}

// ListSnapshots lists the snapshots in dir without needing a Store.
func ListSnapshots(ctx context.Context, dir string) ([]SnapshotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("wikistore: list snapshots: %w", err)
	}

	var snapshots []SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		createdAt, ok := ParseSnapshotName(entry.Name())
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		snapshots = append(snapshots, SnapshotInfo{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			Size:      fi.Size(),
			CreatedAt: createdAt,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		if snapshots[i].CreatedAt.Equal(snapshots[j].CreatedAt) {
			return snapshots[i].Name < snapshots[j].Name
		}
		return snapshots[i].CreatedAt.Before(snapshots[j].CreatedAt)
	})

	return snapshots, nil
}

// Restore promotes the named snapshot onto the document. The current
// document, if it exists, is snapshotted first so the restore itself can
// be undone.
func (s *Store) Restore(ctx context.Context, name string) (*SnapshotInfo, error) {
	if _, ok := ParseSnapshotName(name); !ok || filepath.Base(name) != name {
		return nil, domain.ErrSnapshotName.WithDetails(name)
	}

	path := filepath.Join(s.backupDir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSnapshotNotFound.WithDetails(name)
		}
		return nil, fmt.Errorf("wikistore: stat snapshot: %w", err)
	}

	var previous *SnapshotInfo
	if _, err := os.Stat(s.wikiFile); err == nil {
		info, err := s.SnapshotDocument(ctx)
		if err != nil {
			return nil, err
		}
		previous = info
	}

	if err := s.Promote(ctx, path); err != nil {
		return previous, err
	}
	return previous, nil
}

func (s *Store) snapshotInfo(path string, size int64, fingerprint string) *SnapshotInfo {
	name := filepath.Base(path)
	createdAt, _ := ParseSnapshotName(name)
	return &SnapshotInfo{
		Name:        name,
		Path:        path,
		Size:        size,
		CreatedAt:   createdAt,
		Fingerprint: fingerprint,
	}
}

// copyFile copies src over dst, fsyncs dst and returns the bytes copied.
// Extra writers receive the same bytes.
func copyFile(src, dst string, perm os.FileMode, extra ...io.Writer) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return 0, err
	}

	var w io.Writer = out
	if len(extra) > 0 {
		w = io.MultiWriter(append([]io.Writer{out}, extra...)...)
	}

	n, err := io.Copy(w, in)
	if err != nil {
		out.Close()
		return n, err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}
