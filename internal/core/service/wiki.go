package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/yndnr/tw5keep/internal/core/domain"
	"github.com/yndnr/tw5keep/internal/storage/wikistore"
)

// DocumentStore defines the storage interface for the wiki document.
type DocumentStore interface {
	// Read returns the full current document.
	Read(ctx context.Context) ([]byte, error)

	// NextSnapshotPath names a snapshot for the current time.
	NextSnapshotPath() string

	// WriteSnapshot durably writes data as a new snapshot at path.
	WriteSnapshot(ctx context.Context, path string, data []byte) (*wikistore.SnapshotInfo, error)

	// Promote copies the snapshot at path over the document.
	Promote(ctx context.Context, path string) error
}

// SaveObserver is notified of every save attempt. result is one of the
// domain.SaveResult values.
type SaveObserver interface {
	ObserveSave(result string, size int64, at time.Time)
}

// WikiServiceConfig holds configuration for WikiService.
type WikiServiceConfig struct {
	// Logger receives save and read diagnostics (default: slog.Default()).
	Logger *slog.Logger

	// SerializeUpdates runs saves one at a time. When false, concurrent
	// saves race and the last promotion determines the document.
	SerializeUpdates bool

	// Observer is notified of save outcomes (optional).
	Observer SaveObserver
}

// WikiService loads and saves the wiki document.
type WikiService struct {
	store     DocumentStore
	logger    *slog.Logger
	observer  SaveObserver
	serialize bool
	mu        sync.Mutex
}

// NewWikiService creates a new WikiService over the given store.
func NewWikiService(store DocumentStore, config *WikiServiceConfig) *WikiService {
	if config == nil {
		config = &WikiServiceConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &WikiService{
		store:     store,
		logger:    logger,
		observer:  config.Observer,
		serialize: config.SerializeUpdates,
	}
}

// Load returns the current document. The whole document is read into
// memory before returning.
func (s *WikiService) Load(ctx context.Context) ([]byte, error) {
	data, err := s.store.Read(ctx)
	if err != nil {
		return nil, domain.ErrWikiRead.WithCause(err)
	}
	return data, nil
}

// Save replaces the document with the content of body.
//
// The body is buffered in full, written as a new snapshot and only then
// promoted onto the document. If the snapshot cannot be written the
// document is untouched. If promotion fails the snapshot stays on disk.
func (s *WikiService) Save(ctx context.Context, body io.Reader) (*wikistore.SnapshotInfo, error) {
	content, err := io.ReadAll(body)
	if err != nil {
		s.observe(domain.SaveResultBodyError, 0)
		return nil, domain.ErrRequestBody.WithCause(err)
	}

	if s.serialize {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	path := s.store.NextSnapshotPath()
	info, err := s.store.WriteSnapshot(ctx, path, content)
	if err != nil {
		s.observe(domain.SaveResultSnapshotError, int64(len(content)))
		return nil, domain.ErrSnapshotWrite.WithCause(err)
	}
	s.logger.InfoContext(ctx, "saved to backup file",
		"file", filepath.Base(path),
		"size", info.Size,
		"fingerprint", info.Fingerprint,
	)

	if err := s.store.Promote(ctx, path); err != nil {
		s.observe(domain.SaveResultPromoteError, info.Size)
		return info, domain.ErrPromote.WithCause(err)
	}
	s.logger.InfoContext(ctx, "wiki updated", "file", filepath.Base(path))

	s.observe(domain.SaveResultOK, info.Size)
	return info, nil
}

func (s *WikiService) observe(result string, size int64) {
	if s.observer != nil {
		s.observer.ObserveSave(result, size, time.Now())
	}
}
