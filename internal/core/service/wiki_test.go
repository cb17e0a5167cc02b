package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/yndnr/tw5keep/internal/core/domain"
	"github.com/yndnr/tw5keep/internal/storage/wikistore"
)

// mockStore implements DocumentStore and records the order of calls.
type mockStore struct {
	mu         sync.Mutex
	calls      []string
	document   []byte
	snapshots  map[string][]byte
	readErr    error
	writeErr   error
	promoteErr error
	next       int

	// inFlight tracks concurrent WriteSnapshot..Promote sections.
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func newMockStore(doc string) *mockStore {
	return &mockStore{
		document:  []byte(doc),
		snapshots: make(map[string][]byte),
	}
}

func (m *mockStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockStore) Read(_ context.Context) ([]byte, error) {
	m.record("read")
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.document...), nil
}

func (m *mockStore) NextSnapshotPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return filepath.Join("backups", wikistore.SnapshotName(time.UnixMilli(int64(1700000000000+m.next))))
}

func (m *mockStore) WriteSnapshot(_ context.Context, path string, data []byte) (*wikistore.SnapshotInfo, error) {
	n := m.inFlight.Add(1)
	for {
		max := m.maxInFlight.Load()
		if n <= max || m.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}
	m.record("write:" + filepath.Base(path))
	if m.writeErr != nil {
		m.inFlight.Add(-1)
		return nil, m.writeErr
	}
	m.mu.Lock()
	m.snapshots[path] = append([]byte(nil), data...)
	m.mu.Unlock()
	time.Sleep(m.delay)
	return &wikistore.SnapshotInfo{
		Name:        filepath.Base(path),
		Path:        path,
		Size:        int64(len(data)),
		Fingerprint: wikistore.Fingerprint(data),
	}, nil
}

func (m *mockStore) Promote(_ context.Context, path string) error {
	defer m.inFlight.Add(-1)
	m.record("promote:" + filepath.Base(path))
	if m.promoteErr != nil {
		return m.promoteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.document = m.snapshots[path]
	return nil
}

// recordingObserver implements SaveObserver.
type recordingObserver struct {
	mu      sync.Mutex
	results []string
}

func (o *recordingObserver) ObserveSave(result string, _ int64, _ time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWikiService_Defaults(t *testing.T) {
	svc := NewWikiService(newMockStore(""), nil)
	if svc.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
	if svc.serialize {
		t.Error("updates should not be serialized by default")
	}
}

func TestWikiService_Load(t *testing.T) {
	svc := NewWikiService(newMockStore("<html>v1</html>"), &WikiServiceConfig{Logger: discardLogger()})

	data, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != "<html>v1</html>" {
		t.Errorf("Load() = %q", data)
	}
}

func TestWikiService_Load_Error(t *testing.T) {
	store := newMockStore("")
	store.readErr = os.ErrNotExist
	svc := NewWikiService(store, &WikiServiceConfig{Logger: discardLogger()})

	_, err := svc.Load(context.Background())
	if !errors.Is(err, domain.ErrWikiRead) {
		t.Errorf("Load() error = %v, want ErrWikiRead", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("Load() error should wrap the store error")
	}
}

func TestWikiService_Save_SnapshotBeforePromote(t *testing.T) {
	store := newMockStore("<html>v1</html>")
	obs := &recordingObserver{}
	svc := NewWikiService(store, &WikiServiceConfig{Logger: discardLogger(), Observer: obs})

	info, err := svc.Save(context.Background(), strings.NewReader("<html>v2</html>"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(store.calls) != 2 {
		t.Fatalf("calls = %v, want write then promote", store.calls)
	}
	if !strings.HasPrefix(store.calls[0], "write:") || !strings.HasPrefix(store.calls[1], "promote:") {
		t.Errorf("calls = %v, want write before promote", store.calls)
	}
	if strings.TrimPrefix(store.calls[0], "write:") != strings.TrimPrefix(store.calls[1], "promote:") {
		t.Errorf("promoted snapshot differs from written one: %v", store.calls)
	}
	if string(store.document) != "<html>v2</html>" {
		t.Errorf("document = %q", store.document)
	}
	if string(store.snapshots[info.Path]) != "<html>v2</html>" {
		t.Errorf("snapshot = %q", store.snapshots[info.Path])
	}
	if len(obs.results) != 1 || obs.results[0] != domain.SaveResultOK {
		t.Errorf("observer results = %v", obs.results)
	}
}

func TestWikiService_Save_Failures(t *testing.T) {
	tests := []struct {
		name       string
		body       io.Reader
		writeErr   error
		promoteErr error
		wantErr    *domain.DomainError
		wantResult string
		wantCalls  int
	}{
		{
			name:       "body read fails",
			body:       failingReader{},
			wantErr:    domain.ErrRequestBody,
			wantResult: domain.SaveResultBodyError,
			wantCalls:  0,
		},
		{
			name:       "snapshot write fails",
			body:       strings.NewReader("v2"),
			writeErr:   os.ErrPermission,
			wantErr:    domain.ErrSnapshotWrite,
			wantResult: domain.SaveResultSnapshotError,
			wantCalls:  1,
		},
		{
			name:       "promote fails",
			body:       strings.NewReader("v2"),
			promoteErr: os.ErrPermission,
			wantErr:    domain.ErrPromote,
			wantResult: domain.SaveResultPromoteError,
			wantCalls:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore("v1")
			store.writeErr = tt.writeErr
			store.promoteErr = tt.promoteErr
			obs := &recordingObserver{}
			svc := NewWikiService(store, &WikiServiceConfig{Logger: discardLogger(), Observer: obs})

			_, err := svc.Save(context.Background(), tt.body)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Save() error = %v, want %v", err, tt.wantErr)
			}
			if string(store.document) != "v1" {
				t.Errorf("document = %q, want it untouched", store.document)
			}
			if len(store.calls) != tt.wantCalls {
				t.Errorf("calls = %v, want %d calls", store.calls, tt.wantCalls)
			}
			if len(obs.results) != 1 || obs.results[0] != tt.wantResult {
				t.Errorf("observer results = %v, want [%s]", obs.results, tt.wantResult)
			}
		})
	}
}

func TestWikiService_Save_PromoteFailureKeepsSnapshot(t *testing.T) {
	store := newMockStore("v1")
	store.promoteErr = errors.New("disk full")
	svc := NewWikiService(store, &WikiServiceConfig{Logger: discardLogger()})

	info, err := svc.Save(context.Background(), strings.NewReader("v2"))
	if err == nil {
		t.Fatal("Save() should fail")
	}
	if info == nil {
		t.Fatal("Save() should report the unpromoted snapshot")
	}
	if string(store.snapshots[info.Path]) != "v2" {
		t.Errorf("unpromoted snapshot = %q, want %q", store.snapshots[info.Path], "v2")
	}
}

func TestWikiService_Save_Serialized(t *testing.T) {
	store := newMockStore("v0")
	store.delay = 5 * time.Millisecond
	svc := NewWikiService(store, &WikiServiceConfig{Logger: discardLogger(), SerializeUpdates: true})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Save(context.Background(), strings.NewReader("v")); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if max := store.maxInFlight.Load(); max != 1 {
		t.Errorf("max concurrent saves = %d, want 1", max)
	}
}

// overlapStore wraps a real Store. It advances the fake clock after each
// snapshot is named, and holds every WriteSnapshot until all expected
// writers have arrived, so the saves are forced to overlap.
type overlapStore struct {
	*wikistore.Store
	clock *clockwork.FakeClock

	nameMu  sync.Mutex
	arrived sync.WaitGroup
	all     chan struct{}

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newOverlapStore(store *wikistore.Store, clock *clockwork.FakeClock, writers int) *overlapStore {
	o := &overlapStore{Store: store, clock: clock, all: make(chan struct{})}
	o.arrived.Add(writers)
	go func() {
		o.arrived.Wait()
		close(o.all)
	}()
	return o
}

func (o *overlapStore) NextSnapshotPath() string {
	o.nameMu.Lock()
	defer o.nameMu.Unlock()
	path := o.Store.NextSnapshotPath()
	o.clock.Advance(time.Millisecond)
	return path
}

func (o *overlapStore) WriteSnapshot(ctx context.Context, path string, data []byte) (*wikistore.SnapshotInfo, error) {
	n := o.inFlight.Add(1)
	for {
		max := o.maxInFlight.Load()
		if n <= max || o.maxInFlight.CompareAndSwap(max, n) {
			break
		}
	}

	info, err := o.Store.WriteSnapshot(ctx, path, data)
	o.arrived.Done()
	select {
	case <-o.all:
	case <-time.After(2 * time.Second):
	}
	return info, err
}

func (o *overlapStore) Promote(ctx context.Context, path string) error {
	defer o.inFlight.Add(-1)
	return o.Store.Promote(ctx, path)
}

func TestWikiService_Save_ConcurrentUnserialized(t *testing.T) {
	const writers = 6

	dir := t.TempDir()
	wikiFile := filepath.Join(dir, "index.html")
	if err := os.WriteFile(wikiFile, []byte("<html>v0</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	store, err := wikistore.New(wikistore.Config{
		WikiFile:  wikiFile,
		BackupDir: filepath.Join(dir, "backups"),
		Clock:     clock,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureBackupDir(); err != nil {
		t.Fatal(err)
	}

	overlap := newOverlapStore(store, clock, writers)
	svc := NewWikiService(overlap, &WikiServiceConfig{Logger: discardLogger()})

	bodies := make(map[string]bool, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		body := "<html>v" + strconv.Itoa(i+1) + "</html>"
		bodies[body] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Save(context.Background(), strings.NewReader(body)); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if max := overlap.maxInFlight.Load(); max <= 1 {
		t.Errorf("max concurrent saves = %d, want more than 1", max)
	}

	snapshots, err := store.ListSnapshots(context.Background())
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(snapshots) != writers {
		t.Fatalf("snapshots = %d, want one per save (%d)", len(snapshots), writers)
	}
	seen := make(map[string]bool, writers)
	for _, snap := range snapshots {
		data, err := os.ReadFile(snap.Path)
		if err != nil {
			t.Fatalf("read %s: %v", snap.Name, err)
		}
		if !bodies[string(data)] {
			t.Errorf("snapshot %s = %q, not one of the saved bodies", snap.Name, data)
		}
		seen[string(data)] = true
	}
	if len(seen) != writers {
		t.Errorf("distinct snapshot bodies = %d, want %d", len(seen), writers)
	}

	doc, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bodies[string(doc)] {
		t.Errorf("document = %q, want one of the saved bodies", doc)
	}
}

func TestWikiService_WithStore(t *testing.T) {
	dir := t.TempDir()
	wikiFile := filepath.Join(dir, "index.html")
	if err := os.WriteFile(wikiFile, []byte("<html>v1</html>"), 0644); err != nil {
		t.Fatal(err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	store, err := wikistore.New(wikistore.Config{
		WikiFile:  wikiFile,
		BackupDir: filepath.Join(dir, "backups"),
		Clock:     clock,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureBackupDir(); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	svc := NewWikiService(store, &WikiServiceConfig{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	info, err := svc.Save(context.Background(), strings.NewReader("<html>v2</html>"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snapshot, err := os.ReadFile(info.Path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(snapshot) != "<html>v2</html>" {
		t.Errorf("snapshot = %q", snapshot)
	}
	if info.Name != wikistore.SnapshotName(clock.Now()) {
		t.Errorf("snapshot name = %q, want %q", info.Name, wikistore.SnapshotName(clock.Now()))
	}

	data, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(data) != "<html>v2</html>" {
		t.Errorf("Load() after Save() = %q", data)
	}

	if !strings.Contains(logs.String(), "wiki updated") {
		t.Errorf("expected confirmation log, got %q", logs.String())
	}
}

func TestWikiService_MissingBackupDir(t *testing.T) {
	dir := t.TempDir()
	wikiFile := filepath.Join(dir, "index.html")
	if err := os.WriteFile(wikiFile, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := wikistore.New(wikistore.Config{WikiFile: wikiFile, BackupDir: filepath.Join(dir, "gone")})
	if err != nil {
		t.Fatal(err)
	}
	svc := NewWikiService(store, &WikiServiceConfig{Logger: discardLogger()})

	_, err = svc.Save(context.Background(), strings.NewReader("v2"))
	if !errors.Is(err, domain.ErrSnapshotWrite) {
		t.Fatalf("Save() error = %v, want ErrSnapshotWrite", err)
	}
	if !strings.Contains(err.Error(), "failed to write backup wiki file") {
		t.Errorf("error text %q should mention the failed write", err.Error())
	}

	data, err := svc.Load(context.Background())
	if err != nil || string(data) != "v1" {
		t.Errorf("Load() = %q, %v; want the pre-save document", data, err)
	}
}
