package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/tw5keep/internal/core/domain"
)

func TestRegistry_ObserveRequest(t *testing.T) {
	r := NewRegistry()

	r.ObserveRequest(http.MethodGet, http.StatusOK, 3*time.Millisecond)
	r.ObserveRequest(http.MethodGet, http.StatusOK, 5*time.Millisecond)
	r.ObserveRequest(http.MethodPost, http.StatusMethodNotAllowed, time.Millisecond)

	tests := []struct {
		method string
		status string
		want   float64
	}{
		{"GET", "200", 2},
		{"POST", "405", 1},
		{"PUT", "200", 0},
	}
	for _, tt := range tests {
		t.Run(tt.method+"_"+tt.status, func(t *testing.T) {
			got := testutil.ToFloat64(r.RequestsTotal.WithLabelValues(tt.method, tt.status))
			if got != tt.want {
				t.Errorf("requests_total{%s,%s} = %v, want %v", tt.method, tt.status, got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(r.RequestDuration); n != 2 {
		t.Errorf("request_duration series = %d, want 2", n)
	}
}

func TestRegistry_ObserveSave(t *testing.T) {
	r := NewRegistry()
	at := time.UnixMilli(1700000000123)

	r.ObserveSave(domain.SaveResultOK, 2048, at)
	r.ObserveSave(domain.SaveResultSnapshotError, 10, at.Add(time.Second))

	if got := testutil.ToFloat64(r.SavesTotal.WithLabelValues(domain.SaveResultOK)); got != 1 {
		t.Errorf("saves_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SavesTotal.WithLabelValues(domain.SaveResultSnapshotError)); got != 1 {
		t.Errorf("saves_total{snapshot_error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.SnapshotBytes); got != 2048 {
		t.Errorf("snapshot_bytes = %v, want 2048 (failed write must not change it)", got)
	}
	if got := testutil.ToFloat64(r.LastSaveTime); got != 1700000000.123 {
		t.Errorf("last_save_timestamp_seconds = %v, want 1700000000.123", got)
	}

	r.ObserveSave(domain.SaveResultPromoteError, 4096, at.Add(2*time.Second))
	if got := testutil.ToFloat64(r.SnapshotBytes); got != 4096 {
		t.Errorf("snapshot_bytes = %v, want 4096 after promote failure", got)
	}
	if got := testutil.ToFloat64(r.LastSaveTime); got != 1700000000.123 {
		t.Errorf("last_save_timestamp_seconds moved on promote failure: %v", got)
	}
}

func TestRegistry_ObserveSave_Results(t *testing.T) {
	tests := []struct {
		result    string
		wantBytes float64
		wantTime  bool
	}{
		{domain.SaveResultOK, 100, true},
		{domain.SaveResultPromoteError, 100, false},
		{domain.SaveResultSnapshotError, 0, false},
		{domain.SaveResultBodyError, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.result, func(t *testing.T) {
			r := NewRegistry()
			r.ObserveSave(tt.result, 100, time.Unix(1700000000, 0))

			if got := testutil.ToFloat64(r.SavesTotal.WithLabelValues(tt.result)); got != 1 {
				t.Errorf("saves_total{%s} = %v, want 1", tt.result, got)
			}
			if got := testutil.ToFloat64(r.SnapshotBytes); got != tt.wantBytes {
				t.Errorf("snapshot_bytes = %v, want %v", got, tt.wantBytes)
			}
			if got := testutil.ToFloat64(r.LastSaveTime) != 0; got != tt.wantTime {
				t.Errorf("last_save_timestamp_seconds set = %v, want %v", got, tt.wantTime)
			}
		})
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveSave(domain.SaveResultOK, 1, time.Now())

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	for _, name := range []string{
		"tw5keep_wiki_saves_total",
		"tw5keep_wiki_snapshot_bytes",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("exposition missing %s", name)
		}
	}
}

func TestRegistry_Isolated(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.ObserveSave(domain.SaveResultOK, 1, time.Now())

	if got := testutil.ToFloat64(b.SavesTotal.WithLabelValues(domain.SaveResultOK)); got != 0 {
		t.Errorf("registries share state: saves_total{ok} = %v", got)
	}
}
