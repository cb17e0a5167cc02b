package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/tw5keep/internal/core/domain"
)

const namespace = "tw5keep"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Wiki metrics
	SavesTotal    *prometheus.CounterVec
	SnapshotBytes prometheus.Gauge
	LastSaveTime  prometheus.Gauge
}

// NewRegistry creates the metrics on a fresh registry, together with the
// Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method"},
		),
		SavesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wiki",
				Name:      "saves_total",
				Help:      "Wiki save attempts by result",
			},
			[]string{"result"},
		),
		SnapshotBytes: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "wiki",
				Name:      "snapshot_bytes",
				Help:      "Size of the most recently written snapshot",
			},
		),
		LastSaveTime: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "wiki",
				Name:      "last_save_timestamp_seconds",
				Help:      "Unix time of the last successful save",
			},
		),
	}
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method string, status int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveSave records the outcome of one save attempt. Size is recorded
// whenever a snapshot was written, time only on full success.
func (r *Registry) ObserveSave(result string, size int64, at time.Time) {
	r.SavesTotal.WithLabelValues(result).Inc()

	switch result {
	case domain.SaveResultOK:
		r.SnapshotBytes.Set(float64(size))
		r.LastSaveTime.Set(float64(at.UnixMilli()) / 1e3)
	case domain.SaveResultPromoteError:
		r.SnapshotBytes.Set(float64(size))
	}
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
