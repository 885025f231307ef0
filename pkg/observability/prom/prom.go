// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/depview/pkg/observability"
)

// Metrics holds every collector. It implements the ViewHooks, CacheHooks
// and HTTPHooks interfaces.
type Metrics struct {
	registry *prometheus.Registry

	ShowsTotal      *prometheus.CounterVec
	ShowDuration    prometheus.Histogram
	StaleTotal      prometheus.Counter
	LayoutsTotal    *prometheus.CounterVec
	LayoutDuration  *prometheus.HistogramVec
	ElementsCreated prometheus.Counter
	ElementsRemoved prometheus.Counter
	ElementsKept    prometheus.Counter
	CacheLookups    *prometheus.CounterVec
	CacheSetBytes   *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	HTTPErrorsTotal *prometheus.CounterVec
}

// New registers all collectors with reg; a nil reg gets a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{registry: reg}
	f := promauto.With(reg)

	m.ShowsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "depview_show_requests_total",
		Help: "Show-component requests by final pane state",
	}, []string{"state"})
	m.ShowDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "depview_show_duration_seconds",
		Help:    "Time from request to render or failure",
		Buckets: prometheus.DefBuckets,
	})
	m.StaleTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "depview_stale_completions_total",
		Help: "Completions discarded because a newer request was issued",
	})
	m.LayoutsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "depview_layouts_total",
		Help: "Layout computations by strategy and status",
	}, []string{"kind", "status"})
	m.LayoutDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depview_layout_duration_seconds",
		Help:    "Layout computation time",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"kind"})
	m.ElementsCreated = f.NewCounter(prometheus.CounterOpts{
		Name: "depview_scene_elements_created_total",
		Help: "Scene node elements created by diff passes",
	})
	m.ElementsRemoved = f.NewCounter(prometheus.CounterOpts{
		Name: "depview_scene_elements_removed_total",
		Help: "Scene node elements removed by diff passes",
	})
	m.ElementsKept = f.NewCounter(prometheus.CounterOpts{
		Name: "depview_scene_elements_kept_total",
		Help: "Scene node elements kept across diff passes",
	})
	m.CacheLookups = f.NewCounterVec(prometheus.CounterOpts{
		Name: "depview_cache_lookups_total",
		Help: "Cache lookups by key type and result",
	}, []string{"type", "result"})
	m.CacheSetBytes = f.NewCounterVec(prometheus.CounterOpts{
		Name: "depview_cache_set_bytes_total",
		Help: "Bytes written to the cache",
	}, []string{"type"})
	m.HTTPRequests = f.NewCounterVec(prometheus.CounterOpts{
		Name: "depview_http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})
	m.HTTPDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depview_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	m.HTTPErrorsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "depview_http_errors_total",
		Help: "HTTP transport failures",
	}, []string{"method", "host"})
	return m
}

// Register installs m as the global view, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetViewHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnShowStart(context.Context, string, uint64) {}

func (m *Metrics) OnShowComplete(_ context.Context, _ string, _ uint64, state string, d time.Duration, _ error) {
	m.ShowsTotal.WithLabelValues(state).Inc()
	m.ShowDuration.Observe(d.Seconds())
}

func (m *Metrics) OnStale(context.Context, string, uint64) { m.StaleTotal.Inc() }

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, kind string, d time.Duration, err error) {
	m.LayoutsTotal.WithLabelValues(kind, status(err)).Inc()
	m.LayoutDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) OnBind(_ context.Context, created, kept, removed int) {
	m.ElementsCreated.Add(float64(created))
	m.ElementsKept.Add(float64(kept))
	m.ElementsRemoved.Add(float64(removed))
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheLookups.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheLookups.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheSetBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, _, path string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, host, _ string, _ error) {
	m.HTTPErrorsTotal.WithLabelValues(method, host).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.ViewHooks  = (*Metrics)(nil)
	_ observability.CacheHooks = (*Metrics)(nil)
	_ observability.HTTPHooks  = (*Metrics)(nil)
)
