package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ingestRecords   *prometheus.CounterVec
	flowCodes       *prometheus.CounterVec
	reportRefreshes prometheus.Counter
}

// NewMetrics initialises the registry and the base metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "meridian_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	ingest := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_ingest_records_total",
		Help: "Shipment records ingested per vendor.",
	}, []string{"vendor"})
	codes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "meridian_flow_codes_total",
		Help: "Classified records per flow code.",
	}, []string{"code"})
	refreshes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "meridian_report_refreshes_total",
		Help: "Completed report refresh runs.",
	})
	registry.MustRegister(requests, duration, ingest, codes, refreshes)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		ingestRecords:   ingest,
		flowCodes:       codes,
		reportRefreshes: refreshes,
	}
}

// Handler returns the http.Handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveIngest records ingest volume for one vendor.
func (m *Metrics) ObserveIngest(vendor string, records int) {
	if m == nil {
		return
	}
	m.ingestRecords.WithLabelValues(vendor).Add(float64(records))
}

// ObserveFlowCode records one classified record.
func (m *Metrics) ObserveFlowCode(code string, count int) {
	if m == nil {
		return
	}
	m.flowCodes.WithLabelValues(code).Add(float64(count))
}

// ObserveReportRefresh records one completed refresh run.
func (m *Metrics) ObserveReportRefresh() {
	if m == nil {
		return
	}
	m.reportRefreshes.Inc()
}

// Registerer exposes the registry for custom metric registration.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
