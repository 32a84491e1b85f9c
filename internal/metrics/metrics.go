// Package metrics defines the Prometheus instruments of the dashboard service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

// Metrics holds every instrument, registered on its own registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	EngineDuration  *prometheus.HistogramVec
	RecordsIngested *prometheus.CounterVec
	IngestErrors    *prometheus.CounterVec
	DatasetRecords  prometheus.Gauge
}

// New creates and registers the instruments. Process and Go runtime
// collectors are included unless bare is set.
func New(bare bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		EngineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_duration_seconds",
			Help:      "Time spent in an analytics engine call",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"engine"}),
		RecordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Records appended to the dataset by source",
		}, []string{"source"}),
		IngestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_errors_total",
			Help:      "Messages that could not be decoded by source",
		}, []string{"source"}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records currently held in the dataset store",
		}),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.EngineDuration,
		m.RecordsIngested,
		m.IngestErrors,
		m.DatasetRecords,
	)
	if !bare {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveEngine records the duration of one engine call started at start
func (m *Metrics) ObserveEngine(engine string, start time.Time) {
	m.EngineDuration.WithLabelValues(engine).Observe(time.Since(start).Seconds())
}

// ObserveRequest counts one HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// SetDatasetSize updates the dataset gauge
func (m *Metrics) SetDatasetSize(n int) {
	m.DatasetRecords.Set(float64(n))
}
