// Package metrics provides Prometheus metrics for the persona analysis service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Analysis
	uploads          *prometheus.CounterVec
	entriesParsed    *prometheus.CounterVec
	rowsSkipped      *prometheus.CounterVec
	analyses         *prometheus.CounterVec
	personas         *prometheus.CounterVec
	hybridProfiles   prometheus.Counter
	parseDuration    prometheus.Histogram
	pipelineDuration prometheus.Histogram

	// Queue
	queueDepth    prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueEnqueued prometheus.Counter
	queueDequeued prometheus.Counter
	queueRejected prometheus.Counter

	// Workers
	workerCount  prometheus.Gauge
	workerBusy   prometheus.Gauge
	jobs         *prometheus.CounterVec
	jobDuration  prometheus.Histogram
	dedupeSize   prometheus.Gauge
	storedCount  prometheus.Gauge
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errors *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process wide collectors

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process wide registry

func init() { //nolint:gochecknoinits // collectors must exist before first use
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates and registers the collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dfspersona",
		subsystem:        "analyzer",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval is how often gauges fed by pollers should be updated.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts(m.counterOpts(name, help))
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.metricPrefix + name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.uploads = auto.NewCounterVec(m.counterOpts("uploads_total", "CSV uploads by outcome"), []string{"outcome"})
	m.entriesParsed = auto.NewCounterVec(m.counterOpts("entries_parsed_total", "Entries parsed from CSV rows"), []string{"platform"})
	m.rowsSkipped = auto.NewCounterVec(m.counterOpts("rows_skipped_total", "Malformed CSV rows skipped"), []string{"platform"})
	m.analyses = auto.NewCounterVec(m.counterOpts("analyses_total", "Pipeline runs by outcome"), []string{"outcome"})
	m.personas = auto.NewCounterVec(m.counterOpts("primary_persona_total", "Analyses by primary persona"), []string{"persona"})
	m.hybridProfiles = auto.NewCounter(m.counterOpts("hybrid_profiles_total", "Analyses detected as hybrid personas"))
	m.parseDuration = auto.NewHistogram(m.histogramOpts("parse_duration_milliseconds", "CSV parse duration in milliseconds"))
	m.pipelineDuration = auto.NewHistogram(m.histogramOpts("pipeline_duration_milliseconds", "Scoring pipeline duration in milliseconds"))

	m.queueDepth = auto.NewGauge(m.gaugeOpts("queue_depth", "Jobs waiting in the analysis queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Analysis queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs handed to workers"))
	m.queueRejected = auto.NewCounter(m.counterOpts("queue_rejected_total", "Jobs rejected because the queue was full or closed"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured analysis workers"))
	m.workerBusy = auto.NewGauge(m.gaugeOpts("worker_busy", "Workers currently processing a job"))
	m.jobs = auto.NewCounterVec(m.counterOpts("jobs_total", "Processed jobs by status"), []string{"status"})
	m.jobDuration = auto.NewHistogram(m.histogramOpts("job_duration_milliseconds", "Job processing duration in milliseconds"))
	m.dedupeSize = auto.NewGauge(m.gaugeOpts("dedupe_entries", "Upload digests remembered for duplicate detection"))

	m.storedCount = auto.NewGauge(m.gaugeOpts("profiles_stored", "Profiles held by the store"))
	m.storeOps = auto.NewCounterVec(m.counterOpts("store_operations_total", "Profile store operations"), []string{"operation", "status"})
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_operation_duration_milliseconds", "Profile store latency in milliseconds"), []string{"operation"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"})

	m.errors = auto.NewCounterVec(m.counterOpts("errors_total", "Errors by component and type"), []string{"component", "type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_milliseconds", "GC pause time in milliseconds"))
}

// GetRegistry returns the registry holding the global collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Default returns the process wide manager.
func Default() *Manager {
	return globalManager
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
