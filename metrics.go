package envbase

import "time"

// Metrics provides observability for envbase operations
type Metrics interface {
	// Increment increases a counter by 1
	Increment(name string, tags ...string)

	// Gauge sets an absolute value
	Gauge(name string, value float64, tags ...string)

	// Histogram records a value distribution (latency, size, etc)
	Histogram(name string, value float64, tags ...string)

	// Timing records a duration
	Timing(name string, duration time.Duration, tags ...string)
}

// NoOpMetrics is a metrics collector that does nothing
type NoOpMetrics struct{}

func (m *NoOpMetrics) Increment(name string, tags ...string)                      {}
func (m *NoOpMetrics) Gauge(name string, value float64, tags ...string)           {}
func (m *NoOpMetrics) Histogram(name string, value float64, tags ...string)       {}
func (m *NoOpMetrics) Timing(name string, duration time.Duration, tags ...string) {}

// InMemoryMetrics stores metrics in memory for testing
type InMemoryMetrics struct {
	Counters   map[string]int
	Gauges     map[string]float64
	Histograms map[string][]float64
	Timings    map[string][]time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		Counters:   make(map[string]int),
		Gauges:     make(map[string]float64),
		Histograms: make(map[string][]float64),
		Timings:    make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Increment(name string, tags ...string) {
	m.Counters[name]++
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...string) {
	m.Gauges[name] = value
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...string) {
	m.Histograms[name] = append(m.Histograms[name], value)
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...string) {
	m.Timings[name] = append(m.Timings[name], duration)
}

// Common metric names
const (
	MetricGetSuccess     = "envbase.get.success"
	MetricGetError       = "envbase.get.error"
	MetricGetDuration    = "envbase.get.duration"
	MetricPutSuccess     = "envbase.put.success"
	MetricPutError       = "envbase.put.error"
	MetricPutDuration    = "envbase.put.duration"
	MetricUpdateSuccess  = "envbase.update.success"
	MetricUpdateError    = "envbase.update.error"
	MetricUpdateDuration = "envbase.update.duration"
	MetricDeleteSuccess  = "envbase.delete.success"
	MetricDeleteError    = "envbase.delete.error"
	MetricDeleteDuration = "envbase.delete.duration"
	MetricLoadSuccess    = "envbase.load.success"
	MetricLoadError      = "envbase.load.error"
	MetricLoadDuration   = "envbase.load.duration"
	MetricInitSuccess    = "envbase.init.success"
	MetricInitError      = "envbase.init.error"
	MetricInitDuration   = "envbase.init.duration"

	// Additional metrics for Prometheus integration
	MetricBackendOps     = "envbase.backend.ops"
	MetricBackendErrors  = "envbase.backend.errors"
	MetricBackendLatency = "envbase.backend.latency"
	MetricMirrorSize     = "envbase.mirror.size"
)

// Production integrations:
//
// For Prometheus (github.com/prometheus/client_golang), see PrometheusMetrics
// in prometheus_metrics.go.
//
// For Datadog (github.com/DataDog/datadog-go/statsd):
//   type DatadogMetrics struct { client *statsd.Client }
//   func (m *DatadogMetrics) Increment(name string, tags ...string) {
//       m.client.Incr(name, tags, 1)
//   }
//
// For StatsD:
//   type StatsDMetrics struct { client *statsd.Client }
//   func (m *StatsDMetrics) Timing(name string, duration time.Duration, tags ...string) {
//       m.client.Timing(name, duration, tags...)
//   }
