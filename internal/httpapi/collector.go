package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"

	"inferd/pkg/types"
)

// StatsProvider exposes the counters the collector exports. *manager.Manager
// satisfies it.
type StatsProvider interface {
	Performance() types.PerformanceResponse
}

// ManagerCollector exports the manager's performance counters to Prometheus.
// Register it once per process, from the daemon entry point.
type ManagerCollector struct {
	stats StatsProvider

	requestsTotal   *prometheus.Desc
	tokensTotal     *prometheus.Desc
	genSecondsTotal *prometheus.Desc
	memoryUsage     *prometheus.Desc
	memoryPeak      *prometheus.Desc
	activeContexts  *prometheus.Desc
	poolSize        *prometheus.Desc
}

// NewManagerCollector builds a collector over stats.
func NewManagerCollector(stats StatsProvider) *ManagerCollector {
	return &ManagerCollector{
		stats: stats,
		requestsTotal: prometheus.NewDesc(
			"inferd_manager_requests_total",
			"Requests that acquired an inference context", nil, nil),
		tokensTotal: prometheus.NewDesc(
			"inferd_manager_tokens_total",
			"Tokens generated across all requests", nil, nil),
		genSecondsTotal: prometheus.NewDesc(
			"inferd_manager_generation_seconds_total",
			"Cumulative generation wall time in seconds", nil, nil),
		memoryUsage: prometheus.NewDesc(
			"inferd_manager_memory_usage_bytes",
			"Estimated memory used by loaded models", nil, nil),
		memoryPeak: prometheus.NewDesc(
			"inferd_manager_memory_peak_bytes",
			"Peak estimated model memory since start or reset", nil, nil),
		activeContexts: prometheus.NewDesc(
			"inferd_manager_active_contexts",
			"Inference contexts currently checked out", nil, nil),
		poolSize: prometheus.NewDesc(
			"inferd_manager_pool_size",
			"Inference contexts alive across all pools", nil, nil),
	}
}

func (c *ManagerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requestsTotal
	ch <- c.tokensTotal
	ch <- c.genSecondsTotal
	ch <- c.memoryUsage
	ch <- c.memoryPeak
	ch <- c.activeContexts
	ch <- c.poolSize
}

func (c *ManagerCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stats.Performance()
	ch <- prometheus.MustNewConstMetric(c.requestsTotal, prometheus.CounterValue, float64(s.TotalRequests))
	ch <- prometheus.MustNewConstMetric(c.tokensTotal, prometheus.CounterValue, float64(s.TotalTokens))
	ch <- prometheus.MustNewConstMetric(c.genSecondsTotal, prometheus.CounterValue, float64(s.TotalGenerationTimeMs)/1000.0)
	ch <- prometheus.MustNewConstMetric(c.memoryUsage, prometheus.GaugeValue, float64(s.MemoryUsageBytes))
	ch <- prometheus.MustNewConstMetric(c.memoryPeak, prometheus.GaugeValue, float64(s.PeakMemoryBytes))
	ch <- prometheus.MustNewConstMetric(c.activeContexts, prometheus.GaugeValue, float64(s.ActiveContexts))
	ch <- prometheus.MustNewConstMetric(c.poolSize, prometheus.GaugeValue, float64(s.PoolSize))
}
