package manager

import "sync/atomic"

// PerformanceMetrics aggregates counters across all requests. All fields are
// updated atomically; Snapshot gives a consistent-enough read for reporting.
type PerformanceMetrics struct {
	totalRequests    atomic.Uint64
	totalTokens      atomic.Uint64
	totalGenTimeMs   atomic.Uint64
	memoryUsageBytes atomic.Uint64
	peakMemoryBytes  atomic.Uint64
	activeContexts   atomic.Int64
	poolSize         atomic.Int64
}

// PerformanceSnapshot is a point-in-time copy of the counters plus derived
// averages.
type PerformanceSnapshot struct {
	TotalRequests          uint64
	TotalTokens            uint64
	TotalGenerationTimeMs  uint64
	AverageTokensPerSecond float64
	AverageLatencyMs       float64
	MemoryUsageBytes       uint64
	PeakMemoryBytes        uint64
	ActiveContexts         int64
	PoolSize               int64
}

func (m *PerformanceMetrics) recordRequest() { m.totalRequests.Add(1) }

func (m *PerformanceMetrics) recordGeneration(tokens int, durMs int64) {
	if tokens > 0 {
		m.totalTokens.Add(uint64(tokens))
	}
	if durMs > 0 {
		m.totalGenTimeMs.Add(uint64(durMs))
	}
}

// addMemory adjusts the usage gauge by delta bytes and raises the peak.
// Negative deltas wrap through two's complement, which is exact subtraction.
func (m *PerformanceMetrics) addMemory(delta int64) {
	now := m.memoryUsageBytes.Add(uint64(delta))
	for {
		peak := m.peakMemoryBytes.Load()
		if now <= peak || m.peakMemoryBytes.CompareAndSwap(peak, now) {
			return
		}
	}
}

func (m *PerformanceMetrics) contextAcquired() { m.activeContexts.Add(1) }
func (m *PerformanceMetrics) contextReleased() { m.activeContexts.Add(-1) }
func (m *PerformanceMetrics) poolGrew()        { m.poolSize.Add(1) }
func (m *PerformanceMetrics) poolShrank(n int) { m.poolSize.Add(-int64(n)) }

// MemoryUsage returns the current estimated memory usage in bytes.
func (m *PerformanceMetrics) MemoryUsage() uint64 { return m.memoryUsageBytes.Load() }

// Snapshot copies the counters and computes the derived averages.
func (m *PerformanceMetrics) Snapshot() PerformanceSnapshot {
	s := PerformanceSnapshot{
		TotalRequests:         m.totalRequests.Load(),
		TotalTokens:           m.totalTokens.Load(),
		TotalGenerationTimeMs: m.totalGenTimeMs.Load(),
		MemoryUsageBytes:      m.memoryUsageBytes.Load(),
		PeakMemoryBytes:       m.peakMemoryBytes.Load(),
		ActiveContexts:        m.activeContexts.Load(),
		PoolSize:              m.poolSize.Load(),
	}
	if s.TotalGenerationTimeMs > 0 {
		s.AverageTokensPerSecond = float64(s.TotalTokens) / (float64(s.TotalGenerationTimeMs) / 1000.0)
	}
	if s.TotalRequests > 0 {
		s.AverageLatencyMs = float64(s.TotalGenerationTimeMs) / float64(s.TotalRequests)
	}
	return s
}

// Reset zeroes the counters. The memory gauges reflect live models and are
// left alone; the peak restarts from current usage.
func (m *PerformanceMetrics) Reset() {
	m.totalRequests.Store(0)
	m.totalTokens.Store(0)
	m.totalGenTimeMs.Store(0)
	m.peakMemoryBytes.Store(m.memoryUsageBytes.Load())
}
