package manager

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"inferd/internal/llama"
)

// loadedModel binds one model's weights to its context pool and tracks drain
// state for unload.
type loadedModel struct {
	name     string
	cfg      ModelConfig
	model    llama.Model
	pool     *contextPool
	estBytes uint64
	loadedAt time.Time

	mu            sync.Mutex
	refs          int
	lastUsed      time.Time
	draining      bool
	drained       chan struct{}
	drainedClosed bool
}

// maybeFinishDrain closes the drained channel once nothing references the
// model: no outstanding handles and no checked-out contexts. Called after
// every release while an unload is waiting.
func (lm *loadedModel) maybeFinishDrain() {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	if !lm.draining || lm.drainedClosed {
		return
	}
	if lm.refs == 0 && lm.pool.inUseCount() == 0 {
		close(lm.drained)
		lm.drainedClosed = true
	}
}

// Manager owns loaded models, their context pools, streaming sessions, the
// batch queue, and the background sweeper. Construct with NewWithConfig and
// stop with Close.
type Manager struct {
	backend   llama.Backend
	publisher EventPublisher

	memoryLimitMB   int
	maxPoolSize     int
	contextTTL      time.Duration
	sweepInterval   time.Duration
	drainTimeout    time.Duration
	batchWorkers    int
	streamRetention time.Duration

	mu           sync.RWMutex
	backendReady bool
	closed       bool
	models       map[string]*loadedModel

	metrics   *PerformanceMetrics
	startTime time.Time

	streamMu sync.Mutex
	streams  map[string]*StreamingSession

	batchMu      sync.Mutex
	batchCond    *sync.Cond
	batchQueue   []batchRequest
	batchResults map[string]BatchResult
	batchClosed  bool
	batchSeq     atomic.Uint64
	batchWG      sync.WaitGroup

	sweepStop chan struct{}
	sweepDone chan struct{}
}

// ensureBackend initializes the native runtime on first use. A failed init
// leaves the manager uninitialized so a later call can retry.
func (m *Manager) ensureBackend() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureBackendLocked()
}

func (m *Manager) ensureBackendLocked() error {
	if m.backendReady {
		return nil
	}
	if err := m.backend.Init(); err != nil {
		return ErrDependencyUnavailable(fmt.Sprintf("backend init: %v", err))
	}
	m.backendReady = true
	return nil
}

// Ready reports whether the native runtime has been initialized.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.backendReady
}

// IsModelLoaded reports whether name maps to a loaded model.
func (m *Manager) IsModelLoaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.models[name]
	return ok
}

// LoadedModelCount returns the number of loaded models.
func (m *Manager) LoadedModelCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.models)
}

// LoadedModelNames returns the loaded model names, sorted.
func (m *Manager) LoadedModelNames() []string {
	m.mu.RLock()
	names := make([]string, 0, len(m.models))
	for name := range m.models {
		names = append(names, name)
	}
	m.mu.RUnlock()
	sort.Strings(names)
	return names
}

// acquireContext checks a context out of name's pool. Draining models reject
// new checkouts. The entry must be returned with releaseContext.
func (m *Manager) acquireContext(name string) (*loadedModel, *poolEntry, error) {
	m.mu.RLock()
	lm := m.models[name]
	m.mu.RUnlock()
	if lm == nil {
		return nil, nil, ErrModelNotFound(name)
	}
	lm.mu.Lock()
	if lm.draining {
		lm.mu.Unlock()
		return nil, nil, modelDrainingError{name: name}
	}
	entry, created, err := lm.pool.acquire()
	if err == nil {
		lm.lastUsed = time.Now()
	}
	lm.mu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	if created {
		m.metrics.poolGrew()
	}
	m.metrics.contextAcquired()
	return lm, entry, nil
}

func (m *Manager) releaseContext(lm *loadedModel, e *poolEntry) {
	lm.pool.release(e)
	m.metrics.contextReleased()
	lm.maybeFinishDrain()
}

// Metrics exposes the performance counters.
func (m *Manager) Metrics() *PerformanceMetrics { return m.metrics }

// ResetMetrics zeroes the request counters; memory gauges stay live.
func (m *Manager) ResetMetrics() { m.metrics.Reset() }

// Close stops the sweeper, streaming sessions, and batch workers, unloads
// every model, and frees the backend. Unloads that cannot drain within the
// timeout keep their native allocations and are reported in the error.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.stopSweeper()
	m.stopAllStreams()
	m.stopBatchWorkers()

	var failed []string
	for _, name := range m.LoadedModelNames() {
		if err := m.UnloadModel(name); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", name, err))
		}
	}

	m.mu.Lock()
	if m.backendReady && len(failed) == 0 {
		m.backend.Free()
		m.backendReady = false
	}
	m.mu.Unlock()

	if len(failed) > 0 {
		return fmt.Errorf("close: %s", strings.Join(failed, "; "))
	}
	return nil
}
