package manager

import (
	"sync"
	"time"

	"inferd/internal/llama"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxPoolSize     = 10
	defaultContextTTL      = 30 * time.Minute
	defaultSweepInterval   = 5 * time.Minute
	defaultDrainTimeout    = 5 * time.Second
	defaultBatchWorkers    = 2
	defaultStreamRetention = 5 * time.Minute
	defaultMaxTokens       = 100
	defaultCtxSize         = 2048
	defaultBatchSize       = 512
	defaultThreads         = 4
)

// Fixed sampling chain stages, applied to every pool context.
const (
	samplerTopK    = 40
	samplerTopP    = 0.9
	samplerMinKeep = 1
	samplerTemp    = 0.8
	samplerSeed    = 12345
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Backend is the native runtime. Required.
	Backend llama.Backend
	// Publisher receives lifecycle events. Optional.
	Publisher EventPublisher
	// MemoryLimitMB caps estimated model memory (0 = unlimited).
	MemoryLimitMB int
	// MaxPoolSize bounds each model's context pool.
	MaxPoolSize int
	// ContextTTL is how long an idle context survives between sweeps.
	ContextTTL time.Duration
	// SweepInterval is the background sweep period.
	SweepInterval time.Duration
	// DrainTimeout bounds the wait for in-flight work during unload.
	DrainTimeout time.Duration
	// BatchWorkers is the number of goroutines draining the batch queue.
	BatchWorkers int
	// StreamRetention is how long finished streaming sessions are kept for
	// late polls before the sweeper removes them.
	StreamRetention time.Duration
}

// NewWithConfig constructs a Manager from ManagerConfig and starts its
// background workers. Callers must Close the Manager to stop them.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		backend:         cfg.Backend,
		publisher:       cfg.Publisher,
		memoryLimitMB:   cfg.MemoryLimitMB,
		maxPoolSize:     cfg.MaxPoolSize,
		contextTTL:      cfg.ContextTTL,
		sweepInterval:   cfg.SweepInterval,
		drainTimeout:    cfg.DrainTimeout,
		batchWorkers:    cfg.BatchWorkers,
		streamRetention: cfg.StreamRetention,
		models:          make(map[string]*loadedModel),
		streams:         make(map[string]*StreamingSession),
		batchResults:    make(map[string]BatchResult),
		metrics:         &PerformanceMetrics{},
		startTime:       time.Now(),
	}
	// Apply defaults if unset
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.maxPoolSize <= 0 {
		m.maxPoolSize = defaultMaxPoolSize
	}
	if m.contextTTL <= 0 {
		m.contextTTL = defaultContextTTL
	}
	if m.sweepInterval <= 0 {
		m.sweepInterval = defaultSweepInterval
	}
	if m.drainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	}
	if m.batchWorkers <= 0 {
		m.batchWorkers = defaultBatchWorkers
	}
	if m.streamRetention <= 0 {
		m.streamRetention = defaultStreamRetention
	}
	m.batchCond = sync.NewCond(&m.batchMu)
	m.startBatchWorkers()
	m.startSweeper()
	return m
}

// New constructs a Manager over backend with package defaults.
func New(backend llama.Backend) *Manager {
	return NewWithConfig(ManagerConfig{Backend: backend})
}
