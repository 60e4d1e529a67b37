package manager

import (
	"fmt"
	"sync/atomic"
	"time"

	"inferd/internal/common/fsutil"
	"inferd/internal/llama"
	"inferd/internal/registry"
)

// estimateBytes approximates weights memory as two bytes per parameter.
func estimateBytes(mdl llama.Model) uint64 { return mdl.NParams() * 2 }

// LoadModel loads the weights at cfg.Path and registers them under name.
// Loading an already-loaded name is a no-op success. The memory gate rejects
// the load when current estimated usage has already reached the limit.
func (m *Manager) LoadModel(name string, cfg ModelConfig) error {
	return m.loadModel(name, cfg, false)
}

// LoadModelForEmbeddings is LoadModel with embedding output enabled on the
// model's contexts, for use with Embeddings.
func (m *Manager) LoadModelForEmbeddings(name string, cfg ModelConfig) error {
	return m.loadModel(name, cfg, true)
}

func (m *Manager) loadModel(name string, cfg ModelConfig, embeddings bool) error {
	if name == "" {
		return ErrInvalidArgument("model name is required")
	}
	if cfg.Path == "" {
		return ErrInvalidArgument("model path is required")
	}
	if embeddings {
		cfg.Embeddings = true
	}
	cfg = cfg.withDefaults()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("manager closed")
	}
	if lm, exists := m.models[name]; exists {
		lm.mu.Lock()
		draining := lm.draining
		lm.mu.Unlock()
		if draining {
			return modelDrainingError{name: name}
		}
		return nil
	}
	if err := m.ensureBackendLocked(); err != nil {
		return err
	}
	if !m.CheckMemoryLimit() {
		return memoryLimitError{name: name}
	}

	path, err := fsutil.ExpandHome(cfg.Path)
	if err != nil {
		return err
	}
	cfg.Path = path
	if !fsutil.PathExists(path) {
		return ErrInvalidArgument("model file not found: " + path)
	}
	// A malformed header is worth a warning but the native loader has the
	// final say, so the load proceeds.
	if err := registry.ValidateGGUF(path); err != nil {
		m.publisher.Publish(Event{Name: EventModelFileWarning, Model: name, Fields: map[string]any{
			"path":   path,
			"reason": err.Error(),
		}})
	}

	mdl, err := m.backend.LoadModel(path, llama.ModelParams{
		GPULayers: cfg.GPULayers,
		UseMmap:   *cfg.UseMmap,
		UseMlock:  cfg.UseMlock,
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	now := time.Now()
	lm := &loadedModel{
		name:     name,
		cfg:      cfg,
		model:    mdl,
		estBytes: estimateBytes(mdl),
		loadedAt: now,
		lastUsed: now,
	}
	lm.pool = newContextPool(name, mdl, llama.ContextParams{
		NCtx:       cfg.CtxSize,
		NBatch:     cfg.BatchSize,
		NThreads:   cfg.Threads,
		Embeddings: cfg.Embeddings,
	}, m.maxPoolSize, m.contextTTL)
	m.models[name] = lm
	m.metrics.addMemory(int64(lm.estBytes))
	m.publisher.Publish(Event{Name: EventModelLoaded, Model: name, Fields: map[string]any{
		"path":       path,
		"est_bytes":  lm.estBytes,
		"embeddings": cfg.Embeddings,
	}})
	return nil
}

// UnloadModel drains name and frees its pool and weights.
// New checkouts are rejected as soon as the drain starts. If in-flight work
// has not finished within the drain timeout the model stays loaded and a
// drain-timeout error is returned; nothing is freed under live references.
func (m *Manager) UnloadModel(name string) error {
	m.mu.RLock()
	lm := m.models[name]
	m.mu.RUnlock()
	if lm == nil {
		return ErrModelNotFound(name)
	}

	lm.mu.Lock()
	if lm.draining {
		lm.mu.Unlock()
		return modelDrainingError{name: name}
	}
	lm.draining = true
	lm.drained = make(chan struct{})
	lm.drainedClosed = false
	drained := lm.drained
	lm.mu.Unlock()

	m.publisher.Publish(Event{Name: EventUnloadStart, Model: name})
	lm.maybeFinishDrain()

	select {
	case <-drained:
	case <-time.After(m.drainTimeout):
		lm.mu.Lock()
		finished := lm.drainedClosed
		if !finished {
			lm.draining = false
			lm.drained = nil
		}
		lm.mu.Unlock()
		if !finished {
			size, _, inUse := lm.pool.stats()
			m.publisher.Publish(Event{Name: EventUnloadTimeout, Model: name, Fields: map[string]any{
				"in_use": inUse,
				"pool":   size,
			}})
			return drainTimeoutError{name: name}
		}
	}

	m.mu.Lock()
	delete(m.models, name)
	m.mu.Unlock()

	freed := lm.pool.closeAll()
	lm.model.Free()
	m.metrics.poolShrank(freed)
	m.metrics.addMemory(-int64(lm.estBytes))
	m.publisher.Publish(Event{Name: EventUnloadDone, Model: name, Fields: map[string]any{
		"contexts_freed": freed,
	}})
	return nil
}

// ModelHandle pins a loaded model against unload until Close is called.
type ModelHandle struct {
	lm     *loadedModel
	closed atomic.Bool
}

// GetModel returns a reference-counted handle on a loaded model. An unload
// started while handles are open waits for every handle to close.
func (m *Manager) GetModel(name string) (*ModelHandle, error) {
	m.mu.RLock()
	lm := m.models[name]
	m.mu.RUnlock()
	if lm == nil {
		return nil, ErrModelNotFound(name)
	}
	lm.mu.Lock()
	if lm.draining {
		lm.mu.Unlock()
		return nil, modelDrainingError{name: name}
	}
	lm.refs++
	lm.lastUsed = time.Now()
	lm.mu.Unlock()
	return &ModelHandle{lm: lm}, nil
}

// Name returns the name the model was loaded under.
func (h *ModelHandle) Name() string { return h.lm.name }

// Config returns the load configuration, defaults applied.
func (h *ModelHandle) Config() ModelConfig { return h.lm.cfg }

// EstimatedBytes returns the model's estimated weights memory.
func (h *ModelHandle) EstimatedBytes() uint64 { return h.lm.estBytes }

// Close releases the handle. Safe to call more than once.
func (h *ModelHandle) Close() {
	if h.closed.Swap(true) {
		return
	}
	h.lm.mu.Lock()
	h.lm.refs--
	h.lm.mu.Unlock()
	h.lm.maybeFinishDrain()
}
