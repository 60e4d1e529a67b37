package manager

import (
	"sort"
	"time"

	"inferd/pkg/types"
)

const bytesPerMB = 1024.0 * 1024.0

// CheckMemoryLimit reports whether a new load would currently be admitted:
// true while estimated usage is under the limit, always true with no limit.
func (m *Manager) CheckMemoryLimit() bool {
	return m.memoryLimitMB == 0 || m.metrics.MemoryUsage() < uint64(m.memoryLimitMB)*1024*1024
}

func (m *Manager) snapshotModels() []*loadedModel {
	m.mu.RLock()
	models := make([]*loadedModel, 0, len(m.models))
	for _, lm := range m.models {
		models = append(models, lm)
	}
	m.mu.RUnlock()
	sort.Slice(models, func(i, j int) bool { return models[i].name < models[j].name })
	return models
}

// Status summarizes the manager for the status endpoint.
func (m *Manager) Status() types.StatusResponse {
	models := m.snapshotModels()
	names := make([]string, 0, len(models))
	totalSize, totalInUse := 0, 0
	for _, lm := range models {
		names = append(names, lm.name)
		size, _, inUse := lm.pool.stats()
		totalSize += size
		totalInUse += inUse
	}

	state := "uninitialized"
	if m.Ready() {
		state = "ready"
	}
	now := time.Now()
	return types.StatusResponse{
		State:              state,
		BackendInitialized: m.Ready(),
		LoadedModels:       names,
		ModelCount:         len(names),
		MemoryUsageMB:      float64(m.metrics.MemoryUsage()) / bytesPerMB,
		MemoryLimitMB:      m.memoryLimitMB,
		ActiveContexts:     totalInUse,
		TotalPoolSize:      totalSize,
		StreamSessions:     m.StreamSessionCount(),
		BatchResults:       m.BatchResultCount(),
		UptimeSeconds:      int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix:     now.Unix(),
	}
}

// ModelInfo reports one loaded model's configuration and pool occupancy.
func (m *Manager) ModelInfo(name string) (types.ModelInfoResponse, error) {
	m.mu.RLock()
	lm := m.models[name]
	m.mu.RUnlock()
	if lm == nil {
		return types.ModelInfoResponse{}, ErrModelNotFound(name)
	}
	lm.mu.Lock()
	refs := lm.refs
	lastUsed := lm.lastUsed
	lm.mu.Unlock()
	size, available, inUse := lm.pool.stats()
	return types.ModelInfoResponse{
		Name:          lm.name,
		Path:          lm.cfg.Path,
		CtxSize:       lm.cfg.CtxSize,
		BatchSize:     lm.cfg.BatchSize,
		GPULayers:     lm.cfg.GPULayers,
		Threads:       lm.cfg.Threads,
		Embeddings:    lm.cfg.Embeddings,
		EstMemoryMB:   float64(lm.estBytes) / bytesPerMB,
		RefCount:      refs,
		PoolSize:      size,
		PoolAvailable: available,
		PoolInUse:     inUse,
		LoadedAtUnix:  lm.loadedAt.Unix(),
		LastUsedUnix:  lastUsed.Unix(),
	}, nil
}

// MemoryStatus reports the advisory memory accounting, per model and total.
func (m *Manager) MemoryStatus() types.MemoryStatusResponse {
	models := m.snapshotModels()
	perModel := make([]types.ModelMemory, 0, len(models))
	for _, lm := range models {
		perModel = append(perModel, types.ModelMemory{
			Name:        lm.name,
			EstimatedMB: float64(lm.estBytes) / bytesPerMB,
		})
	}
	snap := m.metrics.Snapshot()
	return types.MemoryStatusResponse{
		UsageBytes:  snap.MemoryUsageBytes,
		UsageMB:     float64(snap.MemoryUsageBytes) / bytesPerMB,
		LimitMB:     m.memoryLimitMB,
		PeakBytes:   snap.PeakMemoryBytes,
		PeakMB:      float64(snap.PeakMemoryBytes) / bytesPerMB,
		WithinLimit: m.CheckMemoryLimit(),
		Models:      perModel,
	}
}

// PoolStatus reports every model's pool occupancy.
func (m *Manager) PoolStatus() types.PoolStatusResponse {
	models := m.snapshotModels()
	resp := types.PoolStatusResponse{Pools: make([]types.PoolStatus, 0, len(models))}
	for _, lm := range models {
		size, available, inUse := lm.pool.stats()
		resp.Pools = append(resp.Pools, types.PoolStatus{
			Model:      lm.name,
			Size:       size,
			Available:  available,
			InUse:      inUse,
			MaxSize:    m.maxPoolSize,
			TTLSeconds: int(m.contextTTL.Seconds()),
		})
		resp.TotalSize += size
		resp.TotalAvailable += available
	}
	return resp
}

// GPUInfo enumerates the backend's compute devices. The backend must be up,
// so the first call may initialize it.
func (m *Manager) GPUInfo() (types.GPUInfoResponse, error) {
	if err := m.ensureBackend(); err != nil {
		return types.GPUInfoResponse{}, err
	}
	devices := m.backend.Devices()
	resp := types.GPUInfoResponse{Devices: make([]types.GPUDevice, 0, len(devices))}
	for _, d := range devices {
		resp.Devices = append(resp.Devices, types.GPUDevice{
			Name:          d.Name,
			Description:   d.Description,
			TotalMemoryMB: d.TotalMemoryMB,
			FreeMemoryMB:  d.FreeMemoryMB,
			GPU:           d.GPU,
		})
		if d.GPU {
			resp.Available = true
		}
	}
	resp.Count = len(resp.Devices)
	return resp, nil
}

// Performance converts the metrics snapshot to its API shape.
func (m *Manager) Performance() types.PerformanceResponse {
	s := m.metrics.Snapshot()
	return types.PerformanceResponse{
		TotalRequests:          s.TotalRequests,
		TotalTokens:            s.TotalTokens,
		TotalGenerationTimeMs:  s.TotalGenerationTimeMs,
		AverageTokensPerSecond: s.AverageTokensPerSecond,
		AverageLatencyMs:       s.AverageLatencyMs,
		MemoryUsageBytes:       s.MemoryUsageBytes,
		MemoryUsageMB:          float64(s.MemoryUsageBytes) / bytesPerMB,
		PeakMemoryBytes:        s.PeakMemoryBytes,
		ActiveContexts:         s.ActiveContexts,
		PoolSize:               s.PoolSize,
	}
}
