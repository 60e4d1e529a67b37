package httpapi

import (
	"net/http"

	"inferd/pkg/types"
)

func handleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func handleReadyz(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("initializing"))
	}
}

// handleStatus summarizes the manager.
//
// @Summary Manager status
// @Tags status
// @Produce json
// @Success 200 {object} types.StatusResponse
// @Router /v1/status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	}
}

// handlePerformance reports cumulative generation counters.
//
// @Summary Performance counters
// @Tags status
// @Produce json
// @Success 200 {object} types.PerformanceResponse
// @Router /v1/performance [get]
func handlePerformance(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Performance())
	}
}

// handlePerformanceReset zeroes the request and token counters. Memory gauges
// track live models and are unaffected.
//
// @Summary Reset performance counters
// @Tags status
// @Produce json
// @Success 200 {object} map[string]string
// @Router /v1/performance/reset [post]
func handlePerformanceReset(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.ResetMetrics()
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	}
}

// handleMemory reports the advisory memory accounting.
//
// @Summary Memory status
// @Tags status
// @Produce json
// @Success 200 {object} types.MemoryStatusResponse
// @Router /v1/memory [get]
func handleMemory(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.MemoryStatus())
	}
}

// handlePools reports per-model context pool occupancy.
//
// @Summary Context pool status
// @Tags status
// @Produce json
// @Success 200 {object} types.PoolStatusResponse
// @Router /v1/pools [get]
func handlePools(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.PoolStatus())
	}
}

// handleCleanup sweeps expired idle contexts and stale finished sessions now.
//
// @Summary Sweep expired contexts
// @Tags status
// @Produce json
// @Success 200 {object} types.CleanupResponse
// @Router /v1/pools/cleanup [post]
func handleCleanup(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evicted, removed := svc.CleanupContexts()
		writeJSON(w, http.StatusOK, types.CleanupResponse{
			EvictedContexts: evicted,
			RemovedSessions: removed,
		})
	}
}

// handleGPU enumerates the backend's compute devices.
//
// @Summary GPU and device info
// @Tags status
// @Produce json
// @Success 200 {object} types.GPUInfoResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /v1/gpu [get]
func handleGPU(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.GPUInfo()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}
