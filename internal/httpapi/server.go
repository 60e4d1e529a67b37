package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferd/internal/manager"
	"inferd/pkg/types"
)

// Service defines the manager methods required by the HTTP API layer.
// *manager.Manager satisfies it.
type Service interface {
	LoadModel(name string, cfg manager.ModelConfig) error
	LoadModelForEmbeddings(name string, cfg manager.ModelConfig) error
	UnloadModel(name string) error
	LoadedModelNames() []string
	ModelInfo(name string) (types.ModelInfoResponse, error)

	Generate(ctx context.Context, model, prompt string, p manager.GenerationParams) (string, error)
	ChatCompletion(ctx context.Context, model string, msgs []manager.ChatMessage, p manager.GenerationParams) (string, error)
	Embeddings(ctx context.Context, model, text string) ([]float32, error)

	StartStream(ctx context.Context, model, prompt string, p manager.GenerationParams) (string, error)
	NextStreamToken(ctx context.Context, id string) (manager.StreamToken, error)
	StopStream(id string) error

	SubmitBatch(model, prompt string, p manager.GenerationParams) (string, error)
	GetBatchResult(id string) manager.BatchResult
	GetAllBatchResults() []manager.BatchResult

	Status() types.StatusResponse
	MemoryStatus() types.MemoryStatusResponse
	PoolStatus() types.PoolStatusResponse
	GPUInfo() (types.GPUInfoResponse, error)
	Performance() types.PerformanceResponse
	ResetMetrics()
	CleanupContexts() (evictedContexts, removedSessions int)
	Ready() bool
}

// NewMux builds the HTTP router over svc. Package-level knobs (SetModelsDir,
// SetCORSOptions, SetLogger, SetBaseContext, SetMaxBodyBytes) must be set
// before the first request.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/healthz", handleHealthz())
	r.Get("/readyz", handleReadyz(svc))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", handleModels())
		r.Get("/models/loaded", handleLoadedModels(svc))
		r.Post("/models/load", handleLoadModel(svc, false))
		r.Post("/models/load-embeddings", handleLoadModel(svc, true))
		r.Post("/models/unload", handleUnloadModel(svc))
		r.Get("/models/{name}", handleModelInfo(svc))

		r.Post("/generate", handleGenerate(svc))
		r.Post("/chat", handleChat(svc))
		r.Post("/embeddings", handleEmbeddings(svc))

		r.Post("/stream", handleStreamStart(svc))
		r.Get("/stream/{id}", handleStreamNext(svc))
		r.Delete("/stream/{id}", handleStreamStop(svc))

		r.Post("/batch", handleBatchSubmit(svc))
		r.Get("/batch", handleBatchList(svc))
		r.Get("/batch/{id}", handleBatchResult(svc))

		r.Get("/status", handleStatus(svc))
		r.Get("/performance", handlePerformance(svc))
		r.Post("/performance/reset", handlePerformanceReset(svc))
		r.Get("/memory", handleMemory(svc))
		r.Get("/pools", handlePools(svc))
		r.Post("/pools/cleanup", handleCleanup(svc))
		r.Get("/gpu", handleGPU(svc))
	})

	MountSwagger(r)
	return r
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON enforces the JSON content type and body limit, then decodes the
// request body into dst. On failure it writes the error response and returns
// false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
