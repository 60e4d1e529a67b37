package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: tinyllama
	Error string `json:"error" example:"model not found: tinyllama"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// ModelsResponse wraps the list of models returned by GET /v1/models.
type ModelsResponse struct {
	// List of models discovered in the models directory.
	Models []Model `json:"models"`
}

// LoadedModelsResponse is returned by GET /v1/models/loaded.
type LoadedModelsResponse struct {
	// Names of the currently loaded models.
	Models []string `json:"models"`
	// Number of loaded models.
	// example: 1
	Count int `json:"count" example:"1"`
}

// LoadModelRequest loads a model file into memory under a given name.
type LoadModelRequest struct {
	// Name to register the model under. Defaults to the file name without
	// its extension.
	// example: tinyllama
	Model string `json:"model,omitempty" example:"tinyllama"`
	// Path to the GGUF weights file. Relative names are resolved against the models directory.
	// example: /home/user/models/tinyllama-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama-q4_k_m.gguf"`
	// Number of layers to offload to the GPU (0 = CPU only).
	// example: 0
	GPULayers int `json:"n_gpu_layers,omitempty" example:"0"`
	// Context window size in tokens.
	// example: 2048
	CtxSize int `json:"n_ctx,omitempty" example:"2048"`
	// Decode batch size in tokens.
	// example: 512
	BatchSize int `json:"n_batch,omitempty" example:"512"`
	// Number of CPU threads for decoding.
	// example: 4
	Threads int `json:"n_threads,omitempty" example:"4"`
	// Map the weights file instead of reading it.
	UseMmap *bool `json:"use_mmap,omitempty"`
	// Lock the weights in RAM.
	UseMlock bool `json:"use_mlock,omitempty"`
}

// LoadModelResponse confirms a load operation.
type LoadModelResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: tinyllama
	ModelName string `json:"model_name" example:"tinyllama"`
	// example: /home/user/models/tinyllama-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama-q4_k_m.gguf"`
	// Set when the model was loaded with embedding output enabled.
	EmbeddingsEnabled bool `json:"embeddings_enabled,omitempty"`
}

// UnloadModelRequest unloads a previously loaded model.
type UnloadModelRequest struct {
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
}

// UnloadModelResponse confirms an unload operation.
type UnloadModelResponse struct {
	// example: success
	Status string `json:"status" example:"success"`
	// example: tinyllama
	ModelName string `json:"model_name" example:"tinyllama"`
}

// GenerateRequest is a blocking text-completion request.
type GenerateRequest struct {
	// Name of a loaded model. Required.
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// Prompt text to complete. Required.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// Maximum number of new tokens to generate.
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random).
	// example: 0.8
	Temperature float32 `json:"temperature,omitempty" example:"0.8"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float32 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling: limit candidates to the K most likely tokens.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
}

// GenerateResponse carries the completed text.
type GenerateResponse struct {
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// Generated completion.
	Response string `json:"response"`
}

// ChatMessage is one turn of a chat conversation.
type ChatMessage struct {
	// One of: system, user, assistant.
	// example: user
	Role string `json:"role" example:"user"`
	// example: Hello!
	Content string `json:"content" example:"Hello!"`
}

// ChatRequest is a blocking chat-completion request.
type ChatRequest struct {
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// Conversation so far. Required, at least one message.
	Messages []ChatMessage `json:"messages"`
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// example: 0.8
	Temperature float32 `json:"temperature,omitempty" example:"0.8"`
	// example: 0.9
	TopP float32 `json:"top_p,omitempty" example:"0.9"`
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	// Generated assistant message.
	Content string `json:"content"`
	// Always "assistant".
	// example: assistant
	Role string `json:"role" example:"assistant"`
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
}

// EmbedRequest computes an embedding vector for a text.
type EmbedRequest struct {
	// Name of a model loaded with embeddings enabled. Required.
	// example: nomic-embed
	Model string `json:"model" example:"nomic-embed"`
	// Text to embed. Required.
	// example: The quick brown fox.
	Text string `json:"text" example:"The quick brown fox."`
}

// EmbedResponse carries the embedding vector.
type EmbedResponse struct {
	// example: nomic-embed
	Model string `json:"model" example:"nomic-embed"`
	// Embedding vector, one float per model dimension.
	Embeddings []float32 `json:"embeddings"`
}

// BatchSubmitRequest enqueues a generation request for asynchronous processing.
type BatchSubmitRequest struct {
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// example: Summarize the following text.
	Prompt string `json:"prompt" example:"Summarize the following text."`
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// example: 0.8
	Temperature float32 `json:"temperature,omitempty" example:"0.8"`
	// example: 0.9
	TopP float32 `json:"top_p,omitempty" example:"0.9"`
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
}

// BatchSubmitResponse acknowledges a queued batch request.
type BatchSubmitResponse struct {
	// Identifier to poll results with.
	// example: batch_1755772800123456789_1
	RequestID string `json:"request_id" example:"batch_1755772800123456789_1"`
	// example: queued
	Status string `json:"status" example:"queued"`
}

// BatchResultResponse is the outcome of one batch request.
type BatchResultResponse struct {
	// example: batch_1755772800123456789_1
	RequestID string `json:"request_id" example:"batch_1755772800123456789_1"`
	// Whether generation succeeded.
	// example: true
	Success bool `json:"success" example:"true"`
	// Generated text when successful.
	Response string `json:"response,omitempty"`
	// Failure reason when unsuccessful.
	ErrorMessage string `json:"error_message,omitempty"`
	// Completion time in unix seconds. Zero while unknown.
	// example: 1755772805
	CompletedAtUnix int64 `json:"completed_at_unix,omitempty" example:"1755772805"`
}

// BatchListResponse wraps all known batch results.
type BatchListResponse struct {
	Results []BatchResultResponse `json:"results"`
	// example: 3
	Count int `json:"count" example:"3"`
}

// StreamStartRequest opens a token-streaming session.
type StreamStartRequest struct {
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// example: Tell me a story.
	Prompt string `json:"prompt" example:"Tell me a story."`
	// example: 256
	MaxTokens int `json:"max_tokens,omitempty" example:"256"`
	// example: 0.8
	Temperature float32 `json:"temperature,omitempty" example:"0.8"`
	// example: 0.9
	TopP float32 `json:"top_p,omitempty" example:"0.9"`
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
}

// StreamStartResponse identifies the new session.
type StreamStartResponse struct {
	// example: stream_8f14e45f-ceea-4e17-a9f6-1c0d2f8b9a3d
	SessionID string `json:"session_id" example:"stream_8f14e45f-ceea-4e17-a9f6-1c0d2f8b9a3d"`
	// example: started
	Status string `json:"status" example:"started"`
}

// StreamTokenResponse is one token fetched from a streaming session.
type StreamTokenResponse struct {
	// Token text. Empty on the final marker.
	Token string `json:"token"`
	// Token id in the model vocabulary; -1 on the final marker.
	// example: 1523
	TokenID int32 `json:"token_id" example:"1523"`
	// True when the session has produced its last token.
	IsFinal bool `json:"is_final"`
	// Probability of the sampled token, in (0, 1].
	// example: 0.73
	Probability float32 `json:"probability" example:"0.73"`
	// Terminal error, if the session failed.
	Error string `json:"error,omitempty"`
}

// StreamStopResponse confirms a stopped session.
type StreamStopResponse struct {
	// example: stopped
	Status string `json:"status" example:"stopped"`
	// example: stream_8f14e45f-ceea-4e17-a9f6-1c0d2f8b9a3d
	SessionID string `json:"session_id" example:"stream_8f14e45f-ceea-4e17-a9f6-1c0d2f8b9a3d"`
}

// StatusResponse is returned by GET /v1/status.
type StatusResponse struct {
	// Overall state: ready once the backend is initialized, else uninitialized.
	// example: ready
	State string `json:"state" example:"ready"`
	// Whether the native backend has been initialized.
	BackendInitialized bool `json:"backend_initialized"`
	// Names of loaded models.
	LoadedModels []string `json:"loaded_models"`
	// example: 1
	ModelCount int `json:"model_count" example:"1"`
	// Estimated memory used by loaded models, in MB.
	// example: 1276
	MemoryUsageMB float64 `json:"memory_usage_mb" example:"1276"`
	// Configured memory limit in MB (0 = unlimited).
	// example: 8192
	MemoryLimitMB int `json:"memory_limit_mb" example:"8192"`
	// Contexts currently checked out across all pools.
	// example: 2
	ActiveContexts int `json:"active_contexts" example:"2"`
	// Total contexts alive across all pools.
	// example: 4
	TotalPoolSize int `json:"total_pool_size" example:"4"`
	// Streaming sessions currently tracked.
	// example: 1
	StreamSessions int `json:"stream_sessions" example:"1"`
	// Batch results currently retained.
	// example: 3
	BatchResults int `json:"batch_results" example:"3"`
	// Uptime of the manager in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1755772800
	ServerTimeUnix int64 `json:"server_time_unix" example:"1755772800"`
}

// ModelInfoResponse is returned by GET /v1/models/{name}.
type ModelInfoResponse struct {
	// example: tinyllama
	Name string `json:"name" example:"tinyllama"`
	// example: /home/user/models/tinyllama-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama-q4_k_m.gguf"`
	// example: 2048
	CtxSize int `json:"n_ctx" example:"2048"`
	// example: 512
	BatchSize int `json:"n_batch" example:"512"`
	// example: 0
	GPULayers int `json:"n_gpu_layers" example:"0"`
	// example: 4
	Threads int `json:"n_threads" example:"4"`
	// Whether the model produces embeddings.
	Embeddings bool `json:"embeddings"`
	// Estimated weights memory in MB.
	// example: 1276
	EstMemoryMB float64 `json:"est_memory_mb" example:"1276"`
	// Outstanding handle references.
	// example: 0
	RefCount int `json:"ref_count" example:"0"`
	// Contexts alive in this model's pool.
	// example: 2
	PoolSize int `json:"pool_size" example:"2"`
	// Idle contexts ready for reuse.
	// example: 1
	PoolAvailable int `json:"pool_available" example:"1"`
	// Contexts currently checked out.
	// example: 1
	PoolInUse int `json:"pool_in_use" example:"1"`
	// Load time in unix seconds.
	// example: 1755772700
	LoadedAtUnix int64 `json:"loaded_at_unix" example:"1755772700"`
	// Last acquisition time in unix seconds.
	// example: 1755772800
	LastUsedUnix int64 `json:"last_used_unix" example:"1755772800"`
}

// ModelMemory is one model's share of the memory report.
type ModelMemory struct {
	// example: tinyllama
	Name string `json:"name" example:"tinyllama"`
	// example: 1276
	EstimatedMB float64 `json:"estimated_mb" example:"1276"`
}

// MemoryStatusResponse is returned by GET /v1/memory.
type MemoryStatusResponse struct {
	// example: 1338998784
	UsageBytes uint64 `json:"usage_bytes" example:"1338998784"`
	// example: 1276
	UsageMB float64 `json:"usage_mb" example:"1276"`
	// Configured limit in MB (0 = unlimited).
	// example: 8192
	LimitMB int `json:"limit_mb" example:"8192"`
	// example: 2677997568
	PeakBytes uint64 `json:"peak_bytes" example:"2677997568"`
	// example: 2552
	PeakMB float64 `json:"peak_mb" example:"2552"`
	// False when usage has reached or passed the limit.
	WithinLimit bool `json:"within_limit"`
	// Per-model estimates.
	Models []ModelMemory `json:"models"`
}

// PoolStatus describes one model's context pool.
type PoolStatus struct {
	// example: tinyllama
	Model string `json:"model" example:"tinyllama"`
	// Contexts alive (idle + in use).
	// example: 3
	Size int `json:"size" example:"3"`
	// Idle contexts.
	// example: 2
	Available int `json:"available" example:"2"`
	// Checked-out contexts.
	// example: 1
	InUse int `json:"in_use" example:"1"`
	// Pool capacity.
	// example: 10
	MaxSize int `json:"max_size" example:"10"`
	// Idle expiry in seconds.
	// example: 1800
	TTLSeconds int `json:"ttl_seconds" example:"1800"`
}

// PoolStatusResponse is returned by GET /v1/pools.
type PoolStatusResponse struct {
	Pools []PoolStatus `json:"pools"`
	// example: 3
	TotalSize int `json:"total_size" example:"3"`
	// example: 2
	TotalAvailable int `json:"total_available" example:"2"`
}

// CleanupResponse reports a manual sweep.
type CleanupResponse struct {
	// Idle contexts freed by the sweep.
	// example: 2
	EvictedContexts int `json:"evicted_contexts" example:"2"`
	// Finished streaming sessions removed.
	// example: 1
	RemovedSessions int `json:"removed_sessions" example:"1"`
}

// GPUDevice describes one compute device reported by the backend.
type GPUDevice struct {
	// example: NVIDIA GeForce RTX 3060
	Name string `json:"name" example:"NVIDIA GeForce RTX 3060"`
	// example: CUDA
	Description string `json:"description,omitempty" example:"CUDA"`
	// example: 12288
	TotalMemoryMB uint64 `json:"total_memory_mb,omitempty" example:"12288"`
	// example: 10240
	FreeMemoryMB uint64 `json:"free_memory_mb,omitempty" example:"10240"`
	// True for GPU devices, false for CPU fallbacks.
	GPU bool `json:"gpu"`
}

// GPUInfoResponse is returned by GET /v1/gpu.
type GPUInfoResponse struct {
	// True when at least one GPU device is present.
	Available bool        `json:"available"`
	Devices   []GPUDevice `json:"devices"`
	// example: 1
	Count int `json:"count" example:"1"`
}

// PerformanceResponse is returned by GET /v1/performance.
type PerformanceResponse struct {
	// Requests that acquired a context.
	// example: 42
	TotalRequests uint64 `json:"total_requests" example:"42"`
	// Tokens produced across all requests.
	// example: 5120
	TotalTokens uint64 `json:"total_tokens" example:"5120"`
	// Cumulative generation wall time in milliseconds.
	// example: 68000
	TotalGenerationTimeMs uint64 `json:"total_generation_time_ms" example:"68000"`
	// example: 75.3
	AverageTokensPerSecond float64 `json:"average_tokens_per_second" example:"75.3"`
	// example: 1619
	AverageLatencyMs float64 `json:"average_latency_ms" example:"1619"`
	// example: 1338998784
	MemoryUsageBytes uint64 `json:"memory_usage_bytes" example:"1338998784"`
	// example: 1276
	MemoryUsageMB float64 `json:"memory_usage_mb" example:"1276"`
	// example: 2677997568
	PeakMemoryBytes uint64 `json:"peak_memory_bytes" example:"2677997568"`
	// example: 2
	ActiveContexts int64 `json:"active_contexts" example:"2"`
	// example: 4
	PoolSize int64 `json:"pool_size" example:"4"`
}
