// Package manager owns model lifecycle and inference scheduling over the
// native llama runtime. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, introspection, Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: request/parameter types (ModelConfig, GenerationParams, ChatMessage).
//   - errors.go: error types and helpers (IsModelNotFound, IsNoCapacity, ...).
//   - pool.go: per-model bounded context pool with TTL expiry.
//   - load.go: LoadModel/UnloadModel lifecycle, drain, reference-counted handles.
//   - generate.go: blocking generation, chat flattening, embeddings.
//   - stream.go: token-streaming sessions with one worker goroutine each.
//   - batch.go: asynchronous batch queue and its worker pool.
//   - cleanup.go: background sweeper for idle contexts and finished sessions.
//   - status.go: status, model info, memory, pool, and device reports.
//   - metrics.go: atomic performance counters and snapshots.
//   - events.go: lifecycle event publishing.
//   - sanity.go: startup probe of the native runtime and its devices.
//
// The native runtime is reached only through the interfaces in
// internal/llama; tests inject the fake from internal/llama/llamatest.
//
// External packages should treat this package as the orchestration layer and
// use public methods only (e.g., NewWithConfig, LoadModel, Generate, Status).
// Internal types are subject to change.
package manager
