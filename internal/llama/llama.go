// Package llama abstracts the native llama.cpp runtime behind small
// interfaces so the rest of the module never touches cgo directly.
//
// Two implementations exist:
//
//   - backend_cgo.go: the real binding, compiled with `-tags=llama`.
//   - backend_stub.go: a refusal stub for default (CGO-free) builds whose
//     Init reports the runtime as unavailable.
//
// Tests use the deterministic fake in the llamatest subpackage.
package llama

// Token is a vocabulary token id.
type Token = int32

// ModelParams control how weights are loaded.
type ModelParams struct {
	// GPULayers is the number of layers to offload (0 = CPU only).
	GPULayers int
	// UseMmap maps the weights file instead of reading it.
	UseMmap bool
	// UseMlock locks the weights in RAM.
	UseMlock bool
}

// ContextParams control per-context allocation.
type ContextParams struct {
	NCtx       int
	NBatch     int
	NThreads   int
	Embeddings bool
}

// SamplerParams configure the sampling chain attached to a context.
type SamplerParams struct {
	TopK    int
	TopP    float32
	MinKeep int
	Temp    float32
	Seed    uint32
}

// DeviceInfo describes one compute device known to the backend.
type DeviceInfo struct {
	Name          string
	Description   string
	TotalMemoryMB uint64
	FreeMemoryMB  uint64
	GPU           bool
}

// Backend is the process-wide native runtime.
type Backend interface {
	// Init prepares the runtime. It is safe to call again after a failure;
	// a successful call makes later calls no-ops.
	Init() error
	// Free tears the runtime down. No models or contexts may be alive.
	Free()
	// LoadModel reads weights from path. The returned Model owns the native
	// allocation until Free is called on it.
	LoadModel(path string, p ModelParams) (Model, error)
	// Devices enumerates compute devices.
	Devices() []DeviceInfo
}

// Model is a loaded set of weights. Contexts and samplers created from it
// must be freed before the model itself.
type Model interface {
	NewContext(p ContextParams) (Context, error)
	NewSampler(p SamplerParams) (Sampler, error)
	// Tokenize writes token ids for text into buf and returns how many were
	// written. A negative return is the required buffer size, negated; the
	// caller is expected to grow buf and retry once.
	Tokenize(text string, buf []Token, addSpecial, parseSpecial bool) int
	// TokenToPiece renders one token as text.
	TokenToPiece(t Token) (string, error)
	// IsEOG reports whether t ends generation.
	IsEOG(t Token) bool
	// NEmbd is the embedding dimension.
	NEmbd() int
	// NParams is the parameter count, used for memory estimates.
	NParams() uint64
	Free()
}

// Context is one inference context over a model's weights.
type Context interface {
	// Decode runs the model over tokens, extending the context state.
	Decode(tokens []Token) error
	// Logits returns the logits of the last decoded position, indexed by
	// token id. Valid until the next Decode.
	Logits() []float32
	// Embeddings returns the pooled embedding output, or nil when the
	// context was not created with Embeddings set.
	Embeddings() []float32
	Free()
}

// Sampler is a sampling chain bound to a model's vocabulary.
type Sampler interface {
	// Sample picks the next token from ctx's last logits.
	Sample(ctx Context) Token
	// Accept informs the chain that t was kept.
	Accept(t Token)
	// Reset clears the chain's state between requests.
	Reset()
	Free()
}
