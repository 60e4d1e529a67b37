package manager

import "time"

// ModelConfig describes how to load one model.
type ModelConfig struct {
	// Path to the GGUF weights file. Required.
	Path string
	// GPULayers is the number of layers to offload (0 = CPU only).
	GPULayers int
	// CtxSize is the context window in tokens (default 2048).
	CtxSize int
	// BatchSize is the decode batch size in tokens (default 512).
	BatchSize int
	// Threads is the CPU thread count for decoding (default 4).
	Threads int
	// Embeddings enables embedding output on the model's contexts.
	Embeddings bool
	// UseMmap maps the weights file instead of reading it (default true).
	UseMmap *bool
	// UseMlock locks the weights in RAM (default false).
	UseMlock bool
}

func (c ModelConfig) withDefaults() ModelConfig {
	if c.CtxSize <= 0 {
		c.CtxSize = defaultCtxSize
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.Threads <= 0 {
		c.Threads = defaultThreads
	}
	if c.UseMmap == nil {
		t := true
		c.UseMmap = &t
	}
	return c
}

// GenerationParams bound one generation request. Temperature/TopP/TopK ride
// along for API compatibility; the sampling chain itself uses fixed stages
// and is reset between requests.
type GenerationParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	TopK        int
}

func (p GenerationParams) maxTokens() int {
	if p.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return p.MaxTokens
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string
	Content string
}

// StreamToken is one unit fetched from a streaming session. The final token
// has ID -1, empty text, and Final set; a failed session carries the reason
// in Err of its final token.
type StreamToken struct {
	Text        string
	ID          int32
	Probability float32
	Final       bool
	Err         string
}

// BatchResult is the outcome of one queued batch request. Unknown request ids
// yield a failure result with "Request not found".
type BatchResult struct {
	RequestID    string
	Success      bool
	Response     string
	ErrorMessage string
	CompletedAt  time.Time
}
