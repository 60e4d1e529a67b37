package types

// Model represents a discoverable GGUF model file on disk.
type Model struct {
	// Stable identifier for the model (the file name including extension).
	// example: tinyllama-q4_k_m.gguf
	ID string `json:"id" example:"tinyllama-q4_k_m.gguf"`
	// Human-friendly name.
	// example: tinyllama-q4_k_m.gguf
	Name string `json:"name" example:"tinyllama-q4_k_m.gguf"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/tinyllama-q4_k_m.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama-q4_k_m.gguf"`
	// File size in bytes, as reported by the scan.
	// example: 669262336
	SizeBytes int64 `json:"size_bytes,omitempty" example:"669262336"`
}
