package types

// GenerateRequest is the POST /generate payload. Exactly one addressing
// mode applies: adapter_id (checkpoint addressing) or brand.
type GenerateRequest struct {
	// Required prompt text.
	// example: Write a Python function to check if a number is prime:
	Prompt string `json:"prompt" example:"Write a Python function to check if a number is prime:"`
	// Brand (strategy) name; unknown names fall back to default.
	// example: documentation
	Brand string `json:"brand,omitempty" example:"documentation"`
	// Supported adapter id for checkpoint addressing.
	// example: test_gen_adapter
	AdapterID string `json:"adapter_id,omitempty" example:"test_gen_adapter"`
	// Checkpoint reference; overrides any checkpoint bound to brand or adapter id.
	// example: /mnt/data/codellama_7b_test_adapter/checkpoint-1000
	Checkpoint string `json:"checkpoint,omitempty" example:"/mnt/data/codellama_7b_test_adapter/checkpoint-1000"`
	// Maximum number of new tokens; 0 uses the mode default.
	// example: 256
	MaxTokens int `json:"max_tokens,omitempty" example:"256"`
	// Sampling temperature; 0 uses the mode default.
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// Stop sequences; omitted uses the mode default.
	Stop []string `json:"stop,omitempty"`
	// Random seed; 0 lets the runtime choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
	// Repeat penalty.
	// example: 1.1
	RepeatPenalty float64 `json:"repeat_penalty,omitempty" example:"1.1"`
}

// GenerateResponse is returned by POST /generate on success.
type GenerateResponse struct {
	// example: def is_prime(n): ...
	Text string `json:"text"`
	// example: documentation
	Adapter string `json:"adapter"`
	// example: documentation
	Strategy string `json:"strategy"`
	// Checkpoint used; empty when the base model served the request.
	Checkpoint string `json:"checkpoint,omitempty"`
	// example: 1530
	DurationMS int64 `json:"duration_ms" example:"1530"`
}

// UnloadRequest is the POST /adapters/unload payload.
type UnloadRequest struct {
	// example: /mnt/data/codellama_7b_test_adapter/checkpoint-1000
	Checkpoint string `json:"checkpoint"`
}

// AdaptersResponse is returned by GET /adapters.
type AdaptersResponse struct {
	// Checkpoints discovered in the adapters directory.
	Catalog []Checkpoint `json:"catalog"`
	// Adapter ids accepted in checkpoint addressing.
	Supported []string `json:"supported"`
	// Known brands.
	Brands []BrandInfo `json:"brands"`
	// Currently loaded adapters.
	Loaded []AdapterStatus `json:"loaded"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// Error class (unsupported, adapter_load, model_load, too_busy, runtime, ...).
	// example: unsupported
	Kind string `json:"kind,omitempty" example:"unsupported"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// AdapterStatus summarizes a loaded adapter for /status.
type AdapterStatus struct {
	// example: /mnt/data/adapters/test_gen_adapter.gguf
	Checkpoint string `json:"checkpoint"`
	// Last time this adapter served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// When the adapter was loaded (unix seconds).
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at_unix" example:"1700000000"`
	// Approximate checkpoint size in MB.
	// example: 64
	EstMB int `json:"est_mb" example:"64"`
	// Callers currently holding the adapter.
	// example: 1
	Pins int `json:"pins" example:"1"`
	// Requests queued (including in flight).
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Base model state (uninitialized, loading, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// Base model source path.
	// example: /models/codellama-7b.Q4_K_M.gguf
	BaseModel string `json:"base_model" example:"/models/codellama-7b.Q4_K_M.gguf"`
	// When the base model was loaded (unix seconds); 0 if not loaded.
	BaseLoadedAt int64 `json:"base_loaded_at_unix,omitempty"`
	// Last base model load error, if any.
	LastError string `json:"last_error,omitempty"`
	// Loaded adapters.
	Adapters []AdapterStatus `json:"adapters"`
	// Adapter cache bound; 0 means unbounded.
	// example: 4
	MaxAdapters int `json:"max_adapters" example:"4"`
	// example: 1
	BaseLoadsTotal uint64 `json:"base_loads_total" example:"1"`
	// example: 12
	AdapterLoadsTotal uint64 `json:"adapter_loads_total" example:"12"`
	// example: 5
	EvictionsTotal uint64 `json:"evictions_total" example:"5"`
	// Whether this binary includes the llama.cpp runtime.
	LlamaBuilt bool `json:"llama_built"`
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
