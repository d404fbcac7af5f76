package generation

import "time"

// State represents lifecycle state of the base model and adapter handles.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateError         State = "error"
)

// ModelSource locates the base model weights. Token is an optional
// credential passed through to runtimes that fetch remote weights.
type ModelSource struct {
	Path  string
	Token string
}

// BaseModel is the single shared base model. Consumers only borrow it.
type BaseModel struct {
	Source   ModelSource
	Model    Model
	LoadedAt time.Time
}

// AdapterHandle is a base model specialized by a checkpoint. It is
// immutable once published by the cache.
type AdapterHandle struct {
	Checkpoint string
	Model      Model
	LoadedAt   time.Time
}

// SamplingParams captures generation parameters passed to the runtime.
// Zero values are replaced by the defaults of the request's addressing mode.
type SamplingParams struct {
	MaxTokens     int
	Temperature   float32
	TopP          float32
	TopK          int
	Stop          []string
	Seed          int
	RepeatPenalty float32
}

// Result is the typed outcome of a generation. Exactly one of Text/Err is
// meaningful; Err is nil on success.
type Result struct {
	Text       string
	Err        error
	AdapterID  string
	Strategy   string
	Checkpoint string
	Duration   time.Duration
}

// OK reports whether the generation succeeded.
func (r Result) OK() bool { return r.Err == nil }
