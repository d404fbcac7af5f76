package generation

import "context"

// Runtime abstracts the inference engine. Concrete implementations (e.g.
// llama.cpp) load weights; the generation layer only relies on this contract.
type Runtime interface {
	// LoadBase loads the base model and tokenizer from src.
	LoadBase(ctx context.Context, src ModelSource) (Model, error)
	// LoadAdapter returns base specialized by the checkpoint at ref. The
	// returned model is used for inference only and is never mutated.
	LoadAdapter(ctx context.Context, base Model, src ModelSource, ref string) (Model, error)
}

// Model is a loaded, generation-ready model. Implementations need not be
// safe for concurrent Generate calls; admission serializes them.
type Model interface {
	// Generate runs one completion for prompt. Implementations should return
	// when ctx is canceled if they can stop safely at a token boundary.
	Generate(ctx context.Context, prompt string, params SamplingParams) (string, error)
	// Close releases any resources associated with the model.
	Close() error
}
