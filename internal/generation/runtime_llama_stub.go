//go:build !llama

package generation

// No-CGO stub for the llama runtime, compiled when the 'llama' build tag is
// NOT set. Default builds and CI stay CGO-free; every load fails fast.

import "context"

// llamaBuilt indicates this binary was compiled without llama support.
var llamaBuilt = false

type llamaRuntime struct{}

// NewLlamaRuntime returns a runtime that refuses to load models.
func NewLlamaRuntime(ctxSize, gpuLayers, threads int) Runtime { return llamaRuntime{} }

func (llamaRuntime) LoadBase(ctx context.Context, src ModelSource) (Model, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (llamaRuntime) LoadAdapter(ctx context.Context, base Model, src ModelSource, ref string) (Model, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
