//go:build llama

package generation

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// allGPULayers exceeds the layer count of any model, so every layer is
// offloaded.
const allGPULayers = 1 << 16

// llamaRuntime holds global options used to load every model.
type llamaRuntime struct {
	ctxSize   int
	gpuLayers int
	threads   int
}

// NewLlamaRuntime returns the in-process go-llama.cpp runtime.
func NewLlamaRuntime(ctxSize, gpuLayers, threads int) Runtime {
	return &llamaRuntime{ctxSize: ctxSize, gpuLayers: gpuLayers, threads: threads}
}

// llamaModel owns one loaded llama instance (base or base+LoRA).
type llamaModel struct {
	model   *llama.LLama
	threads int
}

func (r *llamaRuntime) modelOptions() []llama.ModelOption {
	layers := r.gpuLayers
	if layers < 0 {
		layers = allGPULayers
	}
	return []llama.ModelOption{llama.SetContext(r.ctxSize), llama.SetGPULayers(layers)}
}

func (r *llamaRuntime) LoadBase(ctx context.Context, src ModelSource) (Model, error) {
	if strings.TrimSpace(src.Path) == "" {
		return nil, ErrEmptySource
	}
	m, err := llama.New(src.Path, r.modelOptions()...)
	if err != nil {
		return nil, err
	}
	return &llamaModel{model: m, threads: r.threads}, nil
}

// LoadAdapter reloads the base weights with the LoRA checkpoint applied;
// go-llama.cpp only applies adapters at load time.
func (r *llamaRuntime) LoadAdapter(ctx context.Context, base Model, src ModelSource, ref string) (Model, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, errors.New("checkpoint path is empty")
	}
	mo := append(r.modelOptions(), llama.SetLoraBase(src.Path), llama.SetLoraAdapter(ref))
	m, err := llama.New(src.Path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaModel{model: m, threads: r.threads}, nil
}

func (m *llamaModel) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	if m.model == nil {
		return "", errors.New("llama model not initialized")
	}
	// Stop at a token boundary when the context is canceled.
	m.model.SetTokenCallback(func(string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := m.model.Predict(prompt, predictOptions(params, m.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (m *llamaModel) Close() error {
	if m.model != nil {
		m.model.Free()
		m.model = nil
	}
	return nil
}

func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts sampling params into go-llama.cpp options.
func predictOptions(params SamplingParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, params.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopP(zf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(params.Temperature, llama.DefaultOptions.Temperature)),
		llama.SetPenalty(zf(params.RepeatPenalty, llama.DefaultOptions.Penalty)),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	return po
}
