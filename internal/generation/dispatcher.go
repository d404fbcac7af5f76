package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// target is a request after addressing has been resolved.
type target struct {
	strategy   Strategy
	adapterID  string
	checkpoint string // "" means the base model
	params     SamplingParams
}

// resolve validates addressing without touching the runtime.
func (s *Service) resolve(req Request) (target, error) {
	if req.Mode == AddressByCheckpoint {
		s.mu.RLock()
		bound, ok := s.adapters[req.AdapterID]
		s.mu.RUnlock()
		if !ok {
			return target{}, &UnsupportedAdapterError{ID: req.AdapterID}
		}
		ref := req.Checkpoint
		if ref == "" {
			ref = bound
		}
		if ref == "" {
			return target{}, &AdapterLoadError{Err: fmt.Errorf("no checkpoint for adapter %q", req.AdapterID)}
		}
		return target{
			strategy:   s.strategies.def,
			adapterID:  req.AdapterID,
			checkpoint: ref,
			params:     withDefaults(req.Params, AddressByCheckpoint),
		}, nil
	}

	st := s.strategies.Resolve(req.Brand)
	// An explicit checkpoint wins over the brand's bound one.
	ref := req.Checkpoint
	if ref == "" {
		s.mu.RLock()
		ref = s.brands[normalizeName(req.Brand)]
		s.mu.RUnlock()
	}
	return target{
		strategy:   st,
		adapterID:  st.Name(),
		checkpoint: ref,
		params:     withDefaults(req.Params, AddressByBrand),
	}, nil
}

// Generate runs one request end to end. It never panics: every failure,
// including a runtime panic, is reported through Result.Err.
func (s *Service) Generate(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	res.AdapterID = req.AdapterID
	defer func() {
		if p := recover(); p != nil {
			res.Text = ""
			res.Err = &RuntimeGenerationError{Model: res.Checkpoint, Err: fmt.Errorf("panic: %v", p)}
		}
		res.Duration = time.Since(start)
		s.report(req, res)
	}()

	t, err := s.resolve(req)
	if err != nil {
		res.Err = err
		return res
	}
	res.AdapterID = t.adapterID
	res.Strategy = t.strategy.Name()
	res.Checkpoint = t.checkpoint
	res.Text, res.Err = s.run(ctx, t, req.Prompt)
	return res
}

func (s *Service) run(ctx context.Context, t target, prompt string) (string, error) {
	base, err := s.base.Get(ctx)
	if err != nil {
		return "", err
	}
	model, g, name := base.Model, s.base.gate, base.Source.Path
	if t.checkpoint != "" {
		e, err := s.cache.entry(ctx, t.checkpoint, true)
		if err != nil {
			return "", err
		}
		defer s.cache.releaser(e)()
		model, g, name = e.handle.Model, e.gate, t.checkpoint
	}

	prepared := t.strategy.Prepare(prompt)
	exit, err := g.enter(ctx, name)
	if err != nil {
		return "", err
	}
	defer exit()
	// Inference is not safely preemptible; cancellation stops at admission.
	raw, err := model.Generate(context.WithoutCancel(ctx), prepared, t.params)
	if err != nil {
		return "", &RuntimeGenerationError{Model: name, Err: err}
	}
	return t.strategy.PostProcess(strings.TrimSpace(truncateAtStop(raw, t.params.Stop))), nil
}

// GenerateResponse is the direct in-process entry point: brand addressing
// with explicit token budget and temperature.
func (s *Service) GenerateResponse(ctx context.Context, brand, prompt string, maxTokens int, temperature float64) (string, error) {
	res := s.Generate(ctx, ByBrand(prompt, brand).WithParams(SamplingParams{
		MaxTokens:   maxTokens,
		Temperature: float32(temperature),
	}))
	return res.Text, res.Err
}

// truncateAtStop cuts text at the earliest occurrence of any stop sequence.
func truncateAtStop(text string, stops []string) string {
	cut := len(text)
	for _, st := range stops {
		if st == "" {
			continue
		}
		if i := strings.Index(text, st); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}

func (s *Service) report(req Request, res Result) {
	fields := map[string]any{
		"mode":     req.Mode.String(),
		"strategy": res.Strategy,
		"dur_ms":   int(res.Duration / time.Millisecond),
	}
	if res.Err == nil {
		s.log.Debug().Str("event", EventGenerateDone).Str("adapter", res.AdapterID).Str("checkpoint", res.Checkpoint).Dur("dur", res.Duration).Msg("generate")
		s.pub.Publish(Event{Name: EventGenerateDone, Key: res.Checkpoint, Fields: fields})
		return
	}
	kind := ErrorKind(res.Err)
	fields["kind"] = kind
	fields["error"] = res.Err.Error()
	if kind == "unsupported" {
		s.log.Info().Str("event", EventUnsupported).Str("adapter", req.AdapterID).Msg("adapter not supported")
		s.pub.Publish(Event{Name: EventUnsupported, Key: req.AdapterID, Fields: fields})
		return
	}
	s.log.Warn().Str("event", EventGenerateError).Str("kind", kind).Str("adapter", res.AdapterID).Err(res.Err).Msg("generate failed")
	s.pub.Publish(Event{Name: EventGenerateError, Key: res.Checkpoint, Fields: fields})
}

// ErrorKind classifies err into a short label for metrics and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsUnsupportedAdapter(err):
		return "unsupported"
	case IsTooBusy(err):
		return "too_busy"
	case IsDependencyUnavailable(err):
		return "dependency"
	case IsModelLoad(err):
		return "model_load"
	case IsAdapterLoad(err):
		return "adapter_load"
	case IsRuntimeGeneration(err):
		return "runtime"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
