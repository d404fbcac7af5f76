package httpapi

import (
	"context"
	"testing"
	"time"

	"adapterd/internal/generation"
)

// busyErr returns a real too-busy error from an admission gate that is full.
func busyErr() error {
	rt := &holdRuntime{hold: make(chan struct{})}
	svc, err := generation.New(generation.Config{
		Source:        generation.ModelSource{Path: "base.gguf"},
		Runtime:       rt,
		MaxQueueDepth: 1,
		MaxWait:       10 * time.Millisecond,
	})
	if err != nil {
		return err
	}
	started := make(chan struct{})
	rt.started = started
	done := make(chan struct{})
	go func() {
		svc.Generate(context.Background(), generation.ByBrand("a", "default"))
		close(done)
	}()
	<-started
	res := svc.Generate(context.Background(), generation.ByBrand("b", "default"))
	close(rt.hold)
	<-done
	_ = svc.Close()
	return res.Err
}

type holdRuntime struct {
	hold    chan struct{}
	started chan struct{}
}

func (h *holdRuntime) LoadBase(ctx context.Context, src generation.ModelSource) (generation.Model, error) {
	return holdModel{h}, nil
}

func (h *holdRuntime) LoadAdapter(ctx context.Context, base generation.Model, src generation.ModelSource, ref string) (generation.Model, error) {
	return holdModel{h}, nil
}

type holdModel struct{ h *holdRuntime }

func (m holdModel) Generate(ctx context.Context, prompt string, p generation.SamplingParams) (string, error) {
	m.h.started <- struct{}{}
	<-m.h.hold
	return prompt, nil
}

func (holdModel) Close() error { return nil }

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
