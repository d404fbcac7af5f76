package generation

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeRuntime is an in-memory Runtime that counts loads and records what
// it was asked to generate.
type fakeRuntime struct {
	mu           sync.Mutex
	baseLoads    int
	adapterLoads map[string]int
	closed       map[string]int
	prompts      []string
	params       []SamplingParams
	models       []string

	baseErr    error
	adapterErr error
	genErr     error
	genPanic   any
	output     func(prompt string) string

	// started receives the model name when a load begins, if non-nil.
	started chan string
	// baseRelease and release block base and adapter loads until closed.
	baseRelease chan struct{}
	release     chan struct{}
	// genStarted/genRelease do the same for Generate.
	genStarted chan struct{}
	genRelease chan struct{}

	active, maxActive int
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{adapterLoads: make(map[string]int), closed: make(map[string]int)}
}

func (f *fakeRuntime) LoadBase(ctx context.Context, src ModelSource) (Model, error) {
	if f.started != nil {
		f.started <- src.Path
	}
	if f.baseRelease != nil {
		<-f.baseRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseLoads++
	if f.baseErr != nil {
		return nil, f.baseErr
	}
	return &fakeModel{rt: f, name: src.Path}, nil
}

func (f *fakeRuntime) LoadAdapter(ctx context.Context, base Model, src ModelSource, ref string) (Model, error) {
	if f.started != nil {
		f.started <- ref
	}
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	f.adapterLoads[ref]++
	if f.adapterErr != nil {
		return nil, f.adapterErr
	}
	return &fakeModel{rt: f, name: ref}, nil
}

func (f *fakeRuntime) setBaseErr(err error) {
	f.mu.Lock()
	f.baseErr = err
	f.mu.Unlock()
}

func (f *fakeRuntime) setAdapterErr(err error) {
	f.mu.Lock()
	f.adapterErr = err
	f.mu.Unlock()
}

func (f *fakeRuntime) counts() (base int, adapters map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.adapterLoads))
	for k, v := range f.adapterLoads {
		out[k] = v
	}
	return f.baseLoads, out
}

func (f *fakeRuntime) closedCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed[name]
}

func (f *fakeRuntime) last() (model, prompt string, params SamplingParams) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return "", "", SamplingParams{}
	}
	n := len(f.prompts) - 1
	return f.models[n], f.prompts[n], f.params[n]
}

type fakeModel struct {
	rt   *fakeRuntime
	name string
}

// Generate echoes the prompt unless the runtime has an output func.
func (m *fakeModel) Generate(ctx context.Context, prompt string, p SamplingParams) (string, error) {
	f := m.rt
	f.mu.Lock()
	f.models = append(f.models, m.name)
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, p)
	genErr, genPanic, output := f.genErr, f.genPanic, f.output
	f.mu.Unlock()
	if f.genStarted != nil {
		f.genStarted <- struct{}{}
	}
	if f.genRelease != nil {
		<-f.genRelease
	}
	if genPanic != nil {
		panic(genPanic)
	}
	if genErr != nil {
		return "", genErr
	}
	if output != nil {
		return output(prompt), nil
	}
	return prompt, nil
}

func (m *fakeModel) Close() error {
	m.rt.mu.Lock()
	m.rt.closed[m.name]++
	m.rt.mu.Unlock()
	return nil
}

// newTestService builds a Service over rt with base model "base.gguf".
func newTestService(t *testing.T, rt *fakeRuntime, mutate func(*Config)) (*Service, *MemoryPublisher) {
	t.Helper()
	pub := NewMemoryPublisher()
	cfg := Config{Source: ModelSource{Path: "base.gguf"}, Runtime: rt, Publisher: pub}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, pub
}

// recvName waits for a load to start or fails the test.
func recvName(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case n := <-ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for load to start")
		return ""
	}
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
