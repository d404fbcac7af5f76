package generation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// BaseRegistry owns the single base model instance. Initialization is lazy,
// idempotent and safe for concurrent callers: one caller loads while the
// others wait (or give up when their context ends).
type BaseRegistry struct {
	rt     Runtime
	source ModelSource
	pub    EventPublisher
	log    zerolog.Logger

	// loadCh is a size-1 semaphore guarding load and finalize; unlike a
	// mutex, waiting on it can be abandoned via ctx.
	loadCh  chan struct{}
	model   atomic.Pointer[BaseModel]
	loads   atomic.Uint64
	mu      sync.RWMutex
	loading bool
	lastErr string
	gate    *gate
}

func newBaseRegistry(rt Runtime, src ModelSource, pub EventPublisher, log zerolog.Logger, g *gate) *BaseRegistry {
	return &BaseRegistry{
		rt:     rt,
		source: src,
		pub:    pub,
		log:    log,
		loadCh: make(chan struct{}, 1),
		gate:   g,
	}
}

// Initialize loads the base model unless it is already loaded. A failed
// load leaves the registry uninitialized so the next call retries.
func (r *BaseRegistry) Initialize(ctx context.Context) error {
	if r.model.Load() != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case r.loadCh <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-r.loadCh }()
	// Another caller may have finished the load while we waited.
	if r.model.Load() != nil {
		return nil
	}
	r.setLoading(true)
	defer r.setLoading(false)

	start := time.Now()
	r.log.Info().Str("event", EventBaseLoadStart).Str("source", r.source.Path).Msg("loading base model")
	r.pub.Publish(Event{Name: EventBaseLoadStart, Key: r.source.Path, Fields: map[string]any{}})
	// The load itself is not preemptible; only waiting honours cancellation.
	m, err := r.rt.LoadBase(context.WithoutCancel(ctx), r.source)
	if err != nil {
		lerr := &ModelLoadError{Source: r.source.Path, Err: err}
		r.mu.Lock()
		r.lastErr = lerr.Error()
		r.mu.Unlock()
		r.log.Error().Str("event", EventBaseLoadError).Err(err).Msg("base model load failed")
		r.pub.Publish(Event{Name: EventBaseLoadError, Key: r.source.Path, Fields: map[string]any{"error": err.Error()}})
		return lerr
	}
	r.model.Store(&BaseModel{Source: r.source, Model: m, LoadedAt: time.Now()})
	r.loads.Add(1)
	r.mu.Lock()
	r.lastErr = ""
	r.mu.Unlock()
	dur := time.Since(start)
	r.log.Info().Str("event", EventBaseLoadDone).Dur("dur", dur).Msg("base model ready")
	r.pub.Publish(Event{Name: EventBaseLoadDone, Key: r.source.Path, Fields: map[string]any{"dur_ms": int(dur / time.Millisecond)}})
	return nil
}

// Get returns the base model, initializing it first if needed.
func (r *BaseRegistry) Get(ctx context.Context) (*BaseModel, error) {
	if bm := r.model.Load(); bm != nil {
		return bm, nil
	}
	if err := r.Initialize(ctx); err != nil {
		return nil, err
	}
	return r.model.Load(), nil
}

// Finalize releases the base model and resets the registry. Callers must
// ensure no adapter handle derived from it is still in use.
func (r *BaseRegistry) Finalize() error {
	r.loadCh <- struct{}{}
	defer func() { <-r.loadCh }()
	bm := r.model.Swap(nil)
	if bm == nil {
		return nil
	}
	r.log.Info().Str("event", EventBaseFinalize).Msg("base model released")
	r.pub.Publish(Event{Name: EventBaseFinalize, Key: r.source.Path, Fields: map[string]any{}})
	return bm.Model.Close()
}

// Ready reports whether the base model is loaded.
func (r *BaseRegistry) Ready() bool { return r.model.Load() != nil }

// Source returns the configured model source.
func (r *BaseRegistry) Source() ModelSource { return r.source }

// LoadedAt returns when the current base model was loaded, or the zero
// time if none is loaded.
func (r *BaseRegistry) LoadedAt() time.Time {
	if bm := r.model.Load(); bm != nil {
		return bm.LoadedAt
	}
	return time.Time{}
}

// Loads returns how many times the base model has been loaded.
func (r *BaseRegistry) Loads() uint64 { return r.loads.Load() }

func (r *BaseRegistry) state() (State, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.model.Load() != nil {
		return StateReady, ""
	}
	if r.loading {
		return StateLoading, r.lastErr
	}
	if r.lastErr != "" {
		return StateError, r.lastErr
	}
	return StateUninitialized, ""
}

func (r *BaseRegistry) setLoading(v bool) {
	r.mu.Lock()
	r.loading = v
	r.mu.Unlock()
}
