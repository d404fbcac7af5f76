package generation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"adapterd/internal/common/fsutil"
)

// ErrAdapterNotLoaded is returned by Unload for a checkpoint that is not cached.
var ErrAdapterNotLoaded = errors.New("adapter not loaded")

type baseProvider interface {
	Get(ctx context.Context) (*BaseModel, error)
}

// cacheEntry is the cache's mutable bookkeeping around an immutable handle.
// lastUsed, pins and closing are guarded by AdapterCache.mu. Once closing
// is set the entry is out of the map and the model is closed by whoever
// drops the last pin.
type cacheEntry struct {
	handle   *AdapterHandle
	gate     *gate
	lastUsed time.Time
	pins     int
	estMB    int
	closing  bool

	closed   chan struct{}
	closeErr error // valid after closed is closed
}

func newCacheEntry(h *AdapterHandle, g *gate, estMB int) *cacheEntry {
	return &cacheEntry{handle: h, gate: g, lastUsed: h.LoadedAt, estMB: estMB, closed: make(chan struct{})}
}

// retireLocked marks e closing and reports whether it is idle, in which
// case the caller must close it. c.mu must be held and e already removed
// from c.entries.
func (e *cacheEntry) retireLocked() bool {
	e.closing = true
	return e.pins == 0
}

// closeModel closes the adapter model exactly once per retired entry.
func (e *cacheEntry) closeModel() error {
	e.closeErr = e.handle.Model.Close()
	close(e.closed)
	return e.closeErr
}

// AdapterCache maps checkpoint references to loaded adapter models. For a
// given reference concurrent callers observe exactly one load and all
// receive the same handle or the same error. Failed loads are not cached.
type AdapterCache struct {
	rt   Runtime
	base baseProvider
	pub  EventPublisher
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]*cacheEntry
	group   singleflight.Group
	// loadSem serializes loads across all keys when non-nil.
	loadSem chan struct{}

	maxAdapters  int
	queueDepth   int
	maxWait      time.Duration
	drainTimeout time.Duration

	loads     atomic.Uint64
	evictions atomic.Uint64
}

type cacheOptions struct {
	maxAdapters    int
	serializeLoads bool
	queueDepth     int
	maxWait        time.Duration
	drainTimeout   time.Duration
}

func newAdapterCache(rt Runtime, base baseProvider, pub EventPublisher, log zerolog.Logger, o cacheOptions) *AdapterCache {
	c := &AdapterCache{
		rt:           rt,
		base:         base,
		pub:          pub,
		log:          log,
		entries:      make(map[string]*cacheEntry),
		maxAdapters:  o.maxAdapters,
		queueDepth:   o.queueDepth,
		maxWait:      o.maxWait,
		drainTimeout: o.drainTimeout,
	}
	if o.serializeLoads {
		c.loadSem = make(chan struct{}, 1)
	}
	return c
}

// GetOrLoad returns the handle for ref, loading it on first use. The
// handle is not pinned: eviction may close it once it is idle.
func (c *AdapterCache) GetOrLoad(ctx context.Context, ref string) (*AdapterHandle, error) {
	e, err := c.entry(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	return e.handle, nil
}

// Acquire is GetOrLoad plus a pin that keeps the handle from being
// evicted until release is called.
func (c *AdapterCache) Acquire(ctx context.Context, ref string) (*AdapterHandle, func(), error) {
	e, err := c.entry(ctx, ref, true)
	if err != nil {
		return nil, func() {}, err
	}
	return e.handle, c.releaser(e), nil
}

func (c *AdapterCache) releaser(e *cacheEntry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			e.pins--
			e.lastUsed = time.Now()
			last := e.closing && e.pins == 0
			c.mu.Unlock()
			if last {
				if err := e.closeModel(); err != nil {
					c.log.Warn().Str("event", EventAdapterUnload).Str("checkpoint", e.handle.Checkpoint).Err(err).Msg("close drained adapter")
				}
			}
		})
	}
}

func (c *AdapterCache) entry(ctx context.Context, ref string, pin bool) (*cacheEntry, error) {
	if ref == "" {
		return nil, &AdapterLoadError{Checkpoint: ref, Err: errors.New("empty checkpoint reference")}
	}
	for {
		if e := c.lookup(ref, pin); e != nil {
			return e, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ch := c.group.DoChan(ref, func() (any, error) {
			return c.load(context.WithoutCancel(ctx), ref)
		})
		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			// Only the wait is abandoned; the load completes for other callers.
			return nil, ctx.Err()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		e := res.Val.(*cacheEntry)
		if !pin || c.pinIfPresent(ref, e) {
			return e, nil
		}
		// Evicted between load and pin; go around again.
	}
}

// lookup returns the cached entry for ref, touching (and optionally
// pinning) it.
func (c *AdapterCache) lookup(ref string, pin bool) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[ref]
	if e == nil {
		return nil
	}
	e.lastUsed = time.Now()
	if pin {
		e.pins++
	}
	return e
}

func (c *AdapterCache) pinIfPresent(ref string, e *cacheEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[ref] != e {
		return false
	}
	e.pins++
	e.lastUsed = time.Now()
	return true
}

// load runs at most once per ref at a time (singleflight).
func (c *AdapterCache) load(ctx context.Context, ref string) (*cacheEntry, error) {
	c.mu.Lock()
	e := c.entries[ref]
	c.mu.Unlock()
	if e != nil {
		return e, nil
	}

	base, err := c.base.Get(ctx)
	if err != nil {
		return nil, err
	}
	if c.loadSem != nil {
		c.loadSem <- struct{}{}
		defer func() { <-c.loadSem }()
	}
	c.evictOverCapacity(1, "")

	start := time.Now()
	c.log.Info().Str("event", EventAdapterLoadStart).Str("checkpoint", ref).Msg("loading adapter")
	c.pub.Publish(Event{Name: EventAdapterLoadStart, Key: ref, Fields: map[string]any{}})
	m, err := c.rt.LoadAdapter(ctx, base.Model, base.Source, ref)
	if err != nil {
		c.log.Error().Str("event", EventAdapterLoadError).Str("checkpoint", ref).Err(err).Msg("adapter load failed")
		c.pub.Publish(Event{Name: EventAdapterLoadError, Key: ref, Fields: map[string]any{"error": err.Error()}})
		if IsDependencyUnavailable(err) {
			return nil, err
		}
		return nil, &AdapterLoadError{Checkpoint: ref, Err: err}
	}
	e = newCacheEntry(
		&AdapterHandle{Checkpoint: ref, Model: m, LoadedAt: time.Now()},
		newGate(c.queueDepth, c.maxWait),
		fsutil.SizeMB(ref),
	)
	c.mu.Lock()
	c.entries[ref] = e
	c.mu.Unlock()
	c.loads.Add(1)
	c.evictOverCapacity(0, ref)

	dur := time.Since(start)
	c.log.Info().Str("event", EventAdapterLoadDone).Str("checkpoint", ref).Dur("dur", dur).Msg("adapter ready")
	c.pub.Publish(Event{Name: EventAdapterLoadDone, Key: ref, Fields: map[string]any{"dur_ms": int(dur / time.Millisecond)}})
	return e, nil
}

// Unload removes ref from the cache and closes its model once no
// generation holds it. It waits up to the drain timeout for pinned users;
// past that it returns and the last user closes the model on release.
func (c *AdapterCache) Unload(ref string) error {
	c.mu.Lock()
	e := c.entries[ref]
	if e == nil {
		c.mu.Unlock()
		return ErrAdapterNotLoaded
	}
	delete(c.entries, ref)
	idle := e.retireLocked()
	pins := e.pins
	c.mu.Unlock()

	c.pub.Publish(Event{Name: EventAdapterUnload, Key: ref, Fields: map[string]any{}})
	if idle {
		return e.closeModel()
	}
	timer := time.NewTimer(c.drainTimeout)
	defer timer.Stop()
	select {
	case <-e.closed:
		return e.closeErr
	case <-timer.C:
		c.log.Warn().Str("event", EventAdapterUnload).Str("checkpoint", ref).Int("pins", pins).Msg("unload drain timeout; close deferred to last user")
		return nil
	}
}

// Close empties the cache. Idle models are closed now; models still in
// use are closed when their last user releases them.
func (c *AdapterCache) Close() error {
	c.mu.Lock()
	var idle []*cacheEntry
	for ref, e := range c.entries {
		delete(c.entries, ref)
		if e.retireLocked() {
			idle = append(idle, e)
		}
	}
	c.mu.Unlock()
	var errs []error
	for _, e := range idle {
		if err := e.closeModel(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of cached adapters.
func (c *AdapterCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Loads returns the number of successful adapter loads.
func (c *AdapterCache) Loads() uint64 { return c.loads.Load() }

// Evictions returns the number of adapters evicted for capacity.
func (c *AdapterCache) Evictions() uint64 { return c.evictions.Load() }
