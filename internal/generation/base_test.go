package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBase_ConcurrentInitializeLoadsOnce(t *testing.T) {
	rt := newFakeRuntime()
	rt.started = make(chan string, 16)
	rt.baseRelease = make(chan struct{})
	s, _ := newTestService(t, rt, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Base().Initialize(context.Background())
		}()
	}
	recvName(t, rt.started)
	if got := s.Snapshot().State; got != StateLoading {
		t.Fatalf("state during load = %q", got)
	}
	close(rt.baseRelease)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Initialize: %v", err)
		}
	}
	if base, _ := rt.counts(); base != 1 {
		t.Fatalf("base loads = %d, want 1", base)
	}
	if !s.Ready() || s.Base().Loads() != 1 {
		t.Fatalf("expected ready with one load")
	}
}

func TestBase_WaiterCanAbandon(t *testing.T) {
	rt := newFakeRuntime()
	rt.started = make(chan string, 4)
	rt.baseRelease = make(chan struct{})
	s, _ := newTestService(t, rt, nil)

	done := make(chan error, 1)
	go func() { done <- s.Base().Initialize(context.Background()) }()
	recvName(t, rt.started)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.Base().Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(rt.baseRelease)
	if err := <-done; err != nil {
		t.Fatalf("loader: %v", err)
	}
	if !s.Ready() {
		t.Fatalf("load should complete after the waiter gave up")
	}
}

func TestBase_FailureIsRetryable(t *testing.T) {
	rt := newFakeRuntime()
	rt.baseErr = errors.New("weights missing")
	s, pub := newTestService(t, rt, nil)

	err := s.Base().Initialize(context.Background())
	if !IsModelLoad(err) {
		t.Fatalf("expected ModelLoadError, got %v", err)
	}
	snap := s.Snapshot()
	if snap.State != StateError || snap.Err == "" {
		t.Fatalf("unexpected snapshot after failure: %+v", snap)
	}
	if s.Ready() {
		t.Fatalf("must not be ready after failure")
	}

	rt.setBaseErr(nil)
	if err := s.Base().Initialize(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if base, _ := rt.counts(); base != 2 {
		t.Fatalf("base loads = %d, want 2", base)
	}
	if s.Snapshot().State != StateReady {
		t.Fatalf("expected ready after retry")
	}
	if pub.Count(EventBaseLoadError) != 1 || pub.Count(EventBaseLoadDone) != 1 {
		t.Fatalf("unexpected events: %+v", pub.Events())
	}
}

func TestBase_FinalizeResets(t *testing.T) {
	rt := newFakeRuntime()
	s, _ := newTestService(t, rt, nil)
	if s.Snapshot().State != StateUninitialized {
		t.Fatalf("expected uninitialized before first use")
	}
	if _, err := s.Base().Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Base().LoadedAt().IsZero() {
		t.Fatalf("LoadedAt not set")
	}
	if err := s.Base().Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if s.Ready() || rt.closedCount("base.gguf") != 1 {
		t.Fatalf("finalize should close and reset")
	}
	if err := s.Base().Finalize(); err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if _, err := s.Base().Get(context.Background()); err != nil {
		t.Fatalf("Get after finalize: %v", err)
	}
	if base, _ := rt.counts(); base != 2 {
		t.Fatalf("base loads = %d, want 2", base)
	}
}

func TestNew_EmptySource(t *testing.T) {
	_, err := New(Config{Source: ModelSource{Path: "  "}, Runtime: newFakeRuntime()})
	if !IsModelLoad(err) || !errors.Is(err, ErrEmptySource) {
		t.Fatalf("expected ModelLoadError wrapping ErrEmptySource, got %v", err)
	}
}

func TestBase_StateOnlyLoadingDuringLoad(t *testing.T) {
	rt := newFakeRuntime()
	rt.started = make(chan string, 1)
	rt.baseRelease = make(chan struct{})
	s, _ := newTestService(t, rt, nil)

	done := make(chan error, 1)
	go func() { done <- s.Base().Initialize(context.Background()) }()
	recvName(t, rt.started)
	if st := s.Snapshot().State; st != StateLoading {
		t.Fatalf("expected loading while LoadBase runs, got %s", st)
	}
	close(rt.baseRelease)
	if err := <-done; err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Finalize holds the same semaphore while it tears the model down.
	s.Base().loadCh <- struct{}{}
	s.Base().model.Store(nil)
	st := s.Snapshot().State
	<-s.Base().loadCh
	if st != StateUninitialized {
		t.Fatalf("expected uninitialized during teardown, got %s", st)
	}
}
