package httpapi

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"adapterd/internal/generation"
)

func TestMetricsPublisher_CountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewMetricsPublisher(reg)

	p.Publish(generation.Event{Name: generation.EventAdapterLoadDone, Key: "/ckpt/a", Fields: map[string]any{"dur_ms": 1200}})
	p.Publish(generation.Event{Name: generation.EventGenerateDone, Fields: map[string]any{"dur_ms": 30}})
	p.Publish(generation.Event{Name: generation.EventGenerateError, Fields: map[string]any{"dur_ms": 5, "kind": "adapter_load"}})
	p.Publish(generation.Event{Name: generation.EventAdapterEvict, Key: "/ckpt/b"})
	p.Publish(generation.Event{Name: generation.EventAdapterEvict, Key: "/ckpt/c"})

	if got := testutil.ToFloat64(p.events.WithLabelValues(generation.EventAdapterEvict)); got != 2 {
		t.Fatalf("evict events = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.events.WithLabelValues(generation.EventGenerateDone)); got != 1 {
		t.Fatalf("generate_done events = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(p.genSeconds); n != 2 {
		t.Fatalf("expected ok and adapter_load outcome series, got %d", n)
	}
	if n := testutil.CollectAndCount(p.loadSeconds); n != 1 {
		t.Fatalf("expected one load series, got %d", n)
	}
}

func TestMetricsPublisher_WiredIntoService(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewMetricsPublisher(reg)
	svc, err := generation.New(generation.Config{
		Source:    generation.ModelSource{Path: "base.gguf"},
		Runtime:   &holdRuntime{hold: closedChan(), started: make(chan struct{}, 4)},
		Publisher: p,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svc.Close()
	svc.Generate(testCtx(t), generation.ByCheckpoint("T", "not_a_real_adapter", "/x"))
	svc.Generate(testCtx(t), generation.ByBrand("T", "documentation"))
	if got := testutil.ToFloat64(p.events.WithLabelValues(generation.EventUnsupported)); got != 1 {
		t.Fatalf("unsupported events = %v", got)
	}
	if got := testutil.ToFloat64(p.events.WithLabelValues(generation.EventBaseLoadDone)); got != 1 {
		t.Fatalf("base load events = %v", got)
	}
	if got := testutil.ToFloat64(p.events.WithLabelValues(generation.EventGenerateDone)); got != 1 {
		t.Fatalf("generate_done events = %v", got)
	}
}
