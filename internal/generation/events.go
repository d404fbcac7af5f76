package generation

// Event represents a base model, adapter or generation lifecycle event.
// Key is the checkpoint reference or base model path it concerns.
type Event struct {
	Name   string
	Key    string
	Fields map[string]any
}

// Event names published by the generation layer.
const (
	EventBaseLoadStart    = "base_load_start"
	EventBaseLoadDone     = "base_load_done"
	EventBaseLoadError    = "base_load_error"
	EventBaseFinalize     = "base_finalize"
	EventAdapterLoadStart = "adapter_load_start"
	EventAdapterLoadDone  = "adapter_load_done"
	EventAdapterLoadError = "adapter_load_error"
	EventAdapterEvict     = "adapter_evict"
	EventAdapterUnload    = "adapter_unload"
	EventGenerateDone     = "generate_done"
	EventGenerateError    = "generate_error"
	EventUnsupported      = "adapter_unsupported"
)

// EventPublisher receives events. Implementations should be lightweight
// and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// multiPublisher fans an event out to several publishers.
type multiPublisher []EventPublisher

func (m multiPublisher) Publish(e Event) {
	for _, p := range m {
		p.Publish(e)
	}
}

// Publishers combines publishers into one; nil entries are skipped.
func Publishers(ps ...EventPublisher) EventPublisher {
	out := make(multiPublisher, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return noopPublisher{}
	}
	return out
}
