// Package generation turns (prompt, adapter identity, checkpoint reference)
// into generated text on top of one shared base model. It is structured
// into small files by concern:
//
//   - service.go: Service type, constructor, Preload/Close, simple getters.
//   - config.go: Config and package defaults; New applies defaults.
//   - types.go: BaseModel, AdapterHandle, SamplingParams, Result.
//   - errors.go: error types and helpers (IsModelLoad, IsUnsupportedAdapter, ...).
//   - runtime.go: Runtime/Model contract for the inference engine.
//   - base.go: lazy single-instance base model registry.
//   - cache.go: adapter cache with at-most-once load per checkpoint.
//   - evict.go: LRU eviction of idle adapter handles.
//   - admission.go: per-model queueing, one generation in flight.
//   - strategy.go: brand strategies (prepare/post-process pairs).
//   - request.go: the two addressing modes and their defaults.
//   - dispatcher.go: Generate and GenerateResponse entry points.
//   - status_report.go: Status, Snapshot and Adapters reporting.
//   - events.go, eventpub_memory.go: lifecycle events and an in-memory publisher.
//
// Build tags and runtimes:
//
//   - In-process llama: uses go-llama.cpp. Enabled with `-tags=llama`.
//     Files: runtime_llama.go, llama_cgo.go (linker rpath hints).
//     A no-CGO stub exists when the tag is not set: runtime_llama_stub.go.
//
// External packages should use public methods only (New, Generate,
// GenerateResponse, Status, Adapters, Unload, Close). Internal types are subject to change.
package generation
