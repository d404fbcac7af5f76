package generation

import (
	"errors"
	"fmt"
)

// ErrEmptySource is returned when the configured base model source is blank.
var ErrEmptySource = errors.New("model source is empty")

// ModelLoadError signals the base model could not be loaded (missing,
// unauthorized or corrupt weights, or no runtime available).
type ModelLoadError struct {
	Source string
	Err    error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model load %q: %v", e.Source, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// AdapterLoadError signals a checkpoint that is invalid or incompatible
// with the base model.
type AdapterLoadError struct {
	Checkpoint string
	Err        error
}

func (e *AdapterLoadError) Error() string {
	return fmt.Sprintf("adapter load %q: %v", e.Checkpoint, e.Err)
}

func (e *AdapterLoadError) Unwrap() error { return e.Err }

// UnsupportedAdapterError is returned for an adapter identity that matches
// no supported id and cannot be resolved to a checkpoint.
type UnsupportedAdapterError struct{ ID string }

func (e *UnsupportedAdapterError) Error() string { return "adapter not supported: " + e.ID }

// RuntimeGenerationError wraps a failure of the inference call itself.
type RuntimeGenerationError struct {
	Model string
	Err   error
}

func (e *RuntimeGenerationError) Error() string {
	return fmt.Sprintf("generation on %q: %v", e.Model, e.Err)
}

func (e *RuntimeGenerationError) Unwrap() error { return e.Err }

// Admission stages at which a request can be turned away.
const (
	BusyQueue    = "queue"    // no queue slot freed up in time
	BusyInflight = "inflight" // queued, but the in-flight slot stayed taken
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ model, stage string }

func (e tooBusyError) Error() string { return "too busy: " + e.model }

// dependencyUnavailableError signals a missing runtime dependency (e.g.
// a binary built without llama.cpp) so callers can report 503.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsModelLoad reports whether err is (or wraps) a ModelLoadError.
func IsModelLoad(err error) bool {
	var e *ModelLoadError
	return errors.As(err, &e)
}

// IsAdapterLoad reports whether err is (or wraps) an AdapterLoadError.
func IsAdapterLoad(err error) bool {
	var e *AdapterLoadError
	return errors.As(err, &e)
}

// IsUnsupportedAdapter reports whether err is an UnsupportedAdapterError.
func IsUnsupportedAdapter(err error) bool {
	var e *UnsupportedAdapterError
	return errors.As(err, &e)
}

// IsRuntimeGeneration reports whether err is a RuntimeGenerationError.
func IsRuntimeGeneration(err error) bool {
	var e *RuntimeGenerationError
	return errors.As(err, &e)
}

// IsTooBusy reports whether err indicates backpressure.
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// BusyStage returns the admission stage of a too-busy error, or "" if err
// is not one.
func BusyStage(err error) string {
	var e tooBusyError
	if !errors.As(err, &e) {
		return ""
	}
	return e.stage
}

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
