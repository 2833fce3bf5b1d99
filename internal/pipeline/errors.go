package pipeline

import (
	"errors"
	"net/http"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string   { return "too busy: " + e.modelID }
func (e tooBusyError) StatusCode() int { return http.StatusTooManyRequests }

// IsTooBusy reports whether err indicates backpressure.
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound returns an error for a model id that is not in the registry.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing runtime (e.g. llama.cpp not built in)
// so the HTTP layer can return 503 instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string   { return e.msg }
func (e dependencyUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// ErrNotLoaded is returned by Generate before a successful Load.
var ErrNotLoaded = errors.New("pipeline not loaded")
