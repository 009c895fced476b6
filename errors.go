package conduit

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// Pipeline error kinds. A *PipelineError always matches exactly one of them
// through errors.Is.
var (
	ErrOversizedBody = errors.New("request body too large")
	ErrMalformedBody = errors.New("malformed request body")
	ErrHandlerFault  = errors.New("handler fault")
	ErrRouteNotFound = errors.New("route not found")
)

var (
	// ErrDuplicateRoute is returned when a (method, path) pair is registered twice.
	ErrDuplicateRoute = errors.New("duplicate route")
	// ErrInvalidRoute is returned for routes with an empty method, empty path or nil handler.
	ErrInvalidRoute = errors.New("invalid route")
)

// PipelineError describes a request that could not be carried through the
// pipeline. Kind is one of ErrOversizedBody, ErrMalformedBody, ErrHandlerFault
// or ErrRouteNotFound; Err, when set, holds the underlying cause.
type PipelineError struct {
	Kind   error
	Method string
	Path   string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Kind)
}

func (e *PipelineError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
