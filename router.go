package conduit

import (
	"fmt"
	"net/http"
	"sort"
)

// Route binds a handler to an exact (method, path) pair.
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

// RouteTable is an immutable two-level mapping from method to path to handler.
//
// Lookups are exact string comparisons: no patterns, no wildcards, no
// trailing-slash or case normalization. The table is built once by
// NewRouteTable and is safe for concurrent reads without locking.
type RouteTable struct {
	routes map[string]map[string]http.Handler
	count  int
}

// NewRouteTable builds a table from routes.
//
// Registering the same (method, path) twice is a configuration error and
// yields ErrDuplicateRoute; routes with an empty method or path, or a nil
// handler, yield ErrInvalidRoute.
func NewRouteTable(routes ...Route) (*RouteTable, error) {
	t := &RouteTable{routes: make(map[string]map[string]http.Handler)}

	for _, r := range routes {
		if r.Method == "" || r.Path == "" || r.Handler == nil {
			return nil, fmt.Errorf("new route table: %w: %q %q", ErrInvalidRoute, r.Method, r.Path)
		}

		byPath := t.routes[r.Method]
		if byPath == nil {
			byPath = make(map[string]http.Handler)
			t.routes[r.Method] = byPath
		}

		if _, exists := byPath[r.Path]; exists {
			return nil, fmt.Errorf("new route table: %w: %s %s", ErrDuplicateRoute, r.Method, r.Path)
		}

		byPath[r.Path] = r.Handler
		t.count++
	}

	return t, nil
}

// Resolve returns the handler registered for method and path. The path must
// already have its query string and fragment removed. When nothing matches,
// the error is a *PipelineError of kind ErrRouteNotFound.
func (t *RouteTable) Resolve(method, path string) (http.Handler, error) {
	if h, ok := t.routes[method][path]; ok {
		return h, nil
	}
	return nil, &PipelineError{Kind: ErrRouteNotFound, Method: method, Path: path}
}

// Len returns the number of registered routes.
func (t *RouteTable) Len() int {
	return t.count
}

// Routes lists the registered routes ordered by path, then method.
func (t *RouteTable) Routes() []Route {
	out := make([]Route, 0, t.count)
	for method, byPath := range t.routes {
		for path, h := range byPath {
			out = append(out, Route{Method: method, Path: path, Handler: h})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})

	return out
}
