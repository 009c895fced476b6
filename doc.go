// Package conduit provides the building blocks of a small production-style
// HTTP server: a size-limited JSON body reader, an immutable exact-match route
// table, and the user service that backs the demo API.
//
// # Key Components
//
//   - ReadBody / ParseBody: incremental body accumulation with a hard size
//     limit, and JSON parsing where an empty payload is an empty object
//   - RouteTable: method → path → handler, built once at startup and
//     read-only afterwards; duplicate registrations are rejected
//   - PipelineError: tagged failures (oversized body, malformed body,
//     handler fault, route not found) carrying method and path
//   - UserService: presence-checked user creation over a pluggable UserRepo
//
// # Example Usage
//
//	table, err := conduit.NewRouteTable(
//	    conduit.Route{Method: "GET", Path: "/api/health", Handler: health},
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h, err := table.Resolve("GET", "/api/health")
//
// See the http package for the middleware chain and request pipeline, and the
// lifecycle package for signal handling and graceful shutdown.
package conduit
