// Package http provides the request pipeline for conduit.
//
// A Pipeline runs an ordered chain of middleware steps, resolves the request
// against an exact-match conduit.RouteTable and invokes the handler inside a
// failure boundary.
//
// # Steps
//
// DefaultSteps returns the production ordering:
//
//  1. Security: rejects a declared Content-Length above the limit (413),
//     sets nosniff and CORS headers, answers OPTIONS with an empty 200
//  2. RequestID: assigns or propagates X-Request-Id
//  3. Logging: logs request start, then status and duration once the
//     response has been written
//  4. ParseBody: reads POST/PUT/PATCH payloads up to the limit (413) and
//     parses them as JSON (400 "Invalid JSON format")
//
// Any step may end the request by writing a response without calling next;
// later steps and the route handler then never run.
//
// # Errors
//
// All error responses are JSON objects with an "error" field. Unknown routes
// get 404 with the method and path echoed back. A panicking handler is logged
// with its stack and answered with a generic 500; the panic value never
// reaches the client.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{Background: guard}, service)
//	pipeline, err := handler.Router(http.DefaultSteps(http.SecurityConfig{
//	    MaxRequestSize: 1 << 20,
//	}, logger)...)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := &nethttp.Server{Addr: ":3003", Handler: pipeline}
package http
