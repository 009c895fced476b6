// Package lifecycle guards the process that hosts the HTTP server.
//
// A Guard owns the listener and the *http.Server and decides when the
// process ends and with which exit code:
//
//   - SIGINT, SIGTERM, Guard.Shutdown or cancellation of the Run context start
//     a graceful shutdown. In-flight requests get Options.GracePeriod to
//     finish; the exit code is 0 if they do and 1 if the server has to be
//     closed forcibly.
//   - A failure reported through Guard.Fault, or an error or panic in a task
//     started with Guard.Go, is logged and, after Options.FlushDelay, closes
//     the server with exit code 1. The process never keeps serving after a
//     fault.
//   - Failing to bind the address (including EADDRINUSE) exits with 1.
//
// Panics raised in request handlers are contained by the request pipeline.
// Work that leaves the request goroutine must be started with Guard.Go;
// panics in goroutines started any other way cannot be recovered by Go and
// terminate the process.
//
// Typical use:
//
//	guard := lifecycle.New(server, lifecycle.Options{Logger: logger})
//	os.Exit(guard.Run(ctx))
package lifecycle
