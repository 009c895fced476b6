package http

import (
	"net/http"
	"time"
)

// responseWriter decorates an http.ResponseWriter for the pipeline.
//
// The status line is write-once: the first WriteHeader (or the implicit 200
// of the first Write) fixes it and later WriteHeader calls are dropped.
// It records what was sent so outer steps can observe the final outcome.
type responseWriter struct {
	w           http.ResponseWriter
	status      int
	wroteHeader bool
	bytes       int64
	start       time.Time
}

// wrapWriter returns w if it is already a pipeline writer, otherwise a new
// decorator around it.
func wrapWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{w: w, start: time.Now()}
}

func (w *responseWriter) Header() http.Header { return w.w.Header() }

func (w *responseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = statusCode
	w.w.WriteHeader(statusCode)
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.w.Write(p)
	w.bytes += int64(n)
	return n, err
}

// Started reports whether the status line has been committed.
func (w *responseWriter) Started() bool { return w.wroteHeader }

// Status returns the committed status, or 200 when the handler returned
// without writing anything (net/http sends 200 in that case).
func (w *responseWriter) Status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.status
}

// BytesWritten returns the number of body bytes written.
func (w *responseWriter) BytesWritten() int64 { return w.bytes }

// Unwrap returns the underlying ResponseWriter for http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.w }

// Flush implements http.Flusher if supported by the underlying ResponseWriter.
func (w *responseWriter) Flush() {
	if f, ok := w.w.(http.Flusher); ok {
		if !w.wroteHeader {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}
