package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sagarc03/conduit"
)

// Middleware is one step of the pipeline. A step either calls next exactly
// once or writes a complete response itself and returns without calling it.
type Middleware func(http.Handler) http.Handler

// Chain composes steps so the first one listed runs outermost.
// Nil steps are skipped.
func Chain(steps ...Middleware) chi.Middlewares {
	mws := make(chi.Middlewares, 0, len(steps))
	for _, step := range steps {
		if step != nil {
			mws = append(mws, step)
		}
	}
	return mws
}

// CORSMethods and CORSHeaders are advertised on every response that passes
// through Security.
var (
	CORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	CORSHeaders = []string{"Content-Type"}
)

type CORSConfig struct {
	// AllowedOrigins restricts Access-Control-Allow-Origin. Empty or ["*"]
	// allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (c CORSConfig) anyOrigin() bool {
	return len(c.AllowedOrigins) == 0 || slices.Contains(c.AllowedOrigins, "*")
}

type SecurityConfig struct {
	MaxRequestSize int64
	CORS           CORSConfig
}

// Security rejects requests whose declared Content-Length exceeds
// MaxRequestSize, sets nosniff and CORS headers, and answers OPTIONS requests
// itself with an empty 200.
func Security(cfg SecurityConfig, logger *slog.Logger) Middleware {
	allowMethods := strings.Join(CORSMethods, ", ")
	allowHeaders := strings.Join(CORSHeaders, ", ")

	var originPolicy func(http.Handler) http.Handler
	if !cfg.CORS.anyOrigin() {
		originPolicy = cors.Handler(cors.Options{
			AllowedOrigins:     cfg.CORS.AllowedOrigins,
			AllowedMethods:     CORSMethods,
			AllowedHeaders:     CORSHeaders,
			OptionsPassthrough: true,
		})
	}

	return func(next http.Handler) http.Handler {
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.MaxRequestSize > 0 && r.ContentLength > cfg.MaxRequestSize {
				w.Header().Set("Connection", "close")
				WriteError(logger, w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ReasonRequestTooLarge})
				return
			}

			w.Header().Set("X-Content-Type-Options", "nosniff")
			if originPolicy == nil {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			}
			w.Header().Set("Access-Control-Allow-Methods", allowMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})

		if originPolicy != nil {
			return originPolicy(h)
		}
		return h
	}
}

// RequestID assigns or propagates the X-Request-Id of each request.
func RequestID() Middleware {
	return middleware.RequestID
}

// Logging logs the start of each request and, once the downstream steps and
// handler have finished writing, its status and duration.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := wrapWriter(w)
			reqID := middleware.GetReqID(r.Context())

			logger.Info("request started",
				"method", r.Method,
				"url", r.URL.RequestURI(),
				"request_id", reqID,
			)

			next.ServeHTTP(rw, r)

			// net/http has finished the response once the handler returns
			logger.Info("request completed",
				"method", r.Method,
				"url", r.URL.RequestURI(),
				"request_id", reqID,
				"status", rw.Status(),
				"bytes", rw.BytesWritten(),
				"duration", time.Since(rw.start).String(),
			)
		})
	}
}

// ParseBody reads and parses the payload of POST, PUT and PATCH requests,
// failing with 413 once more than maxBytes have arrived and with 400 on
// malformed JSON. The parsed body is attached to the request context and
// r.Body is replaced with a fresh reader over the raw bytes.
func ParseBody(maxBytes int64, logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !conduit.MethodHasBody(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := conduit.ReadBody(r.Body, maxBytes)
			if err != nil {
				if errors.Is(err, conduit.ErrOversizedBody) {
					logger.Warn("request body too large", "method", r.Method, "path", r.URL.Path, "limit", maxBytes)
					w.Header().Set("Connection", "close")
					WriteError(logger, w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: ReasonRequestTooLarge})
					return
				}
				logger.Warn("read request body", "method", r.Method, "path", r.URL.Path, "error", err)
				WriteError(logger, w, http.StatusBadRequest, ErrorResponse{Error: ReasonInvalidBody})
				return
			}

			body, err := conduit.ParseBody(raw)
			if err != nil {
				logger.Error("JSON parse error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
				WriteError(logger, w, http.StatusBadRequest, ErrorResponse{Error: ReasonInvalidJSON})
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r.WithContext(conduit.WithBody(r.Context(), body)))
		})
	}
}
