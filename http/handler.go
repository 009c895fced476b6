package http

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/sagarc03/conduit"
)

type Service interface {
	Create(ctx context.Context, in conduit.CreateUser) (conduit.User, error)
	List(ctx context.Context) (conduit.UserList, error)
}

// Background runs work that outlives the request that started it. Failures
// are reported by the implementation, not to the request.
type Background interface {
	Go(name string, fn func(ctx context.Context) error)
}

type HandlerConfig struct {
	// Background receives deferred work. Nil disables the endpoints that need it.
	Background Background
	Logger     *slog.Logger
	// StartedAt is the process start used for uptime. Zero means NewHandler time.
	StartedAt time.Time
	// BackgroundFailAfter delays the failure of the background demo task.
	BackgroundFailAfter time.Duration
}

// Handler serves the demo API.
type Handler struct {
	config  HandlerConfig
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	h := &Handler{
		config:  *config,
		service: service,
		logger:  config.Logger,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.config.StartedAt.IsZero() {
		h.config.StartedAt = time.Now()
	}
	if h.config.BackgroundFailAfter <= 0 {
		h.config.BackgroundFailAfter = 100 * time.Millisecond
	}
	return h
}

// Routes lists every endpoint of the API.
func (h *Handler) Routes() []conduit.Route {
	return []conduit.Route{
		{Method: http.MethodGet, Path: "/", Handler: http.HandlerFunc(h.handleIndex)},
		{Method: http.MethodGet, Path: "/api/health", Handler: http.HandlerFunc(h.handleHealth)},
		{Method: http.MethodGet, Path: "/api/status", Handler: http.HandlerFunc(h.handleStatus)},
		{Method: http.MethodGet, Path: "/api/users", Handler: http.HandlerFunc(h.handleListUsers)},
		{Method: http.MethodPost, Path: "/api/users", Handler: http.HandlerFunc(h.handleCreateUser)},
		{Method: http.MethodGet, Path: "/api/calc", Handler: http.HandlerFunc(h.handleCalc)},
		{Method: http.MethodGet, Path: "/api/error-test", Handler: http.HandlerFunc(h.handleErrorTest)},
		{Method: http.MethodGet, Path: "/api/background-error-test", Handler: http.HandlerFunc(h.handleBackgroundErrorTest)},
	}
}

// Router builds the request pipeline over Routes with the given steps.
func (h *Handler) Router(steps ...Middleware) (*Pipeline, error) {
	table, err := conduit.NewRouteTable(h.Routes()...)
	if err != nil {
		return nil, err
	}
	return NewPipeline(table, PipelineConfig{Steps: steps, Logger: h.logger})
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>conduit</title></head>
<body>
<h1>conduit</h1>
<ul>
  <li><a href="/api/health">/api/health</a> - health check</li>
  <li><a href="/api/status">/api/status</a> - server status</li>
  <li><a href="/api/users">/api/users</a> - users</li>
  <li><a href="/api/calc?x=5&amp;y=3">/api/calc?x=5&amp;y=3</a> - calculator</li>
  <li><a href="/api/error-test">/api/error-test</a> - synchronous handler failure</li>
  <li><a href="/api/background-error-test">/api/background-error-test</a> - background task failure</li>
</ul>
</body>
</html>
`

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	_ = WriteHTML(w, http.StatusOK, indexHTML)
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
	NumGC      uint32 `json:"num_gc"`
}

type HealthResponse struct {
	Status    string      `json:"status"`
	Uptime    float64     `json:"uptime"`
	Memory    MemoryStats `json:"memory"`
	Timestamp string      `json:"timestamp,omitempty"`
}

func readMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		NumGC:      m.NumGC,
	}
}

func (h *Handler) uptime() float64 {
	return time.Since(h.config.StartedAt).Seconds()
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Uptime:    h.uptime(),
		Memory:    readMemoryStats(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, HealthResponse{
		Status: "running",
		Uptime: h.uptime(),
		Memory: readMemoryStats(),
	})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		HandleError(h.logger, w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, users)
}

type CreateUserResponse struct {
	Message string       `json:"message"`
	User    conduit.User `json:"user"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	body, _ := conduit.BodyFromContext(r.Context())

	var in conduit.CreateUser
	if err := body.Decode(&in); err != nil {
		h.logger.Warn("validation failed", "body", body.Value, "error", err)
		HandleError(h.logger, w, conduit.ErrUserFieldsRequired)
		return
	}

	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		if errors.Is(err, conduit.ErrInvalidInput) {
			h.logger.Warn("validation failed", "body", body.Value)
		}
		HandleError(h.logger, w, err)
		return
	}

	h.logger.Info("user created", "user_id", user.ID, "email", user.Email)
	_ = WriteJSON(w, http.StatusCreated, CreateUserResponse{
		Message: "User created successfully",
		User:    user,
	})
}

type CalcResponse struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Sum      any     `json:"sum"`
	Diff     any     `json:"diff"`
	Product  any     `json:"product"`
	Quotient any     `json:"quotient"`
}

// parseOperand treats anything that is not a finite number as zero.
func parseOperand(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// finite maps overflowed results to JSON null.
func finite(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func (h *Handler) handleCalc(w http.ResponseWriter, r *http.Request) {
	x := parseOperand(r.URL.Query().Get("x"))
	y := parseOperand(r.URL.Query().Get("y"))

	resp := CalcResponse{
		X:        x,
		Y:        y,
		Sum:      finite(x + y),
		Diff:     finite(x - y),
		Product:  finite(x * y),
		Quotient: "undefined",
	}
	if y != 0 {
		resp.Quotient = finite(x / y)
	}

	_ = WriteJSON(w, http.StatusOK, resp)
}

// errHandlerTest is raised by the synchronous failure endpoint.
var errHandlerTest = errors.New("test failure raised inside a handler")

func (h *Handler) handleErrorTest(w http.ResponseWriter, r *http.Request) {
	panic(errHandlerTest)
}

// ErrBackgroundTest is the failure reported by the background demo task.
var ErrBackgroundTest = errors.New("test failure raised by a background task")

func (h *Handler) handleBackgroundErrorTest(w http.ResponseWriter, r *http.Request) {
	if h.config.Background == nil {
		WriteError(h.logger, w, http.StatusServiceUnavailable, ErrorResponse{Error: ReasonUnavailable})
		return
	}

	delay := h.config.BackgroundFailAfter
	h.config.Background.Go("background-error-test", func(ctx context.Context) error {
		t := time.NewTimer(delay)
		defer t.Stop()

		select {
		case <-t.C:
			return ErrBackgroundTest
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	_ = WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Background task scheduled; its failure is reported to the process guard",
	})
}
