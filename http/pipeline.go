package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sagarc03/conduit"
)

type PipelineConfig struct {
	// Steps run in order before routing. See DefaultSteps.
	Steps  []Middleware
	Logger *slog.Logger
}

// DefaultSteps returns the production ordering: security checks first, then
// request id and logging around everything downstream, then body parsing.
func DefaultSteps(security SecurityConfig, logger *slog.Logger) []Middleware {
	return []Middleware{
		Security(security, logger),
		RequestID(),
		Logging(logger),
		ParseBody(security.MaxRequestSize, logger),
	}
}

// Pipeline runs the middleware chain, resolves the route and invokes the
// handler inside a failure boundary. It is built once and shared by all
// connections.
type Pipeline struct {
	routes  *conduit.RouteTable
	logger  *slog.Logger
	handler http.Handler
}

func NewPipeline(routes *conduit.RouteTable, cfg PipelineConfig) (*Pipeline, error) {
	if routes == nil {
		return nil, errors.New("new pipeline: route table cannot be nil")
	}

	p := &Pipeline{
		routes: routes,
		logger: cfg.Logger,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.handler = Chain(cfg.Steps...).HandlerFunc(p.dispatch)

	return p, nil
}

func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// Routes returns the table the pipeline dispatches to.
func (p *Pipeline) Routes() *conduit.RouteTable {
	return p.routes
}

func (p *Pipeline) dispatch(w http.ResponseWriter, r *http.Request) {
	rw := wrapWriter(w)

	h, err := p.routes.Resolve(r.Method, r.URL.Path)
	if err != nil {
		p.logger.Warn("route not found", "method", r.Method, "path", r.URL.Path)
		HandleError(p.logger, rw, err)
		return
	}

	p.invoke(h, rw, r)
}

// invoke runs h and converts a panic into a logged handler fault and a
// generic 500. Work that h hands off to other goroutines is not covered.
func (p *Pipeline) invoke(h http.Handler, rw *responseWriter, r *http.Request) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		if v == http.ErrAbortHandler {
			panic(v)
		}

		cause, ok := v.(error)
		if !ok {
			cause = fmt.Errorf("%v", v)
		}
		fault := &conduit.PipelineError{
			Kind:   conduit.ErrHandlerFault,
			Method: r.Method,
			Path:   r.URL.Path,
			Err:    cause,
		}

		p.logger.Error("handler error",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", fault.Error(),
			"stack", string(debug.Stack()),
		)

		if !rw.Started() {
			WriteError(p.logger, rw, http.StatusInternalServerError, ErrorResponse{Error: ReasonInternal})
		}
	}()

	h.ServeHTTP(rw, r)
}
