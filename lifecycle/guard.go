package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// Process exit codes returned by Run and Serve.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

const (
	DefaultGracePeriod = 5 * time.Second
	DefaultFlushDelay  = time.Second
)

// ErrForcedShutdown is logged when in-flight work outlives the grace period.
var ErrForcedShutdown = errors.New("forced shutdown after timeout")

type Options struct {
	// GracePeriod bounds a graceful shutdown. Defaults to 5s.
	GracePeriod time.Duration
	// FlushDelay is how long a fault waits before closing the server, giving
	// log sinks time to drain. Defaults to 1s; negative means no delay.
	FlushDelay time.Duration
	// Signals that start a graceful shutdown. Defaults to SIGINT and SIGTERM.
	Signals []os.Signal
	Logger  *slog.Logger
}

// Guard runs an *http.Server and turns shutdown requests and faults into an
// exit code.
type Guard struct {
	server *http.Server
	opts   Options
	logger *slog.Logger

	shuttingDown atomic.Bool
	stop         chan string
	faults       chan error

	mu       sync.Mutex
	draining bool
	tasks    sync.WaitGroup
	tasksCtx context.Context
	cancel   context.CancelFunc
}

func New(server *http.Server, opts Options) *Guard {
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = DefaultGracePeriod
	}
	if opts.FlushDelay < 0 {
		opts.FlushDelay = 0
	} else if opts.FlushDelay == 0 {
		opts.FlushDelay = DefaultFlushDelay
	}
	if len(opts.Signals) == 0 {
		opts.Signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Guard{
		server:   server,
		opts:     opts,
		logger:   opts.Logger,
		stop:     make(chan string, 1),
		faults:   make(chan error, 1),
		tasksCtx: ctx,
		cancel:   cancel,
	}
}

// Run binds server.Addr and serves until shutdown or fault. It returns the
// process exit code.
func (g *Guard) Run(ctx context.Context) int {
	addr := g.server.Addr
	if addr == "" {
		addr = ":http"
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			g.logger.Error("address already in use", "addr", addr, "error", err)
		} else {
			g.logger.Error("listen failed", "addr", addr, "error", err)
		}
		return ExitFailure
	}

	return g.Serve(ctx, ln)
}

// Serve is Run on an already bound listener. Serve takes ownership of ln.
func (g *Guard) Serve(ctx context.Context, ln net.Listener) int {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, g.opts.Signals...)
	defer signal.Stop(sigCh)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- g.server.Serve(ln)
	}()

	g.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case sig := <-sigCh:
		return g.shutdown(fmt.Sprintf("received %s", sig), sigCh)
	case reason := <-g.stop:
		return g.shutdown(reason, sigCh)
	case <-ctx.Done():
		return g.shutdown(fmt.Sprintf("context done: %v", ctx.Err()), sigCh)
	case err := <-g.faults:
		return g.crash(err)
	case err := <-serveErr:
		g.shuttingDown.Store(true)
		g.cancel()
		if errors.Is(err, http.ErrServerClosed) {
			g.logger.Info("server closed")
			return ExitSuccess
		}
		g.logger.Error("server error", "error", err)
		return ExitFailure
	}
}

// Shutdown asks a running guard to stop gracefully. Only the first request
// is kept; later ones are no-ops.
func (g *Guard) Shutdown(reason string) {
	select {
	case g.stop <- reason:
	default:
	}
}

// ShuttingDown reports whether the guard has started to stop.
func (g *Guard) ShuttingDown() bool {
	return g.shuttingDown.Load()
}

// Fault reports a failure the process cannot recover from. The first fault
// stops the server; later ones are only logged.
func (g *Guard) Fault(err error) {
	if err == nil {
		return
	}
	select {
	case g.faults <- err:
	default:
		g.logger.Error("additional fault", "error", err)
	}
}

// Go runs fn on its own goroutine. An error or panic from fn is reported as
// a fault. The context passed to fn is canceled when the guard stops;
// cancellation errors returned after that point are not faults. Tasks
// started once the guard is draining are dropped.
func (g *Guard) Go(name string, fn func(ctx context.Context) error) {
	g.mu.Lock()
	if g.draining {
		g.mu.Unlock()
		g.logger.Warn("background task not started, shutting down", "task", name)
		return
	}
	g.tasks.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.tasks.Done()
		defer func() {
			if v := recover(); v != nil {
				g.logger.Error("background task panic",
					"task", name,
					"panic", fmt.Sprint(v),
					"stack", string(debug.Stack()),
				)
				g.Fault(fmt.Errorf("background task %q panicked: %v", name, v))
			}
		}()

		err := fn(g.tasksCtx)
		if err == nil {
			return
		}
		if g.ShuttingDown() && isContextCancel(err) {
			return
		}
		g.Fault(fmt.Errorf("background task %q: %w", name, err))
	}()
}

func (g *Guard) shutdown(reason string, sigCh <-chan os.Signal) int {
	g.shuttingDown.Store(true)
	g.logger.Info("shutting down", "reason", reason, "grace_period", g.opts.GracePeriod.String())
	g.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), g.opts.GracePeriod)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := g.server.Shutdown(ctx)
		if err == nil {
			err = g.waitTasks(ctx)
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			g.logger.Error(ErrForcedShutdown.Error(), "error", err)
			_ = g.server.Close()
			return ExitFailure
		}
	case sig := <-sigCh:
		g.logger.Error(ErrForcedShutdown.Error(), "reason", fmt.Sprintf("received %s during shutdown", sig))
		_ = g.server.Close()
		return ExitFailure
	case err := <-g.faults:
		return g.crash(err)
	}

	// a fault reported just before draining finished is still a fault
	select {
	case err := <-g.faults:
		return g.crash(err)
	default:
	}

	g.logger.Info("server stopped")
	return ExitSuccess
}

func (g *Guard) crash(err error) int {
	g.shuttingDown.Store(true)
	g.logger.Error("process fault", "error", err)
	g.cancel()

	if g.opts.FlushDelay > 0 {
		time.Sleep(g.opts.FlushDelay)
	}

	_ = g.server.Close()
	return ExitFailure
}

func (g *Guard) waitTasks(ctx context.Context) error {
	g.mu.Lock()
	g.draining = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait background tasks: %w", ctx.Err())
	}
}

func isContextCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

var exit = os.Exit

// Contain is deferred at the top of main. A panic that reaches it is logged
// with its stack and, after flushDelay, the process exits with ExitFailure.
func Contain(logger *slog.Logger, flushDelay time.Duration) {
	v := recover()
	if v == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Error("uncaught panic", "panic", fmt.Sprint(v), "stack", string(debug.Stack()))
	if flushDelay > 0 {
		time.Sleep(flushDelay)
	}
	exit(ExitFailure)
}
