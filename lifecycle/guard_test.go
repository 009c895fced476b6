package lifecycle_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/conduit/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// lockedBuffer collects log output written from several goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

// startGuard serves h on a random port and returns the guard, its base URL
// and a channel receiving the exit code.
func startGuard(t *testing.T, h http.Handler, opts lifecycle.Options) (*lifecycle.Guard, string, <-chan int) {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	ln := listen(t)
	srv := &http.Server{Handler: h}
	guard := lifecycle.New(srv, opts)

	code := make(chan int, 1)
	go func() {
		code <- guard.Serve(context.Background(), ln)
	}()

	url := "http://" + ln.Addr().String()
	waitReady(t, url)
	return guard, url, code
}

func waitReady(t *testing.T, url string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/ready")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 5*time.Second, 10*time.Millisecond)
}

func waitCode(t *testing.T, code <-chan int) int {
	t.Helper()
	select {
	case c := <-code:
		return c
	case <-time.After(10 * time.Second):
		t.Fatal("guard did not exit")
		return -1
	}
}

func TestGuard_GracefulShutdownCompletesInFlight(t *testing.T) {
	started := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("done"))
	})

	guard, url, code := startGuard(t, mux, lifecycle.Options{GracePeriod: 5 * time.Second})

	type result struct {
		status int
		body   string
		err    error
	}
	res := make(chan result, 1)
	go func() {
		resp, err := http.Get(url + "/slow")
		if err != nil {
			res <- result{err: err}
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		res <- result{status: resp.StatusCode, body: string(b)}
	}()

	<-started
	guard.Shutdown("test")

	assert.Equal(t, lifecycle.ExitSuccess, waitCode(t, code))
	assert.True(t, guard.ShuttingDown())

	r := <-res
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "done", r.body)
}

func TestGuard_ForcedShutdown(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/stuck", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	})

	guard, url, code := startGuard(t, mux, lifecycle.Options{GracePeriod: 100 * time.Millisecond})

	go func() {
		resp, err := http.Get(url + "/stuck")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	<-started
	begin := time.Now()
	guard.Shutdown("test")

	assert.Equal(t, lifecycle.ExitFailure, waitCode(t, code))
	assert.Less(t, time.Since(begin), 5*time.Second)
}

func TestGuard_ContextCancelShutsDown(t *testing.T) {
	ln := listen(t)
	guard := lifecycle.New(&http.Server{Handler: http.NotFoundHandler()}, lifecycle.Options{Logger: discardLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	code := make(chan int, 1)
	go func() { code <- guard.Serve(ctx, ln) }()

	cancel()
	assert.Equal(t, lifecycle.ExitSuccess, waitCode(t, code))
}

func TestGuard_AddressInUse(t *testing.T) {
	occupied := listen(t)
	defer occupied.Close()

	srv := &http.Server{Addr: occupied.Addr().String(), Handler: http.NotFoundHandler()}
	guard := lifecycle.New(srv, lifecycle.Options{Logger: discardLogger()})

	assert.Equal(t, lifecycle.ExitFailure, guard.Run(context.Background()))
}

func TestGuard_BackgroundErrorIsFault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})

	guard, url, code := startGuard(t, mux, lifecycle.Options{FlushDelay: 10 * time.Millisecond})

	guard.Go("failing", func(ctx context.Context) error {
		return errors.New("background failure")
	})

	assert.Equal(t, lifecycle.ExitFailure, waitCode(t, code))

	// the server does not keep serving after a fault
	_, err := http.Get(url + "/ready")
	assert.Error(t, err)
}

func TestGuard_BackgroundPanicIsFault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})

	guard, _, code := startGuard(t, mux, lifecycle.Options{FlushDelay: -1})

	guard.Go("panicking", func(ctx context.Context) error {
		var m map[string]int
		m["boom"]++
		return nil
	})

	assert.Equal(t, lifecycle.ExitFailure, waitCode(t, code))
}

func TestGuard_FaultWaitsFlushDelay(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})

	guard, _, code := startGuard(t, mux, lifecycle.Options{FlushDelay: 150 * time.Millisecond})

	begin := time.Now()
	guard.Fault(errors.New("unrecoverable"))

	assert.Equal(t, lifecycle.ExitFailure, waitCode(t, code))
	assert.GreaterOrEqual(t, time.Since(begin), 150*time.Millisecond)
}

func TestGuard_CanceledTaskIsNotFault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})

	guard, _, code := startGuard(t, mux, lifecycle.Options{})

	running := make(chan struct{})
	guard.Go("waiting", func(ctx context.Context) error {
		close(running)
		<-ctx.Done()
		return ctx.Err()
	})
	<-running

	guard.Shutdown("test")
	assert.Equal(t, lifecycle.ExitSuccess, waitCode(t, code))
}

func TestGuard_NilFaultIgnored(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})

	guard, _, code := startGuard(t, mux, lifecycle.Options{})

	guard.Fault(nil)
	guard.Go("ok", func(ctx context.Context) error { return nil })
	guard.Shutdown("test")

	assert.Equal(t, lifecycle.ExitSuccess, waitCode(t, code))
}

func TestGuard_FaultWhileDrainingFails(t *testing.T) {
	var logs lockedBuffer
	var guard *lifecycle.Guard

	started := make(chan struct{})
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		guard.Fault(errors.New("unrecoverable fault while draining"))
		_, _ = w.Write([]byte("done"))
	})

	guard, url, code := startGuard(t, mux, lifecycle.Options{
		GracePeriod: 5 * time.Second,
		FlushDelay:  -1,
		Logger:      slog.New(slog.NewJSONHandler(&logs, nil)),
	})

	go func() {
		resp, err := http.Get(url + "/slow")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	<-started
	guard.Shutdown("test")
	require.Eventually(t, guard.ShuttingDown, 5*time.Second, 5*time.Millisecond)
	close(release)

	assert.Equal(t, lifecycle.ExitFailure, waitCode(t, code))
	assert.Contains(t, logs.String(), "process fault")
	assert.Contains(t, logs.String(), "unrecoverable fault while draining")
}

func TestGuard_TaskErrorWhileDrainingFails(t *testing.T) {
	var logs lockedBuffer

	mux := http.NewServeMux()
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {})

	guard, _, code := startGuard(t, mux, lifecycle.Options{
		GracePeriod: 5 * time.Second,
		FlushDelay:  -1,
		Logger:      slog.New(slog.NewJSONHandler(&logs, nil)),
	})

	running := make(chan struct{})
	guard.Go("flusher", func(ctx context.Context) error {
		close(running)
		<-ctx.Done()
		return errors.New("flush failed during shutdown")
	})
	<-running

	guard.Shutdown("test")

	assert.Equal(t, lifecycle.ExitFailure, waitCode(t, code))
	assert.Contains(t, logs.String(), "process fault")
	assert.Contains(t, logs.String(), "flush failed during shutdown")
	assert.NotContains(t, logs.String(), "server stopped")
}
