package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/conduit"
	"github.com/sagarc03/conduit/database/memory"
	conduithttp "github.com/sagarc03/conduit/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, in conduit.CreateUser) (conduit.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(conduit.User), args.Error(1)
}

func (m *MockService) List(ctx context.Context) (conduit.UserList, error) {
	args := m.Called(ctx)
	return args.Get(0).(conduit.UserList), args.Error(1)
}

// recordingBackground captures deferred work instead of running it.
type recordingBackground struct {
	mu    sync.Mutex
	names []string
	fns   []func(ctx context.Context) error
}

func (b *recordingBackground) Go(name string, fn func(ctx context.Context) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.names = append(b.names, name)
	b.fns = append(b.fns, fn)
}

// newTestPipeline builds the demo API behind the production steps.
func newTestPipeline(t *testing.T, config *conduithttp.HandlerConfig, service conduithttp.Service) *conduithttp.Pipeline {
	t.Helper()

	if config.Logger == nil {
		config.Logger = discardLogger()
	}
	handler := conduithttp.NewHandler(config, service)
	security := conduithttp.SecurityConfig{MaxRequestSize: 1 << 20}
	p, err := handler.Router(conduithttp.DefaultSteps(security, config.Logger)...)
	require.NoError(t, err)
	return p
}

func newUserService(t *testing.T, users ...conduit.User) *conduit.UserService {
	t.Helper()
	svc, err := conduit.NewUserService(memory.NewRepo(users...))
	require.NoError(t, err)
	return svc
}

func TestHandler_Index(t *testing.T) {
	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/api/health")
}

func TestHandler_Health(t *testing.T) {
	p := newTestPipeline(t, &conduithttp.HandlerConfig{StartedAt: time.Now().Add(-time.Minute)}, new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp conduithttp.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.GreaterOrEqual(t, resp.Uptime, 60.0)
	assert.NotZero(t, resp.Memory.Sys)
	assert.NotEmpty(t, resp.Timestamp)
}

func TestHandler_Status(t *testing.T) {
	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "running", resp["status"])
	assert.Contains(t, resp, "uptime")
	assert.Contains(t, resp, "memory")
	assert.NotContains(t, resp, "timestamp")
}

func TestHandler_ListUsers(t *testing.T) {
	service := new(MockService)
	expected := conduit.UserList{
		Users: []conduit.User{
			{ID: uuid.New(), Name: "Anna", Email: "anna@example.com", CreatedAt: time.Now().UTC()},
		},
		Count: 1,
	}
	service.On("List", mock.Anything).Return(expected, nil)

	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, service)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp conduit.UserList
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "Anna", resp.Users[0].Name)

	service.AssertExpectations(t)
}

func TestHandler_ListUsers_ServiceError(t *testing.T) {
	service := new(MockService)
	service.On("List", mock.Anything).Return(conduit.UserList{}, errors.New("connection reset"))

	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, service)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestHandler_CreateUser(t *testing.T) {
	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, newUserService(t))

	req := httptest.NewRequest(http.MethodPost, "/api/users",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp conduithttp.CreateUserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "User created successfully", resp.Message)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.NotEqual(t, uuid.Nil, resp.User.ID)
	assert.False(t, resp.User.CreatedAt.IsZero())

	// the new user is listed afterwards
	req = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w = httptest.NewRecorder()
	p.ServeHTTP(w, req)

	var list conduit.UserList
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Equal(t, 1, list.Count)
}

func TestHandler_CreateUser_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing email", `{"name":"Ada"}`},
		{"missing name", `{"email":"ada@example.com"}`},
		{"blank name", `{"name":"  ","email":"ada@example.com"}`},
		{"empty object", `{}`},
		{"empty body", ``},
		{"wrong type", `{"name":1,"email":"ada@example.com"}`},
		{"not an object", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, &conduithttp.HandlerConfig{}, newUserService(t))

			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			p.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Name and email are required"}`, w.Body.String())
		})
	}
}

func TestHandler_Calc(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "integers",
			query: "x=5&y=3",
			want:  `{"x":5,"y":3,"sum":8,"diff":2,"product":15,"quotient":1.6666666666666667}`,
		},
		{
			name:  "division by zero",
			query: "x=5&y=0",
			want:  `{"x":5,"y":0,"sum":5,"diff":5,"product":0,"quotient":"undefined"}`,
		},
		{
			name:  "non numeric operand",
			query: "x=abc&y=2",
			want:  `{"x":0,"y":2,"sum":2,"diff":-2,"product":0,"quotient":0}`,
		},
		{
			name:  "missing operands",
			query: "",
			want:  `{"x":0,"y":0,"sum":0,"diff":0,"product":0,"quotient":"undefined"}`,
		},
		{
			name:  "infinite operand",
			query: "x=Inf&y=1",
			want:  `{"x":0,"y":1,"sum":1,"diff":-1,"product":0,"quotient":0}`,
		},
		{
			name:  "overflow",
			query: "x=1e308&y=1e308",
			want:  `{"x":1e+308,"y":1e+308,"sum":null,"diff":0,"product":null,"quotient":1}`,
		},
	}

	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, new(MockService))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/calc?"+tt.query, nil)
			w := httptest.NewRecorder()
			p.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestHandler_ErrorTest(t *testing.T) {
	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/api/error-test", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestHandler_BackgroundErrorTest(t *testing.T) {
	bg := &recordingBackground{}
	p := newTestPipeline(t, &conduithttp.HandlerConfig{
		Background:          bg,
		BackgroundFailAfter: time.Millisecond,
	}, new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/api/background-error-test", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	// the request itself succeeds; the failure belongs to the background task
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, bg.fns, 1)
	assert.Equal(t, "background-error-test", bg.names[0])

	err := bg.fns[0](context.Background())
	assert.ErrorIs(t, err, conduithttp.ErrBackgroundTest)
}

func TestHandler_BackgroundErrorTest_Canceled(t *testing.T) {
	bg := &recordingBackground{}
	p := newTestPipeline(t, &conduithttp.HandlerConfig{
		Background:          bg,
		BackgroundFailAfter: time.Hour,
	}, new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/api/background-error-test", nil)
	p.ServeHTTP(httptest.NewRecorder(), req)
	require.Len(t, bg.fns, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bg.fns[0](ctx), context.Canceled)
}

func TestHandler_BackgroundErrorTest_NoBackground(t *testing.T) {
	p := newTestPipeline(t, &conduithttp.HandlerConfig{}, new(MockService))

	req := httptest.NewRequest(http.MethodGet, "/api/background-error-test", nil)
	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"Service unavailable"}`, w.Body.String())
}

func TestHandler_Routes(t *testing.T) {
	handler := conduithttp.NewHandler(&conduithttp.HandlerConfig{}, new(MockService))

	table, err := conduit.NewRouteTable(handler.Routes()...)
	require.NoError(t, err)
	assert.Equal(t, 8, table.Len())

	_, err = table.Resolve(http.MethodPost, "/api/users")
	assert.NoError(t, err)
	_, err = table.Resolve(http.MethodDelete, "/api/users")
	assert.ErrorIs(t, err, conduit.ErrRouteNotFound)
}
