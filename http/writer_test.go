package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseWriter_WriteOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrapWriter(rec)

	assert.False(t, rw.Started())
	assert.Equal(t, http.StatusOK, rw.Status())

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	n, err := rw.Write([]byte("hello"))

	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.True(t, rw.Started())
	assert.Equal(t, http.StatusCreated, rw.Status())
	assert.Equal(t, int64(5), rw.BytesWritten())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriter_ImplicitStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrapWriter(rec)

	_, _ = rw.Write([]byte("x"))
	rw.WriteHeader(http.StatusNotFound)

	assert.Equal(t, http.StatusOK, rw.Status())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWrapWriter_Reuses(t *testing.T) {
	rw := wrapWriter(httptest.NewRecorder())
	assert.Same(t, rw, wrapWriter(rw))
}

func TestResponseWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrapWriter(rec)

	rw.Flush()

	assert.True(t, rec.Flushed)
	assert.True(t, rw.Started())
}
