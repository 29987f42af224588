package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: slog.LevelDebug, Component: component, Output: &buf}), &buf
}

func TestNewTagsComponent(t *testing.T) {
	logger, buf := newBufferLogger(ComponentHTTP)
	logger.Info("hello")

	assert.Contains(t, buf.String(), "component=http")

	child := logger.With("request_id", "req_1").WithComponent(ComponentBackend)

	buf.Reset()
	child.Info("moved")
	out := buf.String()
	assert.Contains(t, out, "component=backend")
	assert.NotContains(t, out, "component=http")
	assert.Contains(t, out, "request_id=req_1")
}

func TestFromContext(t *testing.T) {
	logger, _ := newBufferLogger(ComponentApp)

	assert.Same(t, logger, FromContext(NewContext(context.Background(), logger)))
	fallback := FromContext(context.Background())
	assert.NotNil(t, fallback)
	assert.Same(t, slog.Default(), fallback.Logger)
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	logger, _ := newBufferLogger(ComponentHTTP)

	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Same(t, logger, got)
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "level=INFO"},
		{http.StatusBadRequest, "level=WARN"},
		{http.StatusInternalServerError, "level=ERROR"},
	}

	for _, tt := range tests {
		logger, buf := newBufferLogger(ComponentHTTP)
		req := httptest.NewRequest(http.MethodGet, "/transactions?x=1", nil)

		NewStructuredLogger(logger).LogHTTPEnd(context.Background(), req, tt.status, 5*time.Millisecond, "10.0.0.1")

		out := buf.String()
		assert.True(t, strings.Contains(out, tt.level), "status %d: %s", tt.status, out)
		assert.Contains(t, out, "path=/transactions")
		assert.Contains(t, out, "client_ip=10.0.0.1")
	}
}

func TestLogErrorAndTransactionCreated(t *testing.T) {
	logger, buf := newBufferLogger(ComponentApp)
	sl := NewStructuredLogger(logger)

	sl.LogError(context.Background(), "Insert failed", errors.New("disk full"), ErrorTypeDatabase, OpCreate, nil)
	assert.Contains(t, buf.String(), `error="disk full"`)
	assert.Contains(t, buf.String(), "error_type=database_error")

	buf.Reset()
	sl.LogTransactionCreated(context.Background(), "abc", -200, "s1", true)
	out := buf.String()
	assert.Contains(t, out, "transaction_id=abc")
	assert.Contains(t, out, "amount=-200")
	assert.Contains(t, out, "session_minted=true")
}
