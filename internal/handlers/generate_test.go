package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// MockGenerator for testing
type MockGenerator struct {
	GenerateCalled bool
	LastInvocation domain.Invocation
	Envelope       *domain.Envelope
	Error          error
}

func (m *MockGenerator) Generate(ctx context.Context, inv domain.Invocation) (*domain.Envelope, error) {
	m.GenerateCalled = true
	m.LastInvocation = inv
	return m.Envelope, m.Error
}

// MockHandlerLogger for testing
type MockHandlerLogger struct {
	ErrorLogs []string
	WarnLogs  []string
	InfoLogs  []string
	DebugLogs []string
}

func (m *MockHandlerLogger) Error(msg string, err error, args ...interface{}) {
	m.ErrorLogs = append(m.ErrorLogs, msg)
}

func (m *MockHandlerLogger) Warn(msg string, args ...interface{}) {
	m.WarnLogs = append(m.WarnLogs, msg)
}

func (m *MockHandlerLogger) Info(msg string, args ...interface{}) {
	m.InfoLogs = append(m.InfoLogs, msg)
}

func (m *MockHandlerLogger) Debug(msg string, args ...interface{}) {
	m.DebugLogs = append(m.DebugLogs, msg)
}

func TestGenerateHandlerServeHTTPSuccess(t *testing.T) {
	// Arrange
	generator := &MockGenerator{Envelope: &domain.Envelope{Field: "post", Text: "🔥 Big Sale! #Dubai <3 & more"}}
	handler := NewGenerateHandler(generator, &MockHandlerLogger{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/generator-proxy", strings.NewReader(`{"topic":"Summer sale"}`))
	req = req.WithContext(WithRequestID(req.Context(), "req_123"))
	w := httptest.NewRecorder()

	// Act
	handler.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "{\"post\":\"🔥 Big Sale! #Dubai <3 & more\"}\n", w.Body.String())
	assert.True(t, generator.GenerateCalled)
	assert.Equal(t, http.MethodPost, generator.LastInvocation.Method)
	assert.Equal(t, `{"topic":"Summer sale"}`, string(generator.LastInvocation.Body))
	assert.Equal(t, "req_123", generator.LastInvocation.RequestID)
}

func TestGenerateHandlerMethodNotAllowedIsPlainText(t *testing.T) {
	generator := &MockGenerator{Error: domain.NewMethodNotAllowed()}
	handler := NewGenerateHandler(generator, &MockHandlerLogger{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/proxy", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method Not Allowed", w.Body.String())
	assert.Equal(t, "POST", w.Header().Get("Allow"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
}

func TestGenerateHandlerErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"bad request", domain.NewMissingField("topic"), http.StatusBadRequest, `{"error":"Missing \"topic\" in request body."}`},
		{"configuration", domain.NewConfigurationError("GEMINI_API_KEY"), http.StatusInternalServerError,
			`{"error":"GEMINI_API_KEY is not set. Configure it in the function's environment variables."}`},
		{"upstream", domain.NewUpstreamError(503, "overloaded"), http.StatusServiceUnavailable, `{"error":"overloaded"}`},
		{"transport", domain.NewTransportError(errors.New("dial tcp: connection refused")), http.StatusInternalServerError,
			`{"error":"Internal Server Error.","details":"dial tcp: connection refused"}`},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, `{"error":"Internal Server Error.","details":"surprise"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewGenerateHandler(&MockGenerator{Error: tt.err}, &MockHandlerLogger{}, nil)
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestGenerateHandlerBodyTooLarge(t *testing.T) {
	generator := &MockGenerator{}
	logger := &MockHandlerLogger{}
	handler := NewGenerateHandler(generator, logger, nil)

	big := bytes.Repeat([]byte("a"), MaxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/proxy", bytes.NewReader(big))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.False(t, generator.GenerateCalled)
	assert.NotEmpty(t, logger.WarnLogs)
}

func TestGenerateHandlerRateLimited(t *testing.T) {
	// Arrange
	generator := &MockGenerator{Envelope: &domain.Envelope{Field: "ideas", Text: "ok"}}
	handler := NewGenerateHandler(generator, &MockHandlerLogger{}, NewRateLimiter(1, 1))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/content-generator", strings.NewReader(`{"industry":"retail"}`))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// Act
	first := send()
	second := send()

	// Assert
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded.", body["error"])
}
