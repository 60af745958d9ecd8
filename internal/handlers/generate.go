package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// MaxBodyBytes caps the accepted request body
const MaxBodyBytes = 1 << 20

// GenerateHandler handles one generation endpoint (HTTP transport layer)
type GenerateHandler struct {
	generator   domain.Generator
	logger      domain.Logger
	rateLimiter *RateLimiter
}

// NewGenerateHandler creates a new generation handler. rateLimiter may be nil.
func NewGenerateHandler(generator domain.Generator, logger domain.Logger, rateLimiter *RateLimiter) *GenerateHandler {
	return &GenerateHandler{
		generator:   generator,
		logger:      logger,
		rateLimiter: rateLimiter,
	}
}

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// ServeHTTP handles HTTP requests to the endpoint
func (h *GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Check rate limit first (before any processing)
	if !h.rateLimiter.Allow() {
		h.logger.Warn("rate limit exceeded", "remoteAddr", r.RemoteAddr)
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Rate limit exceeded."})
		return
	}

	requestID := RequestIDFromContext(r.Context())

	// Read request body
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	defer r.Body.Close()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("request body too large", "requestId", requestID, "limit", tooLarge.Limit)
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Request body is too large."})
			return
		}
		h.logger.Error("failed to read request body", err, "requestId", requestID)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Failed to read request body."})
		return
	}

	envelope, err := h.generator.Generate(r.Context(), domain.Invocation{
		Method:    r.Method,
		Body:      body,
		RequestID: requestID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

func (h *GenerateHandler) writeError(w http.ResponseWriter, err error) {
	e := domain.AsError(err)
	if e.Kind == domain.KindMethodNotAllowed {
		w.Header().Set("Allow", http.MethodPost)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(e.HTTPStatus())
		_, _ = w.Write([]byte(e.Message))
		return
	}
	writeJSON(w, e.HTTPStatus(), errorBody{Error: e.Message, Details: e.Details})
}

// writeJSON encodes v without HTML escaping so generated text is returned verbatim
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, `{"error":"Internal Server Error."}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
