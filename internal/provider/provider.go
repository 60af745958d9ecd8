// Package provider adapts the neutral Intent to each upstream generative-AI API
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
	"github.com/asifdigital/ai-marketing-functions/internal/metrics"
)

// GenericErrorMessage is surfaced when an upstream error carries no message
const GenericErrorMessage = "API Error"

// Request is everything an adapter needs to build one upstream call
type Request struct {
	Model  string
	APIKey string
	Intent domain.Intent
	Params domain.GenerationParams
}

// Provider is the capability set every upstream variant implements
type Provider interface {
	Kind() domain.ProviderKind
	// KeyEnv names the environment variable holding the API key
	KeyEnv() string
	NewRequest(ctx context.Context, req Request) (*http.Request, error)
	// ExtractText returns false when the expected field is absent
	ExtractText(body []byte) (string, bool)
	// ExtractError returns "" when the body carries no message
	ExtractError(body []byte) string
}

// NewHTTPClient returns the outbound client shared by all adapters.
// No timeout is set; the inbound request context bounds every call.
// The key query parameter is removed before otelhttp records the URL and
// restored just before the request leaves the process.
func NewHTTPClient(opts ...otelhttp.Option) *http.Client {
	return &http.Client{
		Transport: &stripKeyTransport{
			next: otelhttp.NewTransport(&restoreKeyTransport{next: http.DefaultTransport}, opts...),
		},
	}
}

// keyQueryParam carries the Gemini API key
const keyQueryParam = "key"

type apiKeyContextKey struct{}

// stripKeyTransport moves the key query parameter into the request context
type stripKeyTransport struct {
	next http.RoundTripper
}

func (t *stripKeyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	q := r.URL.Query()
	if !q.Has(keyQueryParam) {
		return t.next.RoundTrip(r)
	}
	key := q.Get(keyQueryParam)
	q.Del(keyQueryParam)

	clone := r.Clone(context.WithValue(r.Context(), apiKeyContextKey{}, key))
	clone.URL.RawQuery = q.Encode()
	return t.next.RoundTrip(clone)
}

// restoreKeyTransport puts the key stripped by stripKeyTransport back on the URL
type restoreKeyTransport struct {
	next http.RoundTripper
}

func (t *restoreKeyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	key, ok := r.Context().Value(apiKeyContextKey{}).(string)
	if !ok {
		return t.next.RoundTrip(r)
	}
	clone := r.Clone(r.Context())
	q := clone.URL.Query()
	q.Set(keyQueryParam, key)
	clone.URL.RawQuery = q.Encode()
	return t.next.RoundTrip(clone)
}

// Client performs exactly one upstream call per Complete
type Client struct {
	httpClient *http.Client
	logger     domain.Logger
}

// NewClient creates a provider client
func NewClient(httpClient *http.Client, logger domain.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Complete sends the request and normalizes the upstream answer
func (c *Client) Complete(ctx context.Context, p Provider, req Request) (domain.Completion, error) {
	httpReq, err := p.NewRequest(ctx, req)
	if err != nil {
		return domain.Completion{}, domain.NewTransportError(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	metrics.UpstreamDuration.WithLabelValues(string(p.Kind())).Observe(time.Since(start).Seconds())
	if err != nil {
		err = redact(err)
		c.logger.Error("upstream request failed", err, "provider", p.Kind())
		return domain.Completion{}, domain.NewTransportError(fmt.Errorf("%w: %v", domain.ErrTransport, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read upstream body", err, "provider", p.Kind())
		return domain.Completion{}, domain.NewTransportError(fmt.Errorf("%w: %v", domain.ErrTransport, err))
	}

	var probe interface{}
	if err := json.Unmarshal(body, &probe); err != nil {
		c.logger.Error("upstream returned a non-JSON body", err,
			"provider", p.Kind(), "status", resp.StatusCode, "body", truncate(body))
		return domain.Completion{}, domain.NewTransportError(fmt.Errorf("%w: %v", domain.ErrUpstreamBody, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("upstream returned an error", "provider", p.Kind(), "status", resp.StatusCode, "body", truncate(body))
		msg := p.ExtractError(body)
		if msg == "" {
			msg = GenericErrorMessage
		}
		return domain.Completion{}, domain.NewUpstreamError(resp.StatusCode, msg)
	}

	text, ok := p.ExtractText(body)
	if !ok {
		c.logger.Warn("upstream success response is missing generated text", "provider", p.Kind(), "body", truncate(body))
		return domain.Completion{Degraded: true}, nil
	}
	return domain.Completion{Text: text}, nil
}

// redact strips the request URL from transport errors; the Gemini key
// travels in the query string.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

const maxLoggedBody = 2048

func truncate(body []byte) string {
	s := string(body)
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "..."
	}
	return s
}

// messageField reads {"error": {"message": "..."}} and {"error": "..."}
func messageField(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &obj); err == nil {
		return obj.Message
	}
	return ""
}

func joinURL(base string, elem ...string) string {
	return strings.TrimRight(base, "/") + "/" + strings.Join(elem, "/")
}
