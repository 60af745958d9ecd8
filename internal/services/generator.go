package services

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
	"github.com/asifdigital/ai-marketing-functions/internal/metrics"
	"github.com/asifdigital/ai-marketing-functions/internal/prompt"
	"github.com/asifdigital/ai-marketing-functions/internal/provider"
	"github.com/asifdigital/ai-marketing-functions/internal/validation"
)

// Completer performs the single upstream call of an invocation
type Completer interface {
	Complete(ctx context.Context, p provider.Provider, req provider.Request) (domain.Completion, error)
}

// GenerationService implements domain.Generator for one endpoint.
// Orchestrates validation, secret lookup, prompt building and the provider call.
type GenerationService struct {
	endpoint  domain.Endpoint
	provider  provider.Provider
	completer Completer
	secrets   domain.SecretLookup
	usage     domain.UsageWriter
	logger    domain.Logger
	now       func() time.Time
}

// NewGenerationService creates a generation service with dependency injection.
// usage may be nil when no ledger is configured.
func NewGenerationService(
	endpoint domain.Endpoint,
	p provider.Provider,
	completer Completer,
	secrets domain.SecretLookup,
	usage domain.UsageWriter,
	logger domain.Logger,
) *GenerationService {
	if secrets == nil {
		secrets = domain.EnvSecrets
	}
	return &GenerationService{
		endpoint:  endpoint,
		provider:  p,
		completer: completer,
		secrets:   secrets,
		usage:     usage,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate runs one invocation through the pipeline
func (s *GenerationService) Generate(ctx context.Context, inv domain.Invocation) (*domain.Envelope, error) {
	if inv.RequestID == "" {
		inv.RequestID = uuid.NewString()
	}

	// Step 1: Validate method and body
	payload, err := validation.Validate(inv.Method, inv.Body, s.endpoint)
	if err != nil {
		s.logger.Info("request rejected", "requestId", inv.RequestID, "endpoint", s.endpoint.Name, "reason", err.Error())
		s.count(err)
		return nil, err
	}

	// Step 2: Resolve the provider secret before any outbound call
	apiKey, ok := s.secrets(s.provider.KeyEnv())
	if !ok {
		cfgErr := domain.NewConfigurationError(s.provider.KeyEnv())
		s.logger.Error("provider API key is not configured", cfgErr, "requestId", inv.RequestID, "endpoint", s.endpoint.Name)
		s.count(cfgErr)
		return nil, cfgErr
	}

	// Step 3: Build the prompt
	intent, err := prompt.Build(s.endpoint, payload)
	if err != nil {
		s.logger.Error("failed to build prompt", err, "requestId", inv.RequestID, "endpoint", s.endpoint.Name)
		s.count(err)
		return nil, domain.NewTransportError(err)
	}

	// Step 4: Call the provider
	start := s.now()
	completion, err := s.completer.Complete(ctx, s.provider, provider.Request{
		Model:  s.endpoint.Model,
		APIKey: apiKey,
		Intent: intent,
		Params: s.endpoint.Params,
	})
	latency := s.now().Sub(start)
	s.record(ctx, inv.RequestID, err, completion.Degraded, latency)
	s.count(err)
	if err != nil {
		s.logger.Error("generation failed", err, "requestId", inv.RequestID, "endpoint", s.endpoint.Name, "provider", s.provider.Kind())
		return nil, err
	}

	text := completion.Text
	if completion.Degraded {
		text = s.endpoint.Fallback
		metrics.FallbackTotal.WithLabelValues(s.endpoint.Name).Inc()
		s.logger.Warn("answered with fallback text", "requestId", inv.RequestID, "endpoint", s.endpoint.Name, "provider", s.provider.Kind())
	}

	s.logger.Info("generation completed", "requestId", inv.RequestID, "endpoint", s.endpoint.Name, "latencyMs", latency.Milliseconds())
	return &domain.Envelope{
		Field:    s.endpoint.ResponseField,
		Text:     text,
		Degraded: completion.Degraded,
	}, nil
}

// Endpoint returns the endpoint definition this service answers for
func (s *GenerationService) Endpoint() domain.Endpoint {
	return s.endpoint
}

func (s *GenerationService) count(err error) {
	metrics.RequestsTotal.WithLabelValues(s.endpoint.Name, strconv.Itoa(statusOf(err))).Inc()
}

// record writes the usage ledger entry. Failures never change the response.
func (s *GenerationService) record(ctx context.Context, requestID string, err error, degraded bool, latency time.Duration) {
	if s.usage == nil {
		return
	}
	rec := domain.UsageRecord{
		RequestID: requestID,
		Endpoint:  s.endpoint.Name,
		Provider:  s.provider.Kind(),
		Model:     s.endpoint.Model,
		Status:    statusOf(err),
		Degraded:  degraded,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: s.now().UTC(),
	}
	if werr := s.usage.Write(ctx, rec); werr != nil {
		s.logger.Error("failed to write usage record", werr, "requestId", requestID)
	}
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return domain.AsError(err).HTTPStatus()
}
