// Package app composes configuration, providers, the usage ledger and the
// HTTP handlers. Both the Cloud Function entry point and the local server use it.
package app

import (
	"context"
	"fmt"
	"net/http"

	firebase "firebase.google.com/go/v4"

	"github.com/asifdigital/ai-marketing-functions/internal/config"
	"github.com/asifdigital/ai-marketing-functions/internal/domain"
	"github.com/asifdigital/ai-marketing-functions/internal/endpoints"
	"github.com/asifdigital/ai-marketing-functions/internal/handlers"
	"github.com/asifdigital/ai-marketing-functions/internal/provider"
	"github.com/asifdigital/ai-marketing-functions/internal/repositories"
	"github.com/asifdigital/ai-marketing-functions/internal/services"
)

// App holds one HTTP handler per endpoint
type App struct {
	Catalog  []domain.Endpoint
	Handlers map[string]http.Handler
	closers  []func() error
}

// Options overrides collaborators, mostly for tests. Zero values use the defaults.
type Options struct {
	Secrets    domain.SecretLookup
	HTTPClient *http.Client
	Usage      domain.UsageWriter
}

// New wires the application from cfg, opening the configured usage sink
func New(ctx context.Context, cfg *config.Config, logger domain.Logger) (*App, error) {
	usage, closer, err := NewUsageWriter(ctx, cfg.Usage)
	if err != nil {
		return nil, err
	}
	a, err := Build(cfg, logger, Options{Usage: usage})
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	logger.Info("functions initialized",
		"environment", cfg.Environment,
		"usageSink", cfg.Usage.Sink,
		"rateLimitRps", cfg.RateLimit.RPS,
		"endpoints", len(a.Catalog))
	return a, nil
}

// Build creates the handlers without touching any external service
func Build(cfg *config.Config, logger domain.Logger, opts Options) (*App, error) {
	if opts.Secrets == nil {
		opts.Secrets = domain.EnvSecrets
	}
	client := provider.NewClient(opts.HTTPClient, logger)
	limiter := handlers.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	catalog := endpoints.Catalog(cfg.Fields)
	hs := make(map[string]http.Handler, len(catalog))
	for _, endpoint := range catalog {
		p, err := provider.New(endpoint.Provider, cfg.Providers)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", endpoint.Name, err)
		}
		service := services.NewGenerationService(endpoint, p, client, opts.Secrets, opts.Usage, logger)
		hs[endpoint.Name] = handlers.RequestID(handlers.NewGenerateHandler(service, logger, limiter))
	}

	return &App{Catalog: catalog, Handlers: hs}, nil
}

// Handler returns the handler for an endpoint name
func (a *App) Handler(name string) (http.Handler, error) {
	h, ok := a.Handlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown endpoint %q", name)
	}
	return h, nil
}

// Close releases the usage sink
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewUsageWriter opens the configured usage ledger. It returns a nil writer for the none sink.
func NewUsageWriter(ctx context.Context, cfg config.UsageConfig) (domain.UsageWriter, func() error, error) {
	switch cfg.Sink {
	case config.SinkNone, "":
		return nil, nil, nil
	case config.SinkFirestore:
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Firebase: %w", err)
		}
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get Firestore client: %w", err)
		}
		return repositories.NewFirestoreRepository(client, cfg.Collection), client.Close, nil
	case config.SinkFirebase:
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{
			ProjectID:   cfg.ProjectID,
			DatabaseURL: cfg.DatabaseURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Firebase: %w", err)
		}
		dbClient, err := fbApp.Database(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get Firebase database client: %w", err)
		}
		return repositories.NewFirebaseRepository(dbClient, cfg.Collection), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown usage sink %q", cfg.Sink)
	}
}
