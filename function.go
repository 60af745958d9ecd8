// Package function contains the Cloud Function entry points for GCP Cloud Functions Gen2
package function

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/asifdigital/ai-marketing-functions/internal/app"
	"github.com/asifdigital/ai-marketing-functions/internal/config"
	"github.com/asifdigital/ai-marketing-functions/internal/domain"
	"github.com/asifdigital/ai-marketing-functions/internal/endpoints"
	"github.com/asifdigital/ai-marketing-functions/internal/services"
)

// Entry point names as deployed with --entry-point
var entryPoints = map[string]string{
	"AdCopyGenerator":  endpoints.AdCopy,
	"ContentGenerator": endpoints.ContentIdeas,
	"GeneratorProxy":   endpoints.SocialPost,
	"Proxy":            endpoints.Chatbot,
}

var application *app.App

func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := services.NewLogger(cfg.Log.Level, cfg.Log.Format)

	application, err = app.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize functions: %v", err)
	}

	for entryPoint, name := range entryPoints {
		handler, err := application.Handler(name)
		if err != nil {
			log.Fatalf("Failed to register %s: %v", entryPoint, err)
		}
		functions.HTTP(entryPoint, recoverer(handler, logger))
	}
}

// recoverer converts a panic into a 500 JSON error instead of a dropped connection
func recoverer(next http.Handler, logger domain.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("recovered from panic", fmt.Errorf("panic: %v", rec), "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal Server Error."}`))
			}
		}()
		next.ServeHTTP(w, r)
	}
}
