package provider

import (
	"fmt"

	"github.com/asifdigital/ai-marketing-functions/internal/config"
	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// New returns the adapter for kind configured from cfg
func New(kind domain.ProviderKind, cfg config.ProvidersConfig) (Provider, error) {
	switch kind {
	case domain.ProviderGemini:
		return &GeminiAdapter{BaseURL: cfg.GeminiBaseURL}, nil
	case domain.ProviderOpenRouter:
		return &OpenRouterAdapter{
			BaseURL: cfg.OpenRouterBaseURL,
			Referer: cfg.OpenRouterReferer,
			Title:   cfg.OpenRouterTitle,
		}, nil
	case domain.ProviderHuggingFace:
		return &HuggingFaceAdapter{BaseURL: cfg.HuggingFaceBaseURL}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", kind)
	}
}
