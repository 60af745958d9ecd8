package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"

// GeminiKeyEnv holds the Google AI Studio key
const GeminiKeyEnv = "GEMINI_API_KEY"

// GeminiAdapter talks to the generateContent API. The key travels as a query parameter.
type GeminiAdapter struct {
	BaseURL string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiAdapter) Kind() domain.ProviderKind {
	return domain.ProviderGemini
}

func (g *GeminiAdapter) KeyEnv() string {
	return GeminiKeyEnv
}

func (g *GeminiAdapter) NewRequest(ctx context.Context, req Request) (*http.Request, error) {
	payload := geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Params.Temperature,
			MaxOutputTokens: req.Params.MaxTokens,
		},
	}
	if req.Intent.System != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.Intent.System}}}
	}
	for _, turn := range req.Intent.History {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "model"
		}
		payload.Contents = append(payload.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: turn.Text}}})
	}
	if req.Intent.User != "" {
		payload.Contents = append(payload.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: req.Intent.User}}})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	baseURL := g.BaseURL
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	endpoint := joinURL(baseURL, "v1beta", "models", req.Model+":generateContent") + "?key=" + url.QueryEscape(req.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	return httpReq, nil
}

// ExtractText reads candidates[0].content.parts[0].text
func (g *GeminiAdapter) ExtractText(body []byte) (string, bool) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == nil {
		return "", false
	}
	text := strings.TrimSpace(*parts[0].Text)
	if text == "" {
		return "", false
	}
	return text, true
}

// ExtractError reads error.message
func (g *GeminiAdapter) ExtractError(body []byte) string {
	return messageField(body)
}
