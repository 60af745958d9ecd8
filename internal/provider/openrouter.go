package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

const openRouterDefaultBaseURL = "https://openrouter.ai"

// OpenRouterKeyEnv holds the OpenRouter key
const OpenRouterKeyEnv = "OPENROUTER_API_KEY"

// OpenRouterAdapter speaks the OpenAI-compatible chat completions API.
// Referer and Title are OpenRouter's optional app attribution headers.
type OpenRouterAdapter struct {
	BaseURL string
	Referer string
	Title   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenRouterAdapter) Kind() domain.ProviderKind {
	return domain.ProviderOpenRouter
}

func (o *OpenRouterAdapter) KeyEnv() string {
	return OpenRouterKeyEnv
}

func (o *OpenRouterAdapter) NewRequest(ctx context.Context, req Request) (*http.Request, error) {
	payload := chatRequest{
		Model:       req.Model,
		Temperature: req.Params.Temperature,
		MaxTokens:   req.Params.MaxTokens,
	}
	if req.Intent.System != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: req.Intent.System})
	}
	for _, turn := range req.Intent.History {
		payload.Messages = append(payload.Messages, chatMessage{Role: string(turn.Role), Content: turn.Text})
	}
	if req.Intent.User != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: req.Intent.User})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openrouter: marshal request: %w", err)
	}

	baseURL := o.BaseURL
	if baseURL == "" {
		baseURL = openRouterDefaultBaseURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(baseURL, "api", "v1", "chat", "completions"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openrouter: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	if o.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", o.Referer)
	}
	if o.Title != "" {
		httpReq.Header.Set("X-Title", o.Title)
	}
	return httpReq, nil
}

// ExtractText reads choices[0].message.content
func (o *OpenRouterAdapter) ExtractText(body []byte) (string, bool) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", false
	}
	text := strings.TrimSpace(*resp.Choices[0].Message.Content)
	if text == "" {
		return "", false
	}
	return text, true
}

// ExtractError reads error.message
func (o *OpenRouterAdapter) ExtractError(body []byte) string {
	return messageField(body)
}
