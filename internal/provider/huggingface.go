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

const huggingFaceDefaultBaseURL = "https://api-inference.huggingface.co"

// HuggingFaceKeyEnv holds the Inference API token
const HuggingFaceKeyEnv = "HUGGING_FACE_API_TOKEN"

// HuggingFaceAdapter calls the text-generation task of the Inference API.
// The model id is part of the URL path.
type HuggingFaceAdapter struct {
	BaseURL string
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText *bool   `json:"return_full_text,omitempty"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfGeneration struct {
	GeneratedText *string `json:"generated_text"`
}

func (h *HuggingFaceAdapter) Kind() domain.ProviderKind {
	return domain.ProviderHuggingFace
}

func (h *HuggingFaceAdapter) KeyEnv() string {
	return HuggingFaceKeyEnv
}

func (h *HuggingFaceAdapter) NewRequest(ctx context.Context, req Request) (*http.Request, error) {
	payload := hfRequest{
		Inputs: flatten(req.Intent),
		Parameters: hfParameters{
			MaxNewTokens: req.Params.MaxTokens,
			Temperature:  req.Params.Temperature,
			DoSample:     true,
		},
		Options: hfOptions{WaitForModel: true},
	}
	// A wrapped transcript must not come back in generated_text
	if req.Intent.System != "" || len(req.Intent.History) > 0 {
		noEcho := false
		payload.Parameters.ReturnFullText = &noEcho
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("huggingface: marshal request: %w", err)
	}

	baseURL := h.BaseURL
	if baseURL == "" {
		baseURL = huggingFaceDefaultBaseURL
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(baseURL, "models", req.Model), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("huggingface: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	return httpReq, nil
}

// flatten renders the intent as a single text-generation prompt.
// A bare message with no system text or history is sent unchanged.
func flatten(intent domain.Intent) string {
	if intent.System == "" && len(intent.History) == 0 {
		return intent.User
	}
	var b strings.Builder
	if intent.System != "" {
		b.WriteString(intent.System)
		b.WriteString("\n\n")
	}
	for _, turn := range intent.History {
		b.WriteString(speaker(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(intent.User)
	b.WriteString("\nAssistant:")
	return b.String()
}

func speaker(role domain.Role) string {
	if role == domain.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

// ExtractText reads [0].generated_text
func (h *HuggingFaceAdapter) ExtractText(body []byte) (string, bool) {
	var resp []hfGeneration
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp) == 0 || resp[0].GeneratedText == nil || *resp[0].GeneratedText == "" {
		return "", false
	}
	return *resp[0].GeneratedText, true
}

// ExtractError reads error, which is a plain string on this API
func (h *HuggingFaceAdapter) ExtractError(body []byte) string {
	return messageField(body)
}
