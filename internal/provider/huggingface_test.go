package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asifdigital/ai-marketing-functions/internal/config"
	"github.com/asifdigital/ai-marketing-functions/internal/domain"
	"github.com/asifdigital/ai-marketing-functions/internal/endpoints"
	"github.com/asifdigital/ai-marketing-functions/internal/prompt"
)

func TestHuggingFaceNewRequest(t *testing.T) {
	// Arrange
	adapter := &HuggingFaceAdapter{BaseURL: "http://hf.test"}
	req := Request{
		Model:  "moonshotai/Kimi-K2-Instruct",
		APIKey: "hf_test",
		Intent: domain.Intent{User: "Hello"},
		Params: domain.GenerationParams{Temperature: 0.7, MaxTokens: 100},
	}

	// Act
	httpReq, err := adapter.NewRequest(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "http://hf.test/models/moonshotai/Kimi-K2-Instruct", httpReq.URL.String())
	assert.Equal(t, "Bearer hf_test", httpReq.Header.Get("Authorization"))

	body, err := io.ReadAll(httpReq.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"inputs": "Hello",
		"parameters": {"max_new_tokens": 100, "temperature": 0.7, "do_sample": true},
		"options": {"wait_for_model": true}
	}`, string(body))
}

func TestFlatten(t *testing.T) {
	intent := domain.Intent{
		System: "You are the assistant of Asif Digital.",
		User:   "What do you charge?",
		History: []domain.Turn{
			{Role: domain.RoleUser, Text: "Hi"},
			{Role: domain.RoleAssistant, Text: "Hello! How can I help?"},
		},
	}

	assert.Equal(t,
		"You are the assistant of Asif Digital.\n\nUser: Hi\nAssistant: Hello! How can I help?\nUser: What do you charge?\nAssistant:",
		flatten(intent))
}

func TestHuggingFaceNewRequestWithHistoryDisablesEcho(t *testing.T) {
	adapter := &HuggingFaceAdapter{BaseURL: "http://hf.test"}
	req := Request{
		Model:  "moonshotai/Kimi-K2-Instruct",
		Intent: domain.Intent{User: "And pricing?", History: []domain.Turn{{Role: domain.RoleUser, Text: "Hi"}}},
		Params: domain.GenerationParams{Temperature: 0.7, MaxTokens: 100},
	}

	httpReq, err := adapter.NewRequest(context.Background(), req)
	require.NoError(t, err)

	body, err := io.ReadAll(httpReq.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"inputs": "User: Hi\nUser: And pricing?\nAssistant:",
		"parameters": {"max_new_tokens": 100, "temperature": 0.7, "do_sample": true, "return_full_text": false},
		"options": {"wait_for_model": true}
	}`, string(body))
}

// echoingInference mimics text generation: generated_text starts with the
// prompt unless return_full_text is false.
func echoingInference(t *testing.T, reply string, inputs *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req hfRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode inference request: %v", err)
		}
		*inputs = req.Inputs
		text := reply
		if req.Parameters.ReturnFullText == nil || *req.Parameters.ReturnFullText {
			text = req.Inputs + reply
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]hfGeneration{{GeneratedText: &text}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChatbotEndpointReturnsOnlyGeneratedReply(t *testing.T) {
	chatbot, err := endpoints.Lookup(endpoints.Catalog(config.FieldsConfig{Chatbot: "response"}), endpoints.Chatbot)
	require.NoError(t, err)

	tests := []struct {
		name       string
		payload    domain.Payload
		wantInputs string
		wantText   string
	}{
		{
			name:       "bare message",
			payload:    domain.Payload{"message": "What do you charge?"},
			wantInputs: "What do you charge?",
			wantText:   "What do you charge? Packages start at AED 1,500.",
		},
		{
			name: "with history",
			payload: domain.Payload{
				"message": "What do you charge?",
				"history": []interface{}{
					map[string]interface{}{"role": "user", "text": "Hi"},
					map[string]interface{}{"role": "assistant", "text": "Hello! How can I help?"},
				},
			},
			wantInputs: "User: Hi\nAssistant: Hello! How can I help?\nUser: What do you charge?\nAssistant:",
			wantText:   " Packages start at AED 1,500.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var inputs string
			srv := echoingInference(t, " Packages start at AED 1,500.", &inputs)
			intent, err := prompt.Build(chatbot, tt.payload)
			require.NoError(t, err)
			client := NewClient(srv.Client(), &MockLogger{})

			// Act
			completion, err := client.Complete(context.Background(), &HuggingFaceAdapter{BaseURL: srv.URL}, Request{
				Model:  chatbot.Model,
				APIKey: "hf_test",
				Intent: intent,
				Params: chatbot.Params,
			})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantInputs, inputs)
			assert.Equal(t, tt.wantText, completion.Text)
			assert.NotContains(t, completion.Text, "Assistant:")
		})
	}
}

func TestHuggingFaceExtractText(t *testing.T) {
	adapter := &HuggingFaceAdapter{}

	text, ok := adapter.ExtractText([]byte(`[{"generated_text":"We manage social media."}]`))
	assert.True(t, ok)
	assert.Equal(t, "We manage social media.", text)

	_, ok = adapter.ExtractText([]byte(`[]`))
	assert.False(t, ok)

	_, ok = adapter.ExtractText([]byte(`{"generated_text":"not an array"}`))
	assert.False(t, ok)

	_, ok = adapter.ExtractText([]byte(`[{"generated_text":""}]`))
	assert.False(t, ok)
}

func TestHuggingFaceExtractError(t *testing.T) {
	adapter := &HuggingFaceAdapter{}

	assert.Equal(t, "Model is currently loading", adapter.ExtractError([]byte(`{"error":"Model is currently loading","estimated_time":20}`)))
	assert.Equal(t, "", adapter.ExtractError([]byte(`[{"generated_text":"x"}]`)))
}
