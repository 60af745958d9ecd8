// Package domain contains domain models and interfaces shared by the generation pipeline
package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"
)

// ProviderKind identifies an upstream generative-AI API
type ProviderKind string

const (
	ProviderGemini      ProviderKind = "gemini"
	ProviderOpenRouter  ProviderKind = "openrouter"
	ProviderHuggingFace ProviderKind = "huggingface"
)

// FieldType is the JSON type a request field must carry
type FieldType string

const (
	FieldString FieldType = "string"
	FieldArray  FieldType = "array"
)

// FieldSpec describes one request body field of an endpoint
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool
}

// GenerationParams are the static tuning constants sent upstream
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
}

// Endpoint is the deploy-time definition of one logical function.
// Fields are checked in declaration order, so the first missing required
// field is always the one reported.
type Endpoint struct {
	Name           string
	Provider       ProviderKind
	Model          string
	Fields         []FieldSpec
	SystemTemplate string
	UserTemplate   string
	Params         GenerationParams
	ResponseField  string
	Fallback       string
}

// RequiredFields returns the names of required fields in check order
func (e Endpoint) RequiredFields() []string {
	var names []string
	for _, f := range e.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Invocation is the raw input of one function call
type Invocation struct {
	Method    string
	Body      []byte
	RequestID string
}

// Payload is the decoded request body
type Payload map[string]interface{}

// String returns the field as a string, or "" when absent or not a string
func (p Payload) String(name string) string {
	if s, ok := p[name].(string); ok {
		return s
	}
	return ""
}

// Role of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one prior message of a multi-turn conversation
type Turn struct {
	Role Role
	Text string
}

// Intent is the provider-neutral prompt produced by the prompt builder
type Intent struct {
	System  string
	User    string
	History []Turn
}

// Completion is the text extracted from an upstream success response.
// Degraded is set when the expected field was absent.
type Completion struct {
	Text     string
	Degraded bool
}

// Envelope is the normalized success body returned to callers
type Envelope struct {
	Field    string
	Text     string
	Degraded bool
}

// MarshalJSON renders the envelope as a single-key object. HTML characters
// stay unescaped only when the outer encoder has SetEscapeHTML(false).
func (e Envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]string{e.Field: e.Text}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UsageRecord is one invocation outcome written to the usage ledger.
// It never carries prompt or response text.
type UsageRecord struct {
	RequestID string
	Endpoint  string
	Provider  ProviderKind
	Model     string
	Status    int
	Degraded  bool
	LatencyMs int64
	CreatedAt time.Time
}

// UsageWriter interface (Dependency Inversion Principle)
// Allows swapping Firestore for the Realtime Database or nothing at all
type UsageWriter interface {
	Write(ctx context.Context, record UsageRecord) error
}

// Generator interface
// Main business logic abstraction behind every HTTP function
type Generator interface {
	Generate(ctx context.Context, inv Invocation) (*Envelope, error)
}

// Logger interface (Dependency Inversion Principle)
// Allows swapping logging implementations
type Logger interface {
	Error(msg string, err error, args ...interface{})
	Warn(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// SecretLookup resolves a secret by environment variable name.
// An empty value counts as absent.
type SecretLookup func(name string) (string, bool)

// EnvSecrets reads secrets from the process environment
func EnvSecrets(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
