// Package prompt renders endpoint templates into a provider-neutral Intent.
//
// Caller-supplied text is inserted verbatim. Nothing is escaped beyond the
// JSON encoding done by the provider adapters, so end users can steer the
// model through their input; that limitation is accepted.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// HistoryField is the request field carrying prior conversation turns
const HistoryField = "history"

// Build renders the endpoint's system and user templates with the payload's
// string fields and converts any history into turns.
func Build(endpoint domain.Endpoint, payload domain.Payload) (domain.Intent, error) {
	data := templateData(endpoint, payload)

	system, err := render(endpoint.Name+"/system", endpoint.SystemTemplate, data)
	if err != nil {
		return domain.Intent{}, err
	}
	user, err := render(endpoint.Name+"/user", endpoint.UserTemplate, data)
	if err != nil {
		return domain.Intent{}, err
	}

	return domain.Intent{
		System:  system,
		User:    user,
		History: Turns(payload[HistoryField]),
	}, nil
}

func templateData(endpoint domain.Endpoint, payload domain.Payload) map[string]string {
	data := make(map[string]string, len(endpoint.Fields))
	for _, f := range endpoint.Fields {
		if f.Type == domain.FieldString {
			data[f.Name] = payload.String(f.Name)
		}
	}
	return data
}

func render(name, text string, data map[string]string) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("prompt: parse %s: %w", name, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Turns converts a decoded history array into conversation turns.
// Elements that are not objects, or carry no text, are skipped.
func Turns(v interface{}) []domain.Turn {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var turns []domain.Turn
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		text := turnText(obj)
		if text == "" {
			continue
		}
		turns = append(turns, domain.Turn{Role: turnRole(obj["role"]), Text: text})
	}
	return turns
}

func turnRole(v interface{}) domain.Role {
	s, _ := v.(string)
	switch strings.ToLower(s) {
	case "assistant", "model", "bot":
		return domain.RoleAssistant
	default:
		return domain.RoleUser
	}
}

// turnText accepts the OpenAI shape (content), a flat text field, and the
// Gemini shape (parts[].text).
func turnText(obj map[string]interface{}) string {
	if s, ok := obj["content"].(string); ok && s != "" {
		return s
	}
	if s, ok := obj["text"].(string); ok && s != "" {
		return s
	}
	parts, ok := obj["parts"].([]interface{})
	if !ok {
		return ""
	}
	var texts []string
	for _, p := range parts {
		if part, ok := p.(map[string]interface{}); ok {
			if s, ok := part["text"].(string); ok && s != "" {
				texts = append(texts, s)
			}
		}
	}
	return strings.Join(texts, "\n")
}
