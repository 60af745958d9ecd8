// Package validation checks raw invocations before any prompt is built
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// Validate turns a raw invocation into a Payload for the given endpoint.
// Checks run in a fixed order: method, body presence, JSON syntax, required
// fields (in endpoint order), then field types.
func Validate(method string, body []byte, endpoint domain.Endpoint) (domain.Payload, error) {
	if method != http.MethodPost {
		return nil, domain.NewMethodNotAllowed()
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, domain.NewBadRequest("Request body is missing.", domain.ErrMissingBody)
	}

	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, domain.NewBadRequest("Invalid JSON.", fmt.Errorf("%w: %v", domain.ErrInvalidJSON, err))
	}

	var payload domain.Payload
	switch v := raw.(type) {
	case map[string]interface{}:
		payload = v
	case nil:
		payload = domain.Payload{}
	default:
		return nil, domain.NewBadRequest("Request body must be a JSON object.", domain.ErrInvalidJSON)
	}

	for _, name := range endpoint.RequiredFields() {
		if isFalsy(payload[name]) {
			return nil, domain.NewMissingField(name)
		}
	}

	if err := checkTypes(payload, endpoint.Fields); err != nil {
		return nil, err
	}

	return payload, nil
}

// isFalsy mirrors JavaScript truthiness for decoded JSON values
func isFalsy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	default:
		return false
	}
}

func checkTypes(payload domain.Payload, fields []domain.FieldSpec) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(Schema(fields)),
		gojsonschema.NewGoLoader(map[string]interface{}(payload)),
	)
	if err != nil {
		return domain.NewBadRequest("Invalid JSON.", fmt.Errorf("%w: %v", domain.ErrInvalidJSON, err))
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].Field() < errs[j].Field()
	})
	first := errs[0]
	return domain.NewBadRequest(
		fmt.Sprintf("Invalid %q in request body: %s", first.Field(), first.Description()),
		fmt.Errorf("%w: %s", domain.ErrInvalidField, first.Field()),
	)
}

// Schema builds the JSON Schema describing an endpoint's known fields.
// Presence is not part of the schema; required fields are checked beforehand
// with truthiness semantics, so null is accepted here. Unknown fields are allowed.
func Schema(fields []domain.FieldSpec) map[string]interface{} {
	properties := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		properties[f.Name] = map[string]interface{}{
			"type": []interface{}{string(f.Type), "null"},
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
}
