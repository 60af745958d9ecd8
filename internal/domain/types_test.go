package domain

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeMarshalJSON(t *testing.T) {
	env := Envelope{Field: "post", Text: "🔥 Big Sale! #Dubai <b>&</b>", Degraded: true}

	data, err := env.MarshalJSON()

	require.NoError(t, err)
	assert.Equal(t, `{"post":"🔥 Big Sale! #Dubai <b>&</b>"}`, string(data))
}

func TestEnvelopeMarshalThroughEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err := enc.Encode(&Envelope{Field: "ad_copy", Text: "**Headline:** A & B"})

	require.NoError(t, err)
	assert.Equal(t, "{\"ad_copy\":\"**Headline:** A & B\"}\n", buf.String())
}

func TestPayloadString(t *testing.T) {
	p := Payload{"topic": "Summer sale", "count": 3.0}

	assert.Equal(t, "Summer sale", p.String("topic"))
	assert.Equal(t, "", p.String("count"))
	assert.Equal(t, "", p.String("missing"))
}

func TestRequiredFieldsKeepsOrder(t *testing.T) {
	e := Endpoint{Fields: []FieldSpec{
		{Name: "product", Type: FieldString, Required: true},
		{Name: "audience", Type: FieldString},
		{Name: "platform", Type: FieldString, Required: true},
	}}

	assert.Equal(t, []string{"product", "platform"}, e.RequiredFields())
}

func TestEnvSecrets(t *testing.T) {
	t.Setenv("GENAI_TEST_SECRET", "")
	_, ok := EnvSecrets("GENAI_TEST_SECRET")
	assert.False(t, ok)

	t.Setenv("GENAI_TEST_SECRET", "abc")
	v, ok := EnvSecrets("GENAI_TEST_SECRET")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}
