package endpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asifdigital/ai-marketing-functions/internal/config"
	"github.com/asifdigital/ai-marketing-functions/internal/domain"
	"github.com/asifdigital/ai-marketing-functions/internal/prompt"
)

var defaultFields = config.FieldsConfig{
	AdCopy:       "ad_copy",
	ContentIdeas: "ideas",
	SocialPost:   "post",
	Chatbot:      "response",
}

func TestCatalog(t *testing.T) {
	catalog := Catalog(defaultFields)

	tests := []struct {
		name     string
		provider domain.ProviderKind
		required []string
		field    string
	}{
		{AdCopy, domain.ProviderGemini, []string{"topic"}, "ad_copy"},
		{ContentIdeas, domain.ProviderOpenRouter, []string{"industry"}, "ideas"},
		{SocialPost, domain.ProviderGemini, []string{"topic"}, "post"},
		{Chatbot, domain.ProviderHuggingFace, []string{"message"}, "response"},
	}

	require.Len(t, catalog, len(tests))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, err := Lookup(catalog, tt.name)

			require.NoError(t, err)
			assert.Equal(t, tt.provider, endpoint.Provider)
			assert.Equal(t, tt.required, endpoint.RequiredFields())
			assert.Equal(t, tt.field, endpoint.ResponseField)
			assert.NotEmpty(t, endpoint.Model)
			assert.NotEmpty(t, endpoint.Fallback)
			assert.NotZero(t, endpoint.Params.MaxTokens)
		})
	}
}

func TestCatalogUsesConfiguredFieldNames(t *testing.T) {
	fields := defaultFields
	fields.AdCopy = "adCopy"
	fields.SocialPost = "response"

	catalog := Catalog(fields)

	adCopy, err := Lookup(catalog, AdCopy)
	require.NoError(t, err)
	assert.Equal(t, "adCopy", adCopy.ResponseField)
	post, err := Lookup(catalog, SocialPost)
	require.NoError(t, err)
	assert.Equal(t, "response", post.ResponseField)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup(Catalog(defaultFields), "image-generator")

	assert.Error(t, err)
}

func TestCatalogTemplatesRender(t *testing.T) {
	catalog := Catalog(defaultFields)

	adCopy, err := Lookup(catalog, AdCopy)
	require.NoError(t, err)
	intent, err := prompt.Build(adCopy, domain.Payload{
		"topic":    "Summer sale",
		"product":  "sunglasses",
		"audience": "tourists",
		"platform": "Instagram",
	})
	require.NoError(t, err)
	assert.Equal(t, "Generate ad copy for: \"Summer sale\"\nProduct: sunglasses\nTarget audience: tourists\nPlatform: Instagram", intent.User)

	ideas, err := Lookup(catalog, ContentIdeas)
	require.NoError(t, err)
	intent, err = prompt.Build(ideas, domain.Payload{"industry": "real estate"})
	require.NoError(t, err)
	assert.Contains(t, intent.System, `industry: "real estate"`)
	assert.Empty(t, intent.User)

	post, err := Lookup(catalog, SocialPost)
	require.NoError(t, err)
	intent, err = prompt.Build(post, domain.Payload{"topic": "Summer sale"})
	require.NoError(t, err)
	assert.Contains(t, intent.System, "Sparky")
	assert.Equal(t, `Topic: "Summer sale"`, intent.User)
}
