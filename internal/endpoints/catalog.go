// Package endpoints holds the canonical definition of every deployed function
package endpoints

import (
	"fmt"

	"github.com/asifdigital/ai-marketing-functions/internal/config"
	"github.com/asifdigital/ai-marketing-functions/internal/domain"
)

// Endpoint names double as URL paths and match the Netlify function names
// the front end already calls.
const (
	AdCopy       = "ad-copy-generator"
	ContentIdeas = "content-generator"
	SocialPost   = "generator-proxy"
	Chatbot      = "proxy"
)

const geminiModel = "gemini-2.5-flash-preview-05-20"

const adCopySystem = `You are an expert copywriter specializing in high-converting ad copy for platforms like Google Ads and Facebook Ads. Generate a compelling headline and a short, punchy ad description based on the user's topic. Format the response as: **Headline:** [Your Headline] **Description:** [Your Description]`

const adCopyUser = `Generate ad copy for: "{{.topic}}"
{{- with .product}}
Product: {{.}}{{end}}
{{- with .audience}}
Target audience: {{.}}{{end}}
{{- with .platform}}
Platform: {{.}}{{end}}`

const contentIdeasSystem = `You are a creative social media marketing expert for businesses in the UAE.
Generate 5 unique and engaging social media post ideas for a client in the following industry: "{{.industry}}".
For each idea, specify the platform (e.g., Instagram Reel, Facebook Post, TikTok Video) and provide a catchy caption.
Format the output clearly and professionally with headings for each idea.`

const socialPostSystem = `You are 'Sparky', an expert social media manager for 'Asif Digital', a digital marketing agency in the UAE.
Your task is to generate an engaging, professional, and creative social media post based on a given topic.

**Strict Rules:**
1. **Format:** The post must be a single block of text.
2. **Tone:** Be upbeat, professional, and persuasive.
3. **Content:** Include relevant emojis and 2-3 popular, relevant hashtags (e.g., #DubaiLife, #SharjahBusiness, #UAEMarketing).
4. **Clarity:** Ensure the post is clear, concise, and ready to be copied and pasted directly to platforms like Instagram or Facebook.
5. **Output:** ONLY output the generated post content. Do not add any introductory text like "Here is your post:" or any other conversational filler.`

// Catalog returns the four endpoints with envelope field names taken from config
func Catalog(fields config.FieldsConfig) []domain.Endpoint {
	return []domain.Endpoint{
		{
			Name:     AdCopy,
			Provider: domain.ProviderGemini,
			Model:    geminiModel,
			Fields: []domain.FieldSpec{
				{Name: "topic", Type: domain.FieldString, Required: true},
				{Name: "product", Type: domain.FieldString},
				{Name: "audience", Type: domain.FieldString},
				{Name: "platform", Type: domain.FieldString},
			},
			SystemTemplate: adCopySystem,
			UserTemplate:   adCopyUser,
			Params:         domain.GenerationParams{Temperature: 0.8, MaxTokens: 150},
			ResponseField:  fields.AdCopy,
			Fallback:       "Sorry, I couldn't generate ad copy. Please try again.",
		},
		{
			Name:     ContentIdeas,
			Provider: domain.ProviderOpenRouter,
			Model:    "google/gemini-pro",
			Fields: []domain.FieldSpec{
				{Name: "industry", Type: domain.FieldString, Required: true},
			},
			SystemTemplate: contentIdeasSystem,
			Params:         domain.GenerationParams{Temperature: 0.7, MaxTokens: 500},
			ResponseField:  fields.ContentIdeas,
			Fallback:       "Sorry, I couldn't generate ideas right now.",
		},
		{
			Name:     SocialPost,
			Provider: domain.ProviderGemini,
			Model:    geminiModel,
			Fields: []domain.FieldSpec{
				{Name: "topic", Type: domain.FieldString, Required: true},
			},
			SystemTemplate: socialPostSystem,
			UserTemplate:   `Topic: "{{.topic}}"`,
			Params:         domain.GenerationParams{Temperature: 0.7, MaxTokens: 256},
			ResponseField:  fields.SocialPost,
			Fallback:       "Sorry, I couldn't generate a post right now. Please try again.",
		},
		{
			Name:     Chatbot,
			Provider: domain.ProviderHuggingFace,
			Model:    "moonshotai/Kimi-K2-Instruct",
			Fields: []domain.FieldSpec{
				{Name: "message", Type: domain.FieldString, Required: true},
				{Name: "history", Type: domain.FieldArray},
			},
			UserTemplate:  `{{.message}}`,
			Params:        domain.GenerationParams{Temperature: 0.7, MaxTokens: 100},
			ResponseField: fields.Chatbot,
			Fallback:      "Unexpected response from AI. Please try again.",
		},
	}
}

// Lookup finds an endpoint by name
func Lookup(catalog []domain.Endpoint, name string) (domain.Endpoint, error) {
	for _, e := range catalog {
		if e.Name == name {
			return e, nil
		}
	}
	return domain.Endpoint{}, fmt.Errorf("unknown endpoint %q", name)
}
