// Package ai wraps the Gemini API for text and image generation.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	db_models "lumina-backend/internal/models"
)

// Client forwards prompts to the Gemini API with a model selection keyed by
// turn type.
type Client struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewClient creates a Gemini-backed generation client.
func NewClient(ctx context.Context, apiKey, textModel, imageModel string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}
	return &Client{
		client:     c,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

// Generate produces a single string result for the prompt.
//
// Text mode returns the model's text output verbatim. Image mode returns an
// inline image payload as a data URI when the model provides one; otherwise
// the model's textual output is treated as a synthesis instruction and turned
// into an image service URL (see SynthesisReference).
func (c *Client) Generate(ctx context.Context, prompt string, mode db_models.MessageType) (string, error) {
	model := c.textModel
	if mode == db_models.TypeImage {
		model = c.imageModel
	}

	result, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("ai: generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("ai: generation returned no candidates")
	}

	if mode == db_models.TypeImage {
		if uri, ok := inlineImageURI(result); ok {
			return uri, nil
		}
		// No native image payload: fall back to parsing the text output.
		return SynthesisReference(textOf(result)), nil
	}

	return textOf(result), nil
}

// inlineImageURI extracts the first inline image part as a data URI.
func inlineImageURI(result *genai.GenerateContentResponse) (string, bool) {
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			uri := fmt.Sprintf("data:%s;base64,%s",
				part.InlineData.MIMEType,
				base64.StdEncoding.EncodeToString(part.InlineData.Data))
			return uri, true
		}
	}
	return "", false
}

// textOf concatenates the text parts of the first candidate.
func textOf(result *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
