package vision

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GeminiClient tags images through the Google Gemini API, as an
// alternative backend to Azure.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates the Gemini adapter. A missing API key disables
// the client; it reports ErrNotConfigured on use.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if apiKey == "" {
		log.Warn("Gemini API key not provided. Gemini tagging will be unavailable.")
		return &GeminiClient{model: model}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) GetTags(ctx context.Context, image []byte) ([]Tag, error) {
	if c.client == nil {
		return nil, fmt.Errorf("gemini api key missing: %w", ErrNotConfigured)
	}

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData("jpeg", image),
		genai.Text(tagPrompt),
	)
	if err != nil {
		return nil, &UpstreamError{Provider: c.Name(), Msg: err.Error()}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &UpstreamError{Provider: c.Name(), Msg: "no candidates returned"}
	}

	var content string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			content += string(text)
		}
	}
	return parseModelTags(c.Name(), content)
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

var _ Client = (*GeminiClient)(nil)
