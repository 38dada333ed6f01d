package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const tagPrompt = `Identify the objects visible in this photo of goods for a local produce marketplace.
Respond with a JSON object of the form {"tags": [{"name": "...", "confidence": 0.0}]} where confidence is in [0,1].
List the most confident tags first. Respond with JSON only, no markdown.`

// OpenAIClient tags images through an OpenAI vision-capable chat model,
// as an alternative backend to Azure.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates the OpenAI adapter. A missing API key disables
// the client; it reports ErrNotConfigured on use.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	if apiKey == "" {
		log.Warn("OpenAI API key not provided. OpenAI tagging will be unavailable.")
		return &OpenAIClient{model: model}
	}
	return &OpenAIClient{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) GetTags(ctx context.Context, image []byte) ([]Tag, error) {
	if c.client == nil {
		return nil, fmt.Errorf("openai api key missing: %w", ErrNotConfigured)
	}

	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: tagPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, &UpstreamError{Provider: c.Name(), Msg: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return nil, &UpstreamError{Provider: c.Name(), Msg: "no choices returned"}
	}

	return parseModelTags(c.Name(), resp.Choices[0].Message.Content)
}

// parseModelTags decodes the JSON tag payload a chat model was instructed
// to produce. Code fences are stripped first; anything else unparseable is
// an upstream failure.
func parseModelTags(provider, content string) ([]Tag, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var parsed struct {
		Tags []struct {
			Name       string  `json:"name"`
			Confidence float64 `json:"confidence"`
		} `json:"tags"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, &UpstreamError{Provider: provider, Msg: "failed to parse model response as JSON: " + err.Error()}
	}
	if parsed.Tags == nil {
		return nil, &UpstreamError{Provider: provider, Msg: "model response missing tags field"}
	}

	tags := make([]Tag, 0, len(parsed.Tags))
	for _, t := range parsed.Tags {
		if t.Name == "" {
			continue
		}
		confidence := t.Confidence
		if confidence < 0 {
			confidence = 0
		} else if confidence > 1 {
			confidence = 1
		}
		tags = append(tags, Tag{Label: t.Name, Confidence: confidence})
	}
	return sortTags(tags), nil
}

var _ Client = (*OpenAIClient)(nil)
