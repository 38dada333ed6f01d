package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultAzureFeatures is the visual feature set requested from the
// Azure analyze endpoint. Only tags are consumed by the pipeline.
const DefaultAzureFeatures = "Tags"

// AzureClient tags images via the Azure Computer Vision v3.2 analyze API.
type AzureClient struct {
	endpoint   string
	key        string
	features   string
	httpClient *http.Client
}

// NewAzureClient creates the Azure adapter. Missing endpoint or key does
// not fail construction; the client reports ErrNotConfigured on use, so a
// misconfigured deployment fails its first request rather than boot.
func NewAzureClient(endpoint, key, features string, httpClient *http.Client) *AzureClient {
	if features == "" {
		features = DefaultAzureFeatures
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if endpoint == "" || key == "" {
		log.Warn("Azure Vision endpoint or key not provided. Azure tagging will be unavailable.")
	}
	return &AzureClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		features:   features,
		httpClient: httpClient,
	}
}

func (c *AzureClient) Name() string { return "azure" }

func (c *AzureClient) analyzeURL() string {
	return fmt.Sprintf("%s/vision/v3.2/analyze?visualFeatures=%s", c.endpoint, url.QueryEscape(c.features))
}

// GetTags sends the raw image bytes to the analyze endpoint and returns
// the tag list sorted by descending confidence. Any non-success status or
// a payload without a tags field is an upstream failure, never an empty
// result.
func (c *AzureClient) GetTags(ctx context.Context, image []byte) ([]Tag, error) {
	if c.endpoint == "" || c.key == "" {
		return nil, fmt.Errorf("azure vision endpoint/key missing: %w", ErrNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analyzeURL(), bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to build azure vision request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Provider: c.Name(), Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Msg: strings.TrimSpace(string(body))}
	}

	var payload struct {
		Tags []struct {
			Name       string  `json:"name"`
			Confidence float64 `json:"confidence"`
		} `json:"tags"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Msg: "unparseable analyze response: " + err.Error()}
	}
	if payload.Tags == nil {
		return nil, &UpstreamError{Provider: c.Name(), Status: resp.StatusCode, Msg: "analyze response missing tags field"}
	}

	tags := make([]Tag, 0, len(payload.Tags))
	for _, t := range payload.Tags {
		if t.Name == "" {
			continue
		}
		tags = append(tags, Tag{Label: t.Name, Confidence: t.Confidence})
	}
	return sortTags(tags), nil
}

var _ Client = (*AzureClient)(nil)
