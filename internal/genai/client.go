package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/growthzi/apiserver/config"
	"github.com/growthzi/apiserver/types"
)

// ErrBadContent is returned when the model's response does not parse
// into the expected site-content shape. Generation is not retried.
var ErrBadContent = errors.New("generated content does not match the expected shape")

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("generative-content service is not configured")

const defaultRequestTimeout = 60 * time.Second

// Client calls the Gemini generateContent endpoint to produce site
// content for a business type and industry.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client from config.
func NewClient(cfg config.GenAIConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate produces site content for the given business type and
// industry. A response that does not parse into the fixed content
// shape fails with ErrBadContent.
func (c *Client) Generate(ctx context.Context, businessType, industry string) (types.SiteContent, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return types.SiteContent{}, ErrNotConfigured
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: buildPrompt(businessType, industry)}}}},
	})
	if err != nil {
		return types.SiteContent{}, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return types.SiteContent{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.SiteContent{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return types.SiteContent{}, fmt.Errorf("generation request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.SiteContent{}, err
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return types.SiteContent{}, fmt.Errorf("%w: %v", ErrBadContent, err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return types.SiteContent{}, fmt.Errorf("%w: empty response", ErrBadContent)
	}

	text := stripCodeFence(decoded.Candidates[0].Content.Parts[0].Text)
	var content types.SiteContent
	if err := json.Unmarshal([]byte(text), &content); err != nil {
		return types.SiteContent{}, fmt.Errorf("%w: %v", ErrBadContent, err)
	}
	if content.Title == "" {
		return types.SiteContent{}, fmt.Errorf("%w: missing title", ErrBadContent)
	}
	return content, nil
}

func buildPrompt(businessType, industry string) string {
	return fmt.Sprintf(`Generate website content for a company.
- Business Type: %s
- Industry: %s

The output MUST be a single, valid JSON object. Do not include any text, notes, or markdown formatting before or after the JSON object.
The JSON structure should be exactly this:
{
  "title": "A short, catchy company name",
  "hero": {
    "headline": "A powerful headline (max 10 words)",
    "subheading": "An engaging subheading that explains more (max 20 words)",
    "cta_button_text": "A call-to-action button text (max 4 words)"
  },
  "about": {
    "title": "About Us",
    "text": "A descriptive paragraph about the company's mission and values (around 50 words)."
  },
  "services": [
    { "name": "Service One Name", "description": "A brief description of the first service (around 20 words)." },
    { "name": "Service Two Name", "description": "A brief description of the second service (around 20 words)." },
    { "name": "Service Three Name", "description": "A brief description of the third service (around 20 words)." }
  ]
}`, businessType, industry)
}

// stripCodeFence removes a surrounding markdown code fence when the
// model adds one despite the prompt.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
