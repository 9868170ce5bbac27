// Package llm talks to an OpenAI-compatible content provider and shapes the
// itinerary and icebreaker requests and responses.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/safepassage/safepassage/pkg/config"
	"github.com/safepassage/safepassage/pkg/domain"
)

// Client wraps the OpenAI-compatible API client
type Client struct {
	client *openai.Client
	cfg    config.LLMConfig
}

// NewClient creates a client for the configured provider
func NewClient(cfg config.LLMConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = cfg.Endpoint
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{client: openai.NewClientWithConfig(clientConfig), cfg: cfg}
}

// Options control a single generation call
type Options struct {
	Grounding   bool    // ask the model to back the answer with web sources
	Temperature float32 // 0 leaves the provider default
}

// groundingSystemPrompt makes grounded responses machine-parseable: the model
// answers with a single JSON object carrying the markdown and its sources.
const groundingSystemPrompt = `You are a travel content generator with web search access.
Respond with a single JSON object of the form:
{"markdown": "<the full response in clean Markdown>", "sources": [{"title": "<page title>", "uri": "<page url>"}]}
List every web source you relied on. Do not wrap the JSON in code fences or add any other text.`

// groundedResponse is the wire shape of a grounded generation answer
type groundedResponse struct {
	Markdown string                   `json:"markdown"`
	Sources  []domain.GroundingSource `json:"sources"`
}

// Generate performs exactly one completion attempt and returns the generated
// text plus grounding sources (empty unless Grounding is enabled). Retry
// policy, if any, belongs to the caller.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, []domain.GroundingSource, error) {
	if c.cfg.APIKey == "" {
		return "", nil, domain.NewError(domain.KindGeneration, "content provider API key is missing")
	}

	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: opts.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	if opts.Grounding {
		req.Messages = append([]openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: groundingSystemPrompt},
		}, req.Messages...)
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", nil, domain.WrapError(domain.KindGeneration, err, "content provider request failed")
	}
	if len(resp.Choices) == 0 {
		return "", nil, domain.NewError(domain.KindGeneration, "no response from content provider")
	}

	content := resp.Choices[0].Message.Content
	if !opts.Grounding {
		return strings.TrimSpace(content), nil, nil
	}

	grounded, err := parseGrounded(content)
	if err != nil {
		return "", nil, domain.WrapError(domain.KindGeneration, err, "malformed grounded response")
	}
	return grounded.Markdown, grounded.Sources, nil
}

// parseGrounded extracts the JSON object from the raw model output, tolerating
// stray text around it
func parseGrounded(content string) (*groundedResponse, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no json object found in response")
	}

	var resp groundedResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse json: %w", err)
	}
	return &resp, nil
}
