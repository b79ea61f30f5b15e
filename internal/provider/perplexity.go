// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// perplexityBaseURL is the OpenAI-compatible Perplexity endpoint.
var perplexityBaseURL = "https://api.perplexity.ai/"

// PerplexityClient runs deep research through Perplexity's Sonar models,
// which search the web before answering. It speaks the OpenAI chat
// completions dialect, so the official openai-go SDK drives it.
type PerplexityClient struct {
	APIKey string
	Model  string

	// RecencyFilter limits searched sources by age ("day", "week", "month").
	RecencyFilter string

	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	BaseURL     string
}

// NewPerplexityClient builds a client from provider settings.
func NewPerplexityClient(cfg types.ProviderConfig) *PerplexityClient {
	return &PerplexityClient{
		APIKey:        cfg.APIKey,
		Model:         cfg.Model,
		RecencyFilter: "month",
		Temperature:   0.1,
		Timeout:       cfg.Timeout,
		MaxRetries:    cfg.MaxRetries,
		BaseURL:       cfg.BaseURL,
	}
}

// Research sends the research brief and returns the answer. Source URLs
// reported by the provider are appended as a numbered list.
func (c *PerplexityClient) Research(ctx context.Context, p types.Prompt) (string, error) {
	if c.APIKey == "" {
		return "", &types.ConfigurationError{Key: secrets.PerplexityKey}
	}

	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = perplexityBaseURL
	}
	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(c.MaxRetries),
	}
	if c.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(c.Timeout))
	}
	client := openai.NewClient(opts...)

	var msgs []openai.ChatCompletionMessageParamUnion
	if p.System != "" {
		msgs = append(msgs, openai.SystemMessage(p.System))
	}
	msgs = append(msgs, openai.UserMessage(p.User))

	var callOpts []option.RequestOption
	if c.RecencyFilter != "" {
		callOpts = append(callOpts, option.WithJSONSet("search_recency_filter", c.RecencyFilter))
	}

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.Model),
		Messages:    msgs,
		Temperature: openai.Float(c.Temperature),
	}, callOpts...)
	if err != nil {
		return "", failure(NamePerplexity, "research", apiStatus(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", failure(NamePerplexity, "research", 0, errors.New("empty choices"))
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", failure(NamePerplexity, "research", 0, errors.New("empty answer"))
	}
	return content + formatCitations(gjson.Get(resp.RawJSON(), "citations")), nil
}

// formatCitations renders the provider's citation URLs, or "" when absent.
func formatCitations(citations gjson.Result) string {
	urls := citations.Array()
	if len(urls) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n---\n### Quellen (Perplexity)\n")
	for i, u := range urls {
		fmt.Fprintf(&b, "%d. %s\n", i+1, u.String())
	}
	return b.String()
}

// apiStatus extracts the HTTP status from an openai-go API error.
func apiStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
