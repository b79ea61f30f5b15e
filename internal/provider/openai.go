// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"

	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// OpenAIWebSearch is the fallback researcher: an OpenAI model with the
// hosted web search tool, called through the Responses API.
type OpenAIWebSearch struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	BaseURL    string
}

// NewOpenAIWebSearch builds a client from provider settings.
func NewOpenAIWebSearch(cfg types.ProviderConfig) *OpenAIWebSearch {
	return &OpenAIWebSearch{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		BaseURL:    cfg.BaseURL,
	}
}

// Name identifies the fallback in documents and logs.
func (c *OpenAIWebSearch) Name() string { return "OpenAI" }

// Research asks the model to search the web and returns its text output.
func (c *OpenAIWebSearch) Research(ctx context.Context, p types.Prompt) (string, error) {
	if c.APIKey == "" {
		return "", &types.ConfigurationError{Key: secrets.OpenAIKey}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithMaxRetries(c.MaxRetries),
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	if c.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(c.Timeout))
	}
	client := openai.NewClient(opts...)

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.Model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(p.User)},
	}
	if p.System != "" {
		params.Instructions = openai.String(p.System)
	}

	resp, err := client.Responses.New(ctx, params,
		option.WithJSONSet("tools", []map[string]string{{"type": "web_search_preview"}}))
	if err != nil {
		return "", failure(NameOpenAI, "research", apiStatus(err), err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", failure(NameOpenAI, "research", 0, errors.New("no text output"))
	}
	return text, nil
}
