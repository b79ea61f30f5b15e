// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// GeminiSearch is the secondary fallback researcher: a Gemini model with
// Google Search grounding.
type GeminiSearch struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	BaseURL string
}

// NewGeminiSearch builds a client from provider settings.
func NewGeminiSearch(cfg types.ProviderConfig) *GeminiSearch {
	return &GeminiSearch{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		BaseURL: cfg.BaseURL,
	}
}

// Name identifies the fallback in documents and logs.
func (g *GeminiSearch) Name() string { return "Gemini" }

// Research runs the brief with search grounding and returns the text answer.
func (g *GeminiSearch) Research(ctx context.Context, p types.Prompt) (string, error) {
	if g.APIKey == "" {
		return "", &types.ConfigurationError{Key: secrets.GeminiKey}
	}
	ctx, cancel := withTimeout(ctx, g.Timeout)
	defer cancel()

	cc := &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", failure(NameGemini, "research", 0, fmt.Errorf("creating client: %w", err))
	}

	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	if p.System != "" {
		config.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, g.Model, genai.Text(p.User), config)
	if err != nil {
		return "", failure(NameGemini, "research", geminiStatus(err), err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", failure(NameGemini, "research", 0, errors.New("no text output"))
	}
	return text, nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
