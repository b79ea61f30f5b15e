// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider adapts the external research and generation services to
// small request/response contracts. Every adapter returns plain text or a
// types.WebSearchResponse and reports failures as *types.ProviderError or
// *types.ConfigurationError.
package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// Provider names used in errors and logs.
const (
	NameTavily     = "tavily"
	NamePerplexity = "perplexity"
	NameAnthropic  = "anthropic"
	NameOpenAI     = "openai"
	NameGemini     = "gemini"
)

// failure wraps err as a ProviderError unless it already is a configuration
// or provider error.
func failure(provider, op string, status int, err error) error {
	var ce *types.ConfigurationError
	if errors.As(err, &ce) {
		return err
	}
	var pe *types.ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &types.ProviderError{Provider: provider, Op: op, Status: status, Err: err}
}

// httpClient returns client, or a new client bounded by timeout.
func httpClient(client *http.Client, timeout time.Duration) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: timeout}
}

// withTimeout applies timeout when ctx has no deadline of its own.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
