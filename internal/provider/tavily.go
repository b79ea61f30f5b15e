// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/dossier-engine/internal/httputil"
	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// tavilySearchURL is the Tavily search endpoint. Declared as a var so tests
// can substitute an httptest server.
var tavilySearchURL = "https://api.tavily.com/search"

// TavilyClient queries the Tavily web search API. It serves both the broad
// identity search and the recency-filtered news/social searches.
type TavilyClient struct {
	APIKey     string
	Client     *http.Client
	MaxRetries int
}

// NewTavilyClient builds a client from provider settings.
func NewTavilyClient(cfg types.ProviderConfig) *TavilyClient {
	return &TavilyClient{
		APIKey:     cfg.APIKey,
		Client:     httpClient(nil, cfg.Timeout),
		MaxRetries: cfg.MaxRetries,
	}
}

type tavilyResponse struct {
	Answer  string            `json:"answer"`
	Results []types.WebResult `json:"results"`
}

// Search runs one query. A missing API key yields a ConfigurationError
// without any network traffic.
func (c *TavilyClient) Search(ctx context.Context, req types.WebSearchRequest) (types.WebSearchResponse, error) {
	if c.APIKey == "" {
		return types.WebSearchResponse{}, &types.ConfigurationError{Key: secrets.TavilyKey}
	}
	if req.Depth == "" {
		req.Depth = types.DepthBasic
	}

	body, err := json.Marshal(req)
	if err != nil {
		return types.WebSearchResponse{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilySearchURL, bytes.NewReader(body))
	if err != nil {
		return types.WebSearchResponse{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := httputil.DoWithRetry(ctx, httpClient(c.Client, 0), httpReq, c.MaxRetries)
	if err != nil {
		return types.WebSearchResponse{}, failure(NameTavily, "search", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.WebSearchResponse{}, failure(NameTavily, "search", resp.StatusCode,
			fmt.Errorf("%s", httputil.ReadErrorBody(resp)))
	}

	var tr tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return types.WebSearchResponse{}, failure(NameTavily, "search", resp.StatusCode,
			fmt.Errorf("decoding response: %w", err))
	}

	return types.WebSearchResponse{Answer: tr.Answer, Results: tr.Results}, nil
}
