// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/dossier-engine/internal/httputil"
	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// anthropicAPIURL is the Claude Messages endpoint. Package-level var for
// test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

const (
	anthropicVersion       = "2023-06-01"
	defaultAnthropicTokens = 8000
)

// AnthropicClient calls the Claude Messages API. One client serves one
// model: the classifier uses a small model, verification and synthesis a
// large one.
type AnthropicClient struct {
	APIKey     string
	Model      string
	Client     *http.Client
	MaxRetries int
	Timeout    time.Duration
}

// NewAnthropicClient builds a client from provider settings.
func NewAnthropicClient(cfg types.ProviderConfig) *AnthropicClient {
	return &AnthropicClient{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Client:     &http.Client{},
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Stream    bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *anthropicError `json:"error,omitempty"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// streamEvent is one SSE data payload of a streaming Messages call.
type streamEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta,omitempty"`
	Error *anthropicError `json:"error,omitempty"`
}

// Complete sends a single-turn prompt and returns the concatenated text
// blocks of the answer.
func (c *AnthropicClient) Complete(ctx context.Context, p types.Prompt) (string, error) {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	resp, err := c.post(ctx, p, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var ar anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", failure(NameAnthropic, "complete", resp.StatusCode, fmt.Errorf("decoding response: %w", err))
	}
	if ar.Error != nil {
		return "", failure(NameAnthropic, "complete", resp.StatusCode, fmt.Errorf("%s: %s", ar.Error.Type, ar.Error.Message))
	}

	var b strings.Builder
	for _, block := range ar.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", failure(NameAnthropic, "complete", resp.StatusCode, fmt.Errorf("no text content in response"))
	}
	return b.String(), nil
}

// ErrTokenLimit reports a generation that stopped at the max_tokens cap.
var ErrTokenLimit = errors.New("output cut off at the token limit")

// Stream sends a prompt with streaming enabled and calls onDelta with every
// non-empty text delta in arrival order. It returns the full text once
// message_stop arrives. A stream that ends without message_stop, or stops
// at the token limit, is an error together with the text received so far. onDelta runs on the read loop, so a slow callback delays
// reading but never reorders deltas.
func (c *AnthropicClient) Stream(ctx context.Context, p types.Prompt, onDelta func(string)) (string, error) {
	ctx, cancel := withTimeout(ctx, c.Timeout)
	defer cancel()

	resp, err := c.post(ctx, p, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	var stopReason string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var evt streamEvent
		if err := json.Unmarshal([]byte(data), &evt); err != nil {
			continue
		}
		switch evt.Type {
		case "error":
			msg := "unknown stream error"
			if evt.Error != nil {
				msg = evt.Error.Type + ": " + evt.Error.Message
			}
			return full.String(), failure(NameAnthropic, "stream", resp.StatusCode, fmt.Errorf("%s", msg))
		case "content_block_delta":
			if evt.Delta == nil || evt.Delta.Text == "" {
				continue
			}
			full.WriteString(evt.Delta.Text)
			if onDelta != nil {
				onDelta(evt.Delta.Text)
			}
		case "message_delta":
			if evt.Delta != nil && evt.Delta.StopReason != "" {
				stopReason = evt.Delta.StopReason
			}
		case "message_stop":
			if stopReason == "max_tokens" {
				return full.String(), failure(NameAnthropic, "stream", 0, ErrTokenLimit)
			}
			return full.String(), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), failure(NameAnthropic, "stream", resp.StatusCode, fmt.Errorf("reading stream: %w", err))
	}
	return full.String(), failure(NameAnthropic, "stream", 0, fmt.Errorf("stream ended before message_stop: %w", io.ErrUnexpectedEOF))
}

// post issues the Messages request and returns a 200 response, retrying on
// rate limits and overload.
func (c *AnthropicClient) post(ctx context.Context, p types.Prompt, stream bool) (*http.Response, error) {
	op := "complete"
	if stream {
		op = "stream"
	}
	if c.APIKey == "" {
		return nil, &types.ConfigurationError{Key: secrets.AnthropicKey}
	}

	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicTokens
	}
	reqBody := anthropicRequest{
		Model:     c.Model,
		MaxTokens: maxTokens,
		System:    p.System,
		Messages:  []anthropicMessage{{Role: "user", Content: p.User}},
		Stream:    stream,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := httputil.DoWithRetry(ctx, httpClient(c.Client, 0), req, c.MaxRetries)
	if err != nil {
		return nil, failure(NameAnthropic, op, 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, failure(NameAnthropic, op, resp.StatusCode, fmt.Errorf("%s", httputil.ReadErrorBody(resp)))
	}
	return resp, nil
}
