// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

func withAnthropicServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	orig := anthropicAPIURL
	anthropicAPIURL = ts.URL
	t.Cleanup(func() { anthropicAPIURL = orig })
}

func sseBody(events ...string) string {
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "event: x\ndata: %s\n\n", e)
	}
	return b.String()
}

func deltaEvent(text string) string {
	payload, _ := json.Marshal(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]string{"type": "text_delta", "text": text},
	})
	return string(payload)
}

func TestAnthropicComplete(t *testing.T) {
	var mu sync.Mutex
	var got anthropicRequest
	var headers http.Header
	withAnthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hallo "},{"type":"text","text":"Welt"}]}`))
	})

	c := &AnthropicClient{APIKey: "sk-test", Model: "claude-haiku"}
	out, err := c.Complete(context.Background(), types.Prompt{System: "sys", User: "frage"})
	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", out)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "sk-test", headers.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, headers.Get("anthropic-version"))
	assert.Equal(t, "claude-haiku", got.Model)
	assert.Equal(t, defaultAnthropicTokens, got.MaxTokens)
	assert.Equal(t, "sys", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "frage", got.Messages[0].Content)
	assert.False(t, got.Stream)
}

func TestAnthropicComplete_MissingKey(t *testing.T) {
	c := &AnthropicClient{Model: "m"}
	_, err := c.Complete(context.Background(), types.Prompt{User: "x"})
	var ce *types.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "anthropic-api-key", ce.Key)
}

func TestAnthropicComplete_HTTPError(t *testing.T) {
	withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	})

	c := &AnthropicClient{APIKey: "k", Model: "m"}
	_, err := c.Complete(context.Background(), types.Prompt{User: "x"})
	var pe *types.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusBadRequest, pe.Status)
	assert.Equal(t, "complete", pe.Op)
	assert.Contains(t, err.Error(), "bad model")
}

func TestAnthropicComplete_NoText(t *testing.T) {
	withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	c := &AnthropicClient{APIKey: "k", Model: "m"}
	_, err := c.Complete(context.Background(), types.Prompt{User: "x"})
	var pe *types.ProviderError
	require.True(t, errors.As(err, &pe))
}

func TestAnthropicStream(t *testing.T) {
	withAnthropicServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(sseBody(
			`{"type":"message_start","message":{"id":"msg_1"}}`,
			`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
			deltaEvent("Das "),
			deltaEvent(""),
			`{"type":"ping"}`,
			deltaEvent("Dossier"),
			`{"type":"content_block_stop","index":0}`,
			`{"type":"message_stop"}`,
			deltaEvent(" ignoriert"),
		)))
	})

	var deltas []string
	c := &AnthropicClient{APIKey: "k", Model: "m"}
	out, err := c.Stream(context.Background(), types.Prompt{User: "x"}, func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Equal(t, "Das Dossier", out)
	assert.Equal(t, []string{"Das ", "Dossier"}, deltas)
}

func TestAnthropicStream_ErrorEvent(t *testing.T) {
	withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sseBody(
			deltaEvent("Teil"),
			`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
		)))
	})

	c := &AnthropicClient{APIKey: "k", Model: "m"}
	out, err := c.Stream(context.Background(), types.Prompt{User: "x"}, nil)
	var pe *types.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "stream", pe.Op)
	assert.Contains(t, err.Error(), "overloaded_error")
	assert.Equal(t, "Teil", out)
}

func TestAnthropicStream_RetriesOverload(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(529)
			return
		}
		_, _ = w.Write([]byte(sseBody(deltaEvent("ok"), `{"type":"message_stop"}`)))
	})

	c := &AnthropicClient{APIKey: "k", Model: "m", MaxRetries: 2}
	out, err := c.Stream(context.Background(), types.Prompt{User: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}

func TestAnthropicStream_EndsWithoutMessageStop(t *testing.T) {
	withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sseBody(
			`{"type":"message_start","message":{"id":"msg_1"}}`,
			deltaEvent("# Dossier: Test Gast\n"),
			deltaEvent("# CHE"),
		)))
	})

	c := &AnthropicClient{APIKey: "k", Model: "m"}
	out, err := c.Stream(context.Background(), types.Prompt{User: "x"}, nil)
	var pe *types.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "stream", pe.Op)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "# Dossier: Test Gast\n# CHE", out)
}

func TestAnthropicStream_TokenLimit(t *testing.T) {
	withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sseBody(
			deltaEvent("Teil"),
			`{"type":"message_delta","delta":{"stop_reason":"max_tokens","stop_sequence":null},"usage":{"output_tokens":8000}}`,
			`{"type":"message_stop"}`,
		)))
	})

	c := &AnthropicClient{APIKey: "k", Model: "m"}
	out, err := c.Stream(context.Background(), types.Prompt{User: "x"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTokenLimit))
	assert.Equal(t, "Teil", out)
}

func TestAnthropicStream_EndTurnCompletes(t *testing.T) {
	withAnthropicServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sseBody(
			deltaEvent("fertig"),
			`{"type":"message_delta","delta":{"stop_reason":"end_turn"}}`,
			`{"type":"message_stop"}`,
		)))
	})

	c := &AnthropicClient{APIKey: "k", Model: "m"}
	out, err := c.Stream(context.Background(), types.Prompt{User: "x"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fertig", out)
}
