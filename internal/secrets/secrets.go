// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider credentials from a directory of plain-text
// files, falling back to the conventional environment variables. Each file
// holds one secret: the filename is the key name and the trimmed contents
// are the value.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Credential key names, one per external capability.
const (
	TavilyKey     = "tavily-api-key"
	PerplexityKey = "perplexity-api-key"
	AnthropicKey  = "anthropic-api-key"
	OpenAIKey     = "openai-api-key"
	GeminiKey     = "gemini-api-key"
)

// Known lists every credential the pipeline understands.
var Known = []string{TavilyKey, PerplexityKey, AnthropicKey, OpenAIKey, GeminiKey}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on warn but do not abort.
func Load(dir string, warn io.Writer) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// EnvName maps a key file name to its environment variable,
// e.g. "tavily-api-key" to "TAVILY_API_KEY".
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Resolve returns the credential for key. A value loaded from the secrets
// directory wins over the environment.
func Resolve(loaded map[string]string, key string) string {
	if v, ok := loaded[key]; ok && v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(EnvName(key)))
}
