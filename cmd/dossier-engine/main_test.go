// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/internal/store"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, k := range secrets.Known {
		t.Setenv(secrets.EnvName(k), "")
	}
}

func TestPipelineConfig_Defaults(t *testing.T) {
	clearCredentialEnv(t)

	cfg := pipelineConfig(viper.New(), nil)
	def := types.DefaultPipelineConfig()
	assert.Equal(t, def.Storage, cfg.Storage)
	assert.Equal(t, "sonar-pro", cfg.DeepResearch.Model)
	assert.Empty(t, cfg.Search.APIKey)
	assert.Empty(t, cfg.SecondaryFallback.APIKey)
}

func TestPipelineConfig_Overrides(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	v := viper.New()
	v.Set("research_dir", "/tmp/r")
	v.Set("dossier_dir", "/tmp/d")
	v.Set("show_info", "show.md")
	v.Set("db_path", "/tmp/runs.db")
	v.Set("max_retries", 5)
	v.Set("synthesis.model", "claude-opus")
	v.Set("synthesis.timeout", "10m")
	v.Set("verify.max_retries", 1)
	v.Set("deep_research.base_url", "http://localhost:9999/")

	loaded := map[string]string{
		secrets.TavilyKey:    "tvly",
		secrets.AnthropicKey: "sk-ant",
		secrets.OpenAIKey:    "sk-file",
	}
	cfg := pipelineConfig(v, loaded)

	assert.Equal(t, types.StorageConfig{
		ResearchDir:  "/tmp/r",
		DossierDir:   "/tmp/d",
		ShowInfoPath: "show.md",
		DBPath:       "/tmp/runs.db",
	}, cfg.Storage)

	assert.Equal(t, "claude-opus", cfg.Synthesis.Model)
	assert.Equal(t, 10*time.Minute, cfg.Synthesis.Timeout)
	assert.Equal(t, 5, cfg.Synthesis.MaxRetries)
	assert.Equal(t, 1, cfg.Verify.MaxRetries, "per-stage retries win over the global value")
	assert.Equal(t, "http://localhost:9999/", cfg.DeepResearch.BaseURL)

	assert.Equal(t, "tvly", cfg.Search.APIKey)
	assert.Equal(t, "sk-ant", cfg.Classify.APIKey)
	assert.Equal(t, "sk-ant", cfg.Verify.APIKey)
	assert.Equal(t, "sk-ant", cfg.Synthesis.APIKey)
	assert.Equal(t, "sk-file", cfg.Fallback.APIKey, "the secrets directory wins over the environment")
	assert.Empty(t, cfg.DeepResearch.APIKey)
}

func ambiguous() types.Disambiguation {
	return types.Disambiguation{
		IsAmbiguous: true,
		Candidates: []types.Candidate{
			{Name: "Max Mustermann", Description: "Autor", ContextHint: "Autor Kassel"},
			{Name: "Max Mustermann", Description: "Fußballer", ContextHint: "Fußball Bremen"},
		},
	}
}

func TestSelectCandidate(t *testing.T) {
	var out bytes.Buffer
	c, err := selectCandidate(strings.NewReader("7\nzwei\n2\n"), &out, ambiguous())
	require.NoError(t, err)
	assert.Equal(t, "Fußball Bremen", c.ContextHint)

	text := out.String()
	assert.Contains(t, text, "Mehrere Personen gefunden (2):")
	assert.Contains(t, text, "  1. Max Mustermann\n     Autor\n     Kontext: Autor Kassel\n")
	assert.Equal(t, 2, strings.Count(text, "Bitte eine Zahl zwischen 1 und 2 eingeben."))
}

func TestSelectCandidate_EndOfInput(t *testing.T) {
	_, err := selectCandidate(strings.NewReader(""), &bytes.Buffer{}, ambiguous())
	assert.Error(t, err)
}

func TestSelectCandidate_UnambiguousNeedsNoInput(t *testing.T) {
	var out bytes.Buffer
	c, err := selectCandidate(strings.NewReader(""), &out, types.Unresolved("Anna"))
	require.NoError(t, err)
	assert.Equal(t, "Anna", c.Name)
	assert.Equal(t, "Ausgewählt: Anna\n", out.String())
}

func TestPartialPrinter(t *testing.T) {
	assert.Nil(t, partialPrinter(&bytes.Buffer{}, false))

	var out bytes.Buffer
	p := partialPrinter(&out, true)
	p("# Dos")
	p("# Dossier")
	p("# Dossier")
	p("# Dossier: Anna\n")
	assert.Equal(t, "# Dossier: Anna\n", out.String())
}

func TestHTMLPage(t *testing.T) {
	page, err := htmlPage("# Dossier: Anna & Bert\n\n<a id=\"kurzprofil\"></a>\n## Kurzprofil\n\nText\n")
	require.NoError(t, err)
	s := string(page)
	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"))
	assert.Contains(t, s, "<title>Dossier: Anna &amp; Bert</title>")
	assert.Contains(t, s, `<a id="kurzprofil"></a>`)
	assert.Contains(t, s, "<h2>Kurzprofil</h2>")
}

func TestDescribe(t *testing.T) {
	err := fmt.Errorf("identify: %w", &types.ConfigurationError{Key: secrets.TavilyKey})
	assert.Contains(t, describe(err), ".secrets/tavily-api-key or set TAVILY_API_KEY")

	tf := &types.TotalFailureError{Name: "Anna", Causes: []error{errors.New("perplexity down"), errors.New("openai down")}}
	msg := describe(tf)
	assert.Contains(t, msg, "research for \"Anna\" failed with every provider:")
	assert.Contains(t, msg, "\n  - perplexity down\n  - openai down")

	pe := &types.ProviderError{Provider: "anthropic", Op: "stream", Status: 401}
	assert.Contains(t, describe(pe), "check the anthropic credential")

	assert.Equal(t, "boom", describe(errors.New("boom")))
}

func TestPrintRuns(t *testing.T) {
	var empty bytes.Buffer
	printRuns(&empty, nil)
	assert.Equal(t, "No runs recorded.\n", empty.String())

	start := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	runs := []types.Run{
		{Name: "Anna", StartedAt: start, FinishedAt: start.Add(42 * time.Second), DossierPath: "dossiers/anna_2026-10-01.md", Verification: types.VerificationVerified, ResearchSource: "primary"},
		{Name: "Bert", StartedAt: start, FinishedAt: start.Add(time.Second), Error: "total research failure"},
		{Name: "Carla", StartedAt: start},
	}
	var out bytes.Buffer
	printRuns(&out, runs)
	text := out.String()
	assert.Contains(t, text, "dossiers/anna_2026-10-01.md")
	assert.Contains(t, text, "    42  ")
	assert.Contains(t, text, "FAILED: total research failure")
	assert.Contains(t, text, "(running or aborted)")
}

func TestPrintArtifact(t *testing.T) {
	arts := store.NewArtifacts()

	var none bytes.Buffer
	printArtifact(&none, arts, "anna")
	assert.Empty(t, none.String())

	arts.Update("anna", func(a *store.Artifact) {
		a.RawPath = ".tmp/anna_research_raw.md"
		a.ResearchPath = ".tmp/anna_research.md"
		a.Verification = types.VerificationUnverified
	})
	var failed bytes.Buffer
	printArtifact(&failed, arts, "anna")
	assert.Equal(t, "  Verifikation: unverified\n"+
		"  Rohdaten:  .tmp/anna_research_raw.md\n"+
		"  Research bleibt erhalten: .tmp/anna_research.md\n", failed.String())

	arts.Update("anna", func(a *store.Artifact) { a.DossierPath = "dossiers/anna_2026-10-15.md" })
	var done bytes.Buffer
	printArtifact(&done, arts, "anna")
	assert.NotContains(t, done.String(), "bleibt erhalten")
	assert.Contains(t, done.String(), "Verifikation: unverified")
}
