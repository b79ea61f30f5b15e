// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/dossier-engine/internal/pipeline"
	"github.com/pdiddy/dossier-engine/internal/secrets"
	"github.com/pdiddy/dossier-engine/internal/store"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// stageKeys maps each config section to the credential it needs.
var stageKeys = []struct {
	section string
	secret  string
	target  func(*types.PipelineConfig) *types.ProviderConfig
}{
	{"search", secrets.TavilyKey, func(c *types.PipelineConfig) *types.ProviderConfig { return &c.Search }},
	{"deep_research", secrets.PerplexityKey, func(c *types.PipelineConfig) *types.ProviderConfig { return &c.DeepResearch }},
	{"classify", secrets.AnthropicKey, func(c *types.PipelineConfig) *types.ProviderConfig { return &c.Classify }},
	{"verify", secrets.AnthropicKey, func(c *types.PipelineConfig) *types.ProviderConfig { return &c.Verify }},
	{"synthesis", secrets.AnthropicKey, func(c *types.PipelineConfig) *types.ProviderConfig { return &c.Synthesis }},
	{"fallback", secrets.OpenAIKey, func(c *types.PipelineConfig) *types.ProviderConfig { return &c.Fallback }},
	{"secondary_fallback", secrets.GeminiKey, func(c *types.PipelineConfig) *types.ProviderConfig { return &c.SecondaryFallback }},
}

// pipelineConfig overlays the defaults with values from v and credentials
// from loaded (or the environment).
func pipelineConfig(v *viper.Viper, loaded map[string]string) types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if s := v.GetString("research_dir"); s != "" {
		cfg.Storage.ResearchDir = s
	}
	if s := v.GetString("dossier_dir"); s != "" {
		cfg.Storage.DossierDir = s
	}
	if s := v.GetString("show_info"); s != "" {
		cfg.Storage.ShowInfoPath = s
	}
	if s := v.GetString("db_path"); s != "" {
		cfg.Storage.DBPath = s
	}
	globalRetries := v.GetInt("max_retries")

	for _, st := range stageKeys {
		pc := st.target(&cfg)
		pc.APIKey = secrets.Resolve(loaded, st.secret)
		if globalRetries > 0 {
			pc.MaxRetries = globalRetries
		}
		if s := v.GetString(st.section + ".model"); s != "" {
			pc.Model = s
		}
		if d := v.GetDuration(st.section + ".timeout"); d > 0 {
			pc.Timeout = d
		}
		if s := v.GetString(st.section + ".base_url"); s != "" {
			pc.BaseURL = s
		}
		if n := v.GetInt(st.section + ".max_retries"); n > 0 {
			pc.MaxRetries = n
		}
	}
	return cfg
}

// newPipeline builds the pipeline from the global config. out receives
// progress lines.
func newPipeline(out io.Writer) (*pipeline.Pipeline, types.PipelineConfig) {
	cfg := pipelineConfig(viper.GetViper(), loadedSecrets)
	return pipeline.Build(cfg, logger, out), cfg
}

// withRunLog opens the run log, attaches it to p, and returns a closer.
// A run log that cannot be opened is logged and skipped.
func withRunLog(p *pipeline.Pipeline, cfg types.PipelineConfig) func() {
	runs, err := store.OpenRunLog(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("run log unavailable", zap.String("path", cfg.Storage.DBPath), zap.Error(err))
		return func() {}
	}
	p.Runs = runs
	return func() { runs.Close() }
}
