// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/dossier-engine/internal/dossier"
	"github.com/pdiddy/dossier-engine/internal/identity"
	"github.com/pdiddy/dossier-engine/internal/provider"
	"github.com/pdiddy/dossier-engine/internal/research"
	"github.com/pdiddy/dossier-engine/internal/store"
	"github.com/pdiddy/dossier-engine/internal/verify"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// Build assembles a Pipeline backed by the real providers. The run log is
// not opened here; callers attach one when they want runs recorded.
func Build(cfg types.PipelineConfig, log *zap.Logger, out io.Writer) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}

	tavily := provider.NewTavilyClient(cfg.Search)
	classifier := provider.NewAnthropicClient(cfg.Classify)
	verifier := provider.NewAnthropicClient(cfg.Verify)
	writer := provider.NewAnthropicClient(cfg.Synthesis)

	fallbacks := []research.Fallback{provider.NewOpenAIWebSearch(cfg.Fallback)}
	if cfg.SecondaryFallback.APIKey != "" {
		fallbacks = append(fallbacks, provider.NewGeminiSearch(cfg.SecondaryFallback))
	}

	var synth Synthesizer
	showInfo, err := dossier.LoadShowInfo(cfg.Storage.ShowInfoPath)
	if err != nil {
		log.Warn("show info unavailable, dossier creation disabled", zap.Error(err))
		synth = failingSynthesizer{err: err}
	} else {
		synth = &dossier.Synthesizer{Model: writer, ShowInfo: showInfo, Log: log.Named("dossier")}
	}

	return &Pipeline{
		Identity: identity.New(tavily, classifier, log.Named("identity")),
		Research: &research.Aggregator{
			Primary:   provider.NewPerplexityClient(cfg.DeepResearch),
			Realtime:  tavily,
			Fallbacks: fallbacks,
			Log:       log.Named("research"),
		},
		Verify:      &verify.Filter{Model: verifier, Log: log.Named("verify")},
		Synthesizer: synth,
		Files:       store.NewFileStore(cfg.Storage),
		Log:         log,
		Out:         out,
	}
}

// failingSynthesizer reports why synthesis is unavailable.
type failingSynthesizer struct{ err error }

func (f failingSynthesizer) Synthesize(context.Context, string, string, func(string)) (string, error) {
	return "", f.err
}
