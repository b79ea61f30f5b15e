// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package identity decides whether a guest name denotes one or several
// real public figures and returns the candidates with disambiguating
// search hints.
package identity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// Searcher is the broad web search capability.
type Searcher interface {
	Search(ctx context.Context, req types.WebSearchRequest) (types.WebSearchResponse, error)
}

// Completer is the short free-form completion capability.
type Completer interface {
	Complete(ctx context.Context, p types.Prompt) (string, error)
}

// Engine classifies guest names.
type Engine struct {
	Search   Searcher
	Classify Completer
	Log      *zap.Logger
}

// New returns an Engine. A nil logger is replaced by a no-op logger.
func New(search Searcher, classify Completer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{Search: search, Classify: classify, Log: log}
}

// Disambiguate searches for name and asks the classifier how many distinct
// people the results describe. Configuration and provider failures are
// returned. An unparseable classification is logged and replaced by
// types.Unresolved(name), so a nil error always comes with at least one
// candidate.
func (e *Engine) Disambiguate(ctx context.Context, name string) (types.Disambiguation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Disambiguation{}, fmt.Errorf("guest name is empty")
	}
	log := e.logger().With(zap.String("guest", name))

	resp, err := e.Search.Search(ctx, types.WebSearchRequest{
		Query:         searchQuery(name),
		Depth:         types.DepthAdvanced,
		MaxResults:    8,
		IncludeAnswer: true,
	})
	if err != nil {
		log.Warn("identity search failed", zap.Error(err))
		return types.Disambiguation{}, fmt.Errorf("identity search: %w", err)
	}
	log.Debug("identity search done", zap.Int("results", len(resp.Results)))

	prompt, err := buildClassifyPrompt(name, resp)
	if err != nil {
		return types.Disambiguation{}, err
	}

	text, err := e.Classify.Complete(ctx, prompt)
	if err != nil {
		log.Warn("identity classification failed", zap.Error(err))
		return types.Disambiguation{}, fmt.Errorf("identity classification: %w", err)
	}

	d, err := parseClassification(text)
	if err != nil {
		log.Warn("classification unparseable, using unresolved default", zap.Error(err))
		return types.Unresolved(name), nil
	}

	log.Info("identity resolved",
		zap.Bool("ambiguous", d.IsAmbiguous),
		zap.Int("candidates", len(d.Candidates)))
	return d, nil
}

func (e *Engine) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}
