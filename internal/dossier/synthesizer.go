// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dossier renders the moderation briefing for a guest from its
// research document, streaming partial output as it is generated.
package dossier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/dossier-engine/internal/research"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// noRealtime replaces the real-time input when the research has no
// real-time section.
const noRealtime = "Keine Echtzeit-Daten verfügbar."

// Streamer is the long-form streaming generation capability. onDelta
// receives each text increment in order.
type Streamer interface {
	Stream(ctx context.Context, p types.Prompt, onDelta func(string)) (string, error)
}

// Synthesizer turns research into a dossier.
type Synthesizer struct {
	Model Streamer

	// ShowInfo describes the show the guest appears in.
	ShowInfo string

	Log *zap.Logger
	Now func() time.Time
}

// Synthesize generates the dossier for name. When onPartial is not nil it
// is called with the cumulative text after every non-empty increment, on
// the calling goroutine; its last argument equals the returned document.
func (s *Synthesizer) Synthesize(ctx context.Context, name, researchDoc string, onPartial func(string)) (string, error) {
	log := s.logger().With(zap.String("guest", name))

	narrative, realtime, found := research.Split(researchDoc)
	narrative = strings.TrimSpace(narrative)
	if !found {
		realtime = noRealtime
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	prompt, err := buildPrompt(userData{
		Name:     name,
		ShowInfo: s.ShowInfo,
		Research: narrative,
		Realtime: realtime,
	}, now)
	if err != nil {
		return "", err
	}

	var doc strings.Builder
	start := time.Now()
	full, err := s.Model.Stream(ctx, prompt, func(delta string) {
		if delta == "" {
			return
		}
		doc.WriteString(delta)
		if onPartial != nil {
			onPartial(doc.String())
		}
	})
	if err != nil {
		log.Warn("dossier generation failed", zap.Error(err), zap.Int("partial_bytes", doc.Len()))
		return "", fmt.Errorf("generating dossier: %w", err)
	}

	out := doc.String()
	if out == "" && full != "" {
		// The model delivered everything at once.
		out = full
		if onPartial != nil {
			onPartial(out)
		}
	}
	if strings.TrimSpace(out) == "" {
		return "", &types.ProviderError{Provider: "synthesis", Op: "stream", Err: errors.New("no text generated")}
	}

	if err := Validate(out); err != nil {
		log.Warn("dossier does not match schema", zap.Error(err))
	}
	log.Info("dossier generated", zap.Int("bytes", len(out)), zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (s *Synthesizer) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// LoadShowInfo reads the show-context document.
func LoadShowInfo(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading show info %s: %w", path, err)
	}
	return string(data), nil
}
