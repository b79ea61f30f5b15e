// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research gathers material about a guest from several providers
// and merges it into one Markdown research document.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// Researcher is a generation capability that searches the web before
// answering.
type Researcher interface {
	Research(ctx context.Context, p types.Prompt) (string, error)
}

// Fallback is a Researcher tried when the primary fails. Name labels its
// output in the merged document.
type Fallback interface {
	Researcher
	Name() string
}

// SourcePrimary marks a document whose body came from the primary provider.
const SourcePrimary = "primary"

// Aggregator runs the primary research and the real-time check
// concurrently, falls back when the primary fails, and merges the results.
type Aggregator struct {
	Primary   Researcher
	Realtime  Searcher
	Fallbacks []Fallback
	Log       *zap.Logger

	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// Research produces the merged document for the selected identity. It
// fails with *types.TotalFailureError only when the primary and every
// fallback failed. A failed real-time check leaves a placeholder section.
func (a *Aggregator) Research(ctx context.Context, name, hint string) (Document, error) {
	log := a.logger().With(zap.String("guest", name))
	now := a.now()

	prompt, err := primaryPrompt(name, hint, now)
	if err != nil {
		return Document{}, err
	}

	var (
		body        string
		primaryErr  error
		realtime    string
		realtimeErr error
	)

	// Both branches record their own failure and return nil, so one
	// branch failing never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		log.Debug("primary research started")
		body, primaryErr = a.Primary.Research(ctx, prompt)
		if primaryErr == nil && strings.TrimSpace(body) == "" {
			primaryErr = fmt.Errorf("primary research returned no text")
		}
		return nil
	})
	g.Go(func() error {
		log.Debug("realtime check started")
		realtime, realtimeErr = realtimeCheck(ctx, a.Realtime, name, hint)
		return nil
	})
	_ = g.Wait()

	if realtimeErr != nil {
		log.Warn("realtime check failed", zap.Error(realtimeErr))
		realtime = unavailableSection()
	}

	source := SourcePrimary
	if primaryErr != nil {
		log.Warn("primary research failed", zap.Error(primaryErr))
		causes := []error{primaryErr}

		var fbBody string
		for _, fb := range a.Fallbacks {
			text, err := fb.Research(ctx, fallbackPrompt(name, hint))
			if err == nil && strings.TrimSpace(text) == "" {
				err = fmt.Errorf("%s fallback returned no text", fb.Name())
			}
			if err != nil {
				log.Warn("fallback research failed", zap.String("fallback", fb.Name()), zap.Error(err))
				causes = append(causes, err)
				continue
			}
			log.Info("fallback research succeeded", zap.String("fallback", fb.Name()))
			fbBody = fmt.Sprintf("## Deep Research (%s Fallback)\n\n%s", fb.Name(), text)
			source = "fallback:" + fb.Name()
			break
		}
		if fbBody == "" {
			return Document{}, &types.TotalFailureError{Name: name, Causes: causes}
		}
		body = fbBody
	}

	return Document{
		Text:       merge(name, hint, now, body, realtime),
		Source:     source,
		RealtimeOK: realtimeErr == nil,
	}, nil
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *Aggregator) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}
