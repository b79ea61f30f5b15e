// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline chains identity resolution, research, verification, and
// dossier synthesis, and owns the order in which artifacts are persisted.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/dossier-engine/internal/research"
	"github.com/pdiddy/dossier-engine/internal/slug"
	"github.com/pdiddy/dossier-engine/internal/store"
	"github.com/pdiddy/dossier-engine/internal/verify"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

// Disambiguator resolves a guest name to candidates.
type Disambiguator interface {
	Disambiguate(ctx context.Context, name string) (types.Disambiguation, error)
}

// Researcher gathers and merges research for one identity.
type Researcher interface {
	Research(ctx context.Context, name, hint string) (research.Document, error)
}

// Verifier filters namesake content from a research document.
type Verifier interface {
	Verify(ctx context.Context, name, hint, doc string) verify.Result
}

// Synthesizer renders a dossier from research.
type Synthesizer interface {
	Synthesize(ctx context.Context, name, researchDoc string, onPartial func(string)) (string, error)
}

// Pipeline wires the stages to the stores.
type Pipeline struct {
	Identity    Disambiguator
	Research    Researcher
	Verify      Verifier
	Synthesizer Synthesizer
	Files       *store.FileStore

	// Runs is optional; when set every Run is recorded.
	Runs *store.RunLog

	// Artifacts is optional; when set results are kept under the guest's
	// slug for the caller.
	Artifacts *store.Artifacts

	Log *zap.Logger

	// Out receives progress lines; nil discards them.
	Out io.Writer

	Now func() time.Time
}

// ResearchResult describes the files written by RunResearch.
type ResearchResult struct {
	Slug         string
	Path         string
	RawPath      string
	Source       string
	Verification types.VerificationStatus

	// VerifyErr is why verification fell back to the raw document.
	VerifyErr error
}

// Summary describes a complete run.
type Summary struct {
	Run          types.Run
	ResearchPath string
	DossierPath  string
	Elapsed      time.Duration
}

// Identify resolves name to one or more identity candidates.
func (p *Pipeline) Identify(ctx context.Context, name string) (types.Disambiguation, error) {
	p.printf("Prüfe Identität: %s\n", name)
	d, err := p.Identity.Disambiguate(ctx, name)
	if err != nil {
		return types.Disambiguation{}, err
	}
	if err := d.Validate(); err != nil {
		return types.Disambiguation{}, fmt.Errorf("identity result for %q: %w", name, err)
	}
	return d, nil
}

// RunResearch researches one identity, stores the raw document, verifies
// it, and stores the verified document. Nothing is written when research
// fails entirely.
func (p *Pipeline) RunResearch(ctx context.Context, name, hint string) (ResearchResult, error) {
	s, err := slugFor(name)
	if err != nil {
		return ResearchResult{}, err
	}
	log := p.logger().With(zap.String("guest", name), zap.String("slug", s))

	p.printf("Starte Research für: %s\n", name)
	if hint != "" {
		p.printf("  Kontext: %s\n", hint)
	}

	doc, err := p.Research.Research(ctx, name, hint)
	if err != nil {
		log.Error("research failed", zap.Error(err))
		p.printf("  ✗ Research fehlgeschlagen: %v\n", err)
		return ResearchResult{}, err
	}
	if doc.Source != research.SourcePrimary {
		p.printf("  ! Primäre Recherche fehlgeschlagen, verwendet: %s\n", doc.Source)
	}
	if !doc.RealtimeOK {
		p.printf("  ! Echtzeit-Check nicht verfügbar\n")
	}

	rawPath, err := p.Files.WriteRawResearch(s, doc.Text)
	if err != nil {
		return ResearchResult{}, err
	}
	p.printf("  Rohdaten gespeichert: %s\n", rawPath)

	if hint != "" {
		p.printf("  → Verifikation: Prüfe auf Verwechslungen...\n")
	}
	vr := p.Verify.Verify(ctx, name, hint, doc.Text)
	if vr.Status == types.VerificationUnverified {
		p.printf("  ⚠ Verifikation fehlgeschlagen, Research wird ungeprüft gespeichert: %v\n", vr.Err)
	}

	path, err := p.Files.WriteResearch(s, vr.Text)
	if err != nil {
		return ResearchResult{}, err
	}
	p.printf("  Research gespeichert: %s (%s)\n", path, vr.Status)

	res := ResearchResult{
		Slug:         s,
		Path:         path,
		RawPath:      rawPath,
		Source:       doc.Source,
		Verification: vr.Status,
		VerifyErr:    vr.Err,
	}
	if p.Artifacts != nil {
		p.Artifacts.Update(s, func(a *store.Artifact) {
			a.Candidate = types.Candidate{Name: name, ContextHint: hint}
			a.RawPath = rawPath
			a.ResearchPath = path
			a.Verification = vr.Status
		})
	}
	return res, nil
}

// CreateDossier renders the dossier for name from the research file at
// researchPath. The file is written only after generation completed.
func (p *Pipeline) CreateDossier(ctx context.Context, name, researchPath string, onPartial func(string)) (string, error) {
	s, err := slugFor(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(researchPath)
	if err != nil {
		return "", fmt.Errorf("reading research %s: %w", researchPath, err)
	}

	p.printf("Erstelle Dossier für: %s\n", name)
	doc, err := p.Synthesizer.Synthesize(ctx, name, string(data), onPartial)
	if err != nil {
		p.printf("  ✗ Dossier fehlgeschlagen: %v\n", err)
		return "", err
	}

	path, err := p.Files.WriteDossier(s, doc)
	if err != nil {
		return "", err
	}
	p.printf("  Dossier gespeichert: %s\n", path)

	if p.Artifacts != nil {
		p.Artifacts.Update(s, func(a *store.Artifact) {
			if a.Candidate.Name == "" {
				a.Candidate = types.Candidate{Name: name}
			}
			a.Dossier = doc
			a.DossierPath = path
		})
	}
	return path, nil
}

// Run researches the selected candidate and renders its dossier, recording
// the run when a run log is configured.
func (p *Pipeline) Run(ctx context.Context, cand types.Candidate, onPartial func(string)) (Summary, error) {
	start := p.now()
	s, err := slugFor(cand.Name)
	if err != nil {
		return Summary{}, err
	}

	run := store.NewRun(s, cand.Name, cand.ContextHint, start)
	p.record(ctx, run)

	// The final row is written even when ctx was cancelled.
	fail := func(err error) (Summary, error) {
		run.FinishedAt = p.now()
		run.Error = err.Error()
		p.record(context.WithoutCancel(ctx), run)
		return Summary{Run: run, Elapsed: run.Elapsed()}, err
	}

	p.printf("%s\n  GÄSTEDOSSIER-PIPELINE: %s\n%s\n", rule, cand.Name, rule)

	p.printf("\nSCHRITT 1/2: Deep Research\n%s\n", thin)
	res, err := p.RunResearch(ctx, cand.Name, cand.ContextHint)
	if err != nil {
		return fail(err)
	}
	run.RawPath = res.RawPath
	run.ResearchPath = res.Path
	run.Verification = res.Verification
	run.ResearchSource = res.Source
	p.record(ctx, run)

	p.printf("\nSCHRITT 2/2: Dossier erstellen\n%s\n", thin)
	dossierPath, err := p.CreateDossier(ctx, cand.Name, res.Path, onPartial)
	if err != nil {
		return fail(err)
	}
	run.DossierPath = dossierPath
	run.FinishedAt = p.now()
	p.record(context.WithoutCancel(ctx), run)

	sum := Summary{
		Run:          run,
		ResearchPath: res.Path,
		DossierPath:  dossierPath,
		Elapsed:      run.Elapsed(),
	}
	p.printf("\n%s\n  FERTIG in %.0f Sekunden\n  Research:  %s\n  Dossier:   %s\n%s\n",
		rule, sum.Elapsed.Seconds(), sum.ResearchPath, sum.DossierPath, rule)
	return sum, nil
}

// RunPipeline runs research and synthesis for an already resolved name,
// without disambiguation, and returns the dossier path.
func (p *Pipeline) RunPipeline(ctx context.Context, name string) (string, error) {
	sum, err := p.Run(ctx, types.Candidate{Name: name}, nil)
	if err != nil {
		return "", err
	}
	return sum.DossierPath, nil
}

var (
	rule = strings.Repeat("=", 60)
	thin = strings.Repeat("-", 40)
)

func slugFor(name string) (string, error) {
	s := slug.Make(name)
	if s == "" {
		return "", fmt.Errorf("guest name %q has no letters or digits", name)
	}
	return s, nil
}

func (p *Pipeline) record(ctx context.Context, run types.Run) {
	if p.Runs == nil {
		return
	}
	if err := p.Runs.Record(ctx, run); err != nil {
		p.logger().Warn("recording run failed", zap.String("run", run.ID), zap.Error(err))
	}
}

func (p *Pipeline) printf(format string, args ...any) {
	if p.Out == nil {
		return
	}
	fmt.Fprintf(p.Out, format, args...)
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
