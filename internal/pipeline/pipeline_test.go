// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dossier-engine/internal/research"
	"github.com/pdiddy/dossier-engine/internal/store"
	"github.com/pdiddy/dossier-engine/internal/verify"
	"github.com/pdiddy/dossier-engine/pkg/types"
)

type stubIdentity struct {
	d   types.Disambiguation
	err error
}

func (s stubIdentity) Disambiguate(context.Context, string) (types.Disambiguation, error) {
	return s.d, s.err
}

type stubResearcher struct {
	doc   research.Document
	err   error
	calls int
}

func (s *stubResearcher) Research(_ context.Context, name, hint string) (research.Document, error) {
	s.calls++
	return s.doc, s.err
}

type stubVerifier struct {
	res  verify.Result
	docs []string
}

func (s *stubVerifier) Verify(_ context.Context, _, _, doc string) verify.Result {
	s.docs = append(s.docs, doc)
	if s.res.Status == "" {
		return verify.Result{Text: doc, Status: types.VerificationSkipped}
	}
	return s.res
}

type stubSynth struct {
	out    string
	err    error
	inputs []string
}

func (s *stubSynth) Synthesize(_ context.Context, name, researchDoc string, onPartial func(string)) (string, error) {
	s.inputs = append(s.inputs, researchDoc)
	if s.err != nil {
		return "", s.err
	}
	if onPartial != nil {
		onPartial(s.out)
	}
	return s.out, nil
}

var today = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func newPipeline(t *testing.T, r Researcher, v Verifier, s Synthesizer) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	return &Pipeline{
		Identity:    stubIdentity{d: types.Unresolved("x")},
		Research:    r,
		Verify:      v,
		Synthesizer: s,
		Files: &store.FileStore{
			ResearchDir: filepath.Join(dir, ".tmp"),
			DossierDir:  filepath.Join(dir, "dossiers"),
			Now:         func() time.Time { return today },
		},
		Out: &out,
		Now: func() time.Time { return today },
	}, &out
}

const researchText = "# Research-Dossier: Üdo Löbeck\n\nBody" + research.Separator + research.Marker + "\n\n- news\n"

func TestRunResearch_WritesRawAndVerified(t *testing.T) {
	r := &stubResearcher{doc: research.Document{Text: researchText, Source: research.SourcePrimary, RealtimeOK: true}}
	v := &stubVerifier{res: verify.Result{Text: "verified text", Status: types.VerificationVerified}}
	p, _ := newPipeline(t, r, v, &stubSynth{})
	p.Artifacts = store.NewArtifacts()

	res, err := p.RunResearch(context.Background(), "Üdo Löbeck", "Musiker Hamburg")
	require.NoError(t, err)

	assert.Equal(t, "uedo_loebeck", res.Slug)
	assert.Equal(t, filepath.Join(p.Files.ResearchDir, "uedo_loebeck_research.md"), res.Path)
	assert.Equal(t, types.VerificationVerified, res.Verification)

	raw, err := os.ReadFile(res.RawPath)
	require.NoError(t, err)
	assert.Equal(t, researchText, string(raw))

	verified, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "verified text", string(verified))
	assert.Equal(t, []string{researchText}, v.docs)

	art, ok := p.Artifacts.Get("uedo_loebeck")
	require.True(t, ok)
	assert.Equal(t, res.Path, art.ResearchPath)
	assert.Equal(t, "Musiker Hamburg", art.Candidate.ContextHint)
}

func TestRunResearch_UnverifiedKeepsRaw(t *testing.T) {
	r := &stubResearcher{doc: research.Document{Text: researchText, Source: research.SourcePrimary, RealtimeOK: true}}
	v := &stubVerifier{res: verify.Result{Text: researchText, Status: types.VerificationUnverified, Err: errors.New("529")}}
	p, out := newPipeline(t, r, v, &stubSynth{})

	res, err := p.RunResearch(context.Background(), "Anna", "Autorin")
	require.NoError(t, err)
	assert.Equal(t, types.VerificationUnverified, res.Verification)
	assert.Error(t, res.VerifyErr)
	assert.Contains(t, out.String(), "ungeprüft")

	verified, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, researchText, string(verified))
}

func TestRunResearch_TotalFailureWritesNothing(t *testing.T) {
	tf := &types.TotalFailureError{Name: "Anna", Causes: []error{errors.New("a"), errors.New("b")}}
	r := &stubResearcher{err: tf}
	v := &stubVerifier{}
	p, _ := newPipeline(t, r, v, &stubSynth{})

	_, err := p.RunResearch(context.Background(), "Anna", "")
	var got *types.TotalFailureError
	require.True(t, errors.As(err, &got))
	assert.Empty(t, v.docs)

	_, statErr := os.Stat(p.Files.ResearchDir)
	assert.True(t, os.IsNotExist(statErr), "no research files may be written")
}

func TestRunResearch_EmptySlug(t *testing.T) {
	r := &stubResearcher{}
	p, _ := newPipeline(t, r, &stubVerifier{}, &stubSynth{})
	_, err := p.RunResearch(context.Background(), "???", "")
	assert.Error(t, err)
	assert.Equal(t, 0, r.calls)
}

func TestCreateDossier(t *testing.T) {
	s := &stubSynth{out: "# Dossier: Anna\n"}
	p, _ := newPipeline(t, &stubResearcher{}, &stubVerifier{}, s)

	researchPath := filepath.Join(t.TempDir(), "anna_research.md")
	require.NoError(t, os.WriteFile(researchPath, []byte(researchText), 0o644))

	var partials []string
	path, err := p.CreateDossier(context.Background(), "Anna", researchPath, func(s string) { partials = append(partials, s) })
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(p.Files.DossierDir, "anna_2026-10-15.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Dossier: Anna\n", string(data))
	assert.Equal(t, []string{researchText}, s.inputs)
	assert.Equal(t, []string{"# Dossier: Anna\n"}, partials)
}

func TestCreateDossier_FailureWritesNothing(t *testing.T) {
	s := &stubSynth{err: &types.ProviderError{Provider: "anthropic", Op: "stream"}}
	p, _ := newPipeline(t, &stubResearcher{}, &stubVerifier{}, s)

	researchPath := filepath.Join(t.TempDir(), "anna_research.md")
	require.NoError(t, os.WriteFile(researchPath, []byte("r"), 0o644))

	_, err := p.CreateDossier(context.Background(), "Anna", researchPath, nil)
	require.Error(t, err)
	_, statErr := os.Stat(p.Files.DossierDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCreateDossier_MissingResearch(t *testing.T) {
	p, _ := newPipeline(t, &stubResearcher{}, &stubVerifier{}, &stubSynth{})
	_, err := p.CreateDossier(context.Background(), "Anna", filepath.Join(t.TempDir(), "fehlt.md"), nil)
	assert.Error(t, err)
}

func TestRunPipeline_RecordsRun(t *testing.T) {
	r := &stubResearcher{doc: research.Document{Text: researchText, Source: "fallback:OpenAI", RealtimeOK: true}}
	s := &stubSynth{out: "# Dossier: Anna Beispiel\n"}
	p, out := newPipeline(t, r, &stubVerifier{}, s)

	runs, err := store.OpenRunLog(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer runs.Close()
	p.Runs = runs

	path, err := p.RunPipeline(context.Background(), "Anna Beispiel")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "anna_beispiel_2026-10-15.md"))

	logged, err := runs.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, "anna_beispiel", logged[0].Slug)
	assert.Equal(t, path, logged[0].DossierPath)
	assert.Equal(t, types.VerificationSkipped, logged[0].Verification)
	assert.Equal(t, "fallback:OpenAI", logged[0].ResearchSource)
	assert.True(t, logged[0].Succeeded())

	text := out.String()
	assert.Contains(t, text, "GÄSTEDOSSIER-PIPELINE: Anna Beispiel")
	assert.Contains(t, text, "FERTIG in 0 Sekunden")
	assert.Contains(t, text, "Dossier:   "+path)
}

func TestRun_FailureIsRecorded(t *testing.T) {
	r := &stubResearcher{err: &types.TotalFailureError{Name: "Anna"}}
	p, _ := newPipeline(t, r, &stubVerifier{}, &stubSynth{})

	runs, err := store.OpenRunLog(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer runs.Close()
	p.Runs = runs

	sum, err := p.Run(context.Background(), types.Candidate{Name: "Anna"}, nil)
	require.Error(t, err)
	assert.NotEmpty(t, sum.Run.Error)

	logged, err := runs.Get(context.Background(), sum.Run.ID)
	require.NoError(t, err)
	assert.Contains(t, logged.Error, "total research failure")
	assert.False(t, logged.Succeeded())
}

func TestIdentify(t *testing.T) {
	p, _ := newPipeline(t, &stubResearcher{}, &stubVerifier{}, &stubSynth{})

	p.Identity = stubIdentity{d: types.Disambiguation{Candidates: []types.Candidate{{Name: "A"}, {Name: "B"}}, IsAmbiguous: true}}
	d, err := p.Identify(context.Background(), "A")
	require.NoError(t, err)
	assert.Len(t, d.Candidates, 2)

	p.Identity = stubIdentity{d: types.Disambiguation{}}
	_, err = p.Identify(context.Background(), "A")
	assert.Error(t, err, "an empty candidate list is rejected")

	p.Identity = stubIdentity{err: &types.ConfigurationError{Key: "tavily-api-key"}}
	_, err = p.Identify(context.Background(), "A")
	assert.True(t, types.IsConfiguration(err))
}

// cancellingResearcher simulates an interrupt arriving during research.
type cancellingResearcher struct{ cancel context.CancelFunc }

func (c cancellingResearcher) Research(ctx context.Context, _, _ string) (research.Document, error) {
	c.cancel()
	return research.Document{}, ctx.Err()
}

func TestRun_InterruptedRunIsRecordedAsFinished(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, _ := newPipeline(t, cancellingResearcher{cancel: cancel}, &stubVerifier{}, &stubSynth{})

	runs, err := store.OpenRunLog(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer runs.Close()
	p.Runs = runs

	sum, err := p.Run(ctx, types.Candidate{Name: "Anna"}, nil)
	require.ErrorIs(t, err, context.Canceled)

	logged, err := runs.Get(context.Background(), sum.Run.ID)
	require.NoError(t, err)
	assert.Contains(t, logged.Error, "context canceled")
	assert.False(t, logged.FinishedAt.IsZero(), "an interrupted run must not look like it is still running")
}
