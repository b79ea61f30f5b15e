// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify removes research content that belongs to a different
// person with the same or a similar name.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// Completer is the generation capability used for the check.
type Completer interface {
	Complete(ctx context.Context, p types.Prompt) (string, error)
}

// Result is the filter outcome. Text is always usable: on failure it is
// the unchanged input.
type Result struct {
	Text   string
	Status types.VerificationStatus

	// Err is the reason for VerificationUnverified, nil otherwise.
	Err error
}

// Filter checks research documents against namesake confusion.
type Filter struct {
	Model Completer
	Log   *zap.Logger
	Now   func() time.Time
}

var checkerTmpl = template.Must(template.New("verify").Parse(`Du bist ein Faktenprüfer für Personenverwechslungen. Heute ist der {{.Today}}. Informationen aus {{.Year}} und {{.NextYear}} sind GEGENWART. Behandle sie als aktuell und korrekt.

DIE ZIELPERSON:
- Name: {{.Name}}
- Identifikation: {{.Hint}}

DAS ZU PRÜFENDE DOSSIER:
{{.Document}}

DEINE EINZIGE AUFGABE: Filtere Verwechslungen mit anderen Personen, die denselben oder einen ähnlichen Namen tragen.

REGELN:
1. BEHALTE alle Informationen, die plausibel zur Zielperson passen, auch wenn du sie nicht aus deiner Wissensbasis kennst. Aktuelle Informationen aus Live-Quellen ({{.Year}}/{{.NextYear}}) sind als korrekt zu behandeln.
2. ENTFERNE nur Informationen, die EINDEUTIG zu einer anderen Person gehören (klar anderer Beruf, anderes Land, völlig andere Biografie).
3. Setze [⚠️ MÖGLICHE VERWECHSLUNG] NUR wenn du eine konkrete andere Person mit gleichem Namen identifizierst, deren Daten hier fälschlicherweise auftauchen.
4. Gib das Dossier im gleichen Format zurück.

WICHTIG: Markiere NICHT, weil du eine Information nicht bestätigen kannst. Markiere NUR bei konkretem Verdacht auf eine andere Person.`))

// Verify filters doc for the identity (name, hint). It never fails: with
// an empty hint it returns VerificationSkipped, and any error or empty
// answer yields the unchanged doc with VerificationUnverified.
func (f *Filter) Verify(ctx context.Context, name, hint, doc string) Result {
	log := f.logger().With(zap.String("guest", name))

	if strings.TrimSpace(hint) == "" {
		log.Debug("verification skipped, no context hint")
		return Result{Text: doc, Status: types.VerificationSkipped}
	}

	text, err := f.check(ctx, name, hint, doc)
	if err != nil {
		log.Warn("verification failed, keeping research unverified", zap.Error(err))
		return Result{Text: doc, Status: types.VerificationUnverified, Err: err}
	}
	log.Info("verification done", zap.Int("in_bytes", len(doc)), zap.Int("out_bytes", len(text)))
	return Result{Text: text, Status: types.VerificationVerified}
}

func (f *Filter) check(ctx context.Context, name, hint, doc string) (string, error) {
	if f.Model == nil {
		return "", errors.New("no verification model configured")
	}

	now := time.Now()
	if f.Now != nil {
		now = f.Now()
	}
	var buf bytes.Buffer
	err := checkerTmpl.Execute(&buf, struct {
		Name, Hint, Document, Today string
		Year, NextYear              int
	}{name, hint, doc, now.Format("02.01.2006"), now.Year(), now.Year() + 1})
	if err != nil {
		return "", fmt.Errorf("rendering verification prompt: %w", err)
	}

	text, err := f.Model.Complete(ctx, types.Prompt{User: buf.String(), MaxTokens: 8000})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("verification returned no text")
	}
	return text, nil
}

func (f *Filter) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}
