// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

type stubModel struct {
	text    string
	err     error
	prompts []types.Prompt
}

func (s *stubModel) Complete(_ context.Context, p types.Prompt) (string, error) {
	s.prompts = append(s.prompts, p)
	return s.text, s.err
}

const doc = "# Research-Dossier: Max Mustermann\n\nFußballtrainer beim SV Musterstadt."

func TestVerify_Filtered(t *testing.T) {
	m := &stubModel{text: "# Research-Dossier: Max Mustermann\n\n[⚠️ MÖGLICHE VERWECHSLUNG] ..."}
	f := &Filter{Model: m, Now: func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }}

	res := f.Verify(context.Background(), "Max Mustermann", "Kinderbuchautor Kassel", doc)

	assert.Equal(t, types.VerificationVerified, res.Status)
	assert.Equal(t, m.text, res.Text)
	assert.NoError(t, res.Err)

	require.Len(t, m.prompts, 1)
	user := m.prompts[0].User
	assert.Contains(t, user, "- Name: Max Mustermann\n- Identifikation: Kinderbuchautor Kassel")
	assert.Contains(t, user, doc)
	assert.Contains(t, user, "Heute ist der 02.01.2026")
	assert.Contains(t, user, "[⚠️ MÖGLICHE VERWECHSLUNG]")
}

func TestVerify_SkippedWithoutHint(t *testing.T) {
	m := &stubModel{text: "anders"}
	f := &Filter{Model: m}

	res := f.Verify(context.Background(), "Max", "  ", doc)
	assert.Equal(t, types.VerificationSkipped, res.Status)
	assert.Equal(t, doc, res.Text)
	assert.Empty(t, m.prompts)
}

func TestVerify_FailOpen(t *testing.T) {
	tests := []struct {
		name  string
		model Completer
	}{
		{"provider error", &stubModel{err: &types.ProviderError{Provider: "anthropic", Op: "complete", Status: 529}}},
		{"missing key", &stubModel{err: &types.ConfigurationError{Key: "anthropic-api-key"}}},
		{"empty answer", &stubModel{text: "\n  "}},
		{"no model", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := &Filter{Model: tc.model}
			res := f.Verify(context.Background(), "Max", "Autor", doc)
			assert.Equal(t, doc, res.Text, "input must pass through unchanged")
			assert.Equal(t, types.VerificationUnverified, res.Status)
			assert.Error(t, res.Err)
		})
	}
}

func TestVerify_ErrorIsKept(t *testing.T) {
	ce := &types.ConfigurationError{Key: "anthropic-api-key"}
	f := &Filter{Model: &stubModel{err: ce}}
	res := f.Verify(context.Background(), "Max", "Autor", doc)
	assert.True(t, errors.Is(res.Err, ce))
}
