// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// VerificationStatus tells the caller whether the research document went
// through the namesake filter.
type VerificationStatus string

const (
	// VerificationVerified means the filter ran and its output was kept.
	VerificationVerified VerificationStatus = "verified"

	// VerificationSkipped means no context hint was available, so there was
	// nothing to disambiguate against.
	VerificationSkipped VerificationStatus = "skipped"

	// VerificationUnverified means the filter failed and the input was kept
	// unchanged.
	VerificationUnverified VerificationStatus = "unverified"
)

// Run records one pipeline execution for a guest.
type Run struct {
	ID             string             `json:"id" yaml:"id"`
	Slug           string             `json:"slug" yaml:"slug"`
	Name           string             `json:"name" yaml:"name"`
	ContextHint    string             `json:"context_hint,omitempty" yaml:"context_hint,omitempty"`
	RawPath        string             `json:"raw_path,omitempty" yaml:"raw_path,omitempty"`
	ResearchPath   string             `json:"research_path,omitempty" yaml:"research_path,omitempty"`
	DossierPath    string             `json:"dossier_path,omitempty" yaml:"dossier_path,omitempty"`
	Verification   VerificationStatus `json:"verification,omitempty" yaml:"verification,omitempty"`
	ResearchSource string             `json:"research_source,omitempty" yaml:"research_source,omitempty"`
	StartedAt      time.Time          `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time          `json:"finished_at" yaml:"finished_at"`
	Error          string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the run produced a dossier.
func (r Run) Succeeded() bool {
	return r.Error == "" && r.DossierPath != ""
}

// Elapsed returns the wall-clock duration of the run.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
