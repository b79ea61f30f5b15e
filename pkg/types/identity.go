// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Candidate is one real-world person matching a queried guest name.
type Candidate struct {
	// Name is the full name in its exact spelling.
	Name string `json:"name" yaml:"name"`

	// Description says who the person is (profession, known for).
	Description string `json:"description" yaml:"description"`

	// ContextHint is a concrete, searchable phrase (profession, notable
	// work, location) that separates this person from namesakes. It is
	// appended verbatim to downstream search queries.
	ContextHint string `json:"context_hint" yaml:"context_hint"`
}

// Disambiguation is the outcome of an identity check for a guest name.
// Candidates is never empty, and an unambiguous result holds exactly one
// candidate.
type Disambiguation struct {
	Candidates  []Candidate `json:"candidates" yaml:"candidates"`
	IsAmbiguous bool        `json:"is_ambiguous" yaml:"is_ambiguous"`
}

// Unresolved returns the degraded result used when a name cannot be
// classified: the name itself as the only candidate, without a hint.
func Unresolved(name string) Disambiguation {
	return Disambiguation{
		Candidates: []Candidate{{
			Name:        name,
			Description: "Nicht näher bestimmt",
		}},
	}
}

// Validate reports whether the result satisfies its invariants.
func (d Disambiguation) Validate() error {
	if len(d.Candidates) == 0 {
		return fmt.Errorf("disambiguation has no candidates")
	}
	if !d.IsAmbiguous && len(d.Candidates) != 1 {
		return fmt.Errorf("unambiguous disambiguation has %d candidates", len(d.Candidates))
	}
	return nil
}

// Primary returns the first candidate. Callers use it as the automatic
// selection for unambiguous results.
func (d Disambiguation) Primary() Candidate {
	if len(d.Candidates) == 0 {
		return Candidate{}
	}
	return d.Candidates[0]
}
