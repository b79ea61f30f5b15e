// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"sync"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// Artifact groups what the pipeline produced for one guest.
type Artifact struct {
	Candidate    types.Candidate
	RawPath      string
	ResearchPath string
	Verification types.VerificationStatus
	Dossier      string
	DossierPath  string
}

// Artifacts is a slug-keyed artifact store owned by the caller. It has no
// eviction; the owner decides its lifetime. Safe for concurrent use.
type Artifacts struct {
	mu    sync.RWMutex
	items map[string]Artifact
}

// NewArtifacts returns an empty store.
func NewArtifacts() *Artifacts {
	return &Artifacts{items: make(map[string]Artifact)}
}

// Get returns the artifact stored under slug.
func (a *Artifacts) Get(slug string) (Artifact, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	art, ok := a.items[slug]
	return art, ok
}

// Update applies fn to the artifact under slug, starting from the zero
// value when none exists.
func (a *Artifacts) Update(slug string, fn func(*Artifact)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	art := a.items[slug]
	fn(&art)
	a.items[slug] = art
}
