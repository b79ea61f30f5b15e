// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists pipeline artifacts: research and dossier Markdown
// on disk, a keyed in-memory artifact store for interactive callers, and a
// SQLite log of pipeline runs.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

const (
	rawSuffix      = "_research_raw.md"
	researchSuffix = "_research.md"
	dateLayout     = "2006-01-02"
)

// FileStore writes research and dossier files. Files are keyed by slug
// (and date for dossiers); a later write for the same key overwrites.
type FileStore struct {
	ResearchDir string
	DossierDir  string

	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// NewFileStore returns a FileStore for the configured directories.
func NewFileStore(cfg types.StorageConfig) *FileStore {
	return &FileStore{ResearchDir: cfg.ResearchDir, DossierDir: cfg.DossierDir}
}

// Entry describes one stored file.
type Entry struct {
	Slug    string
	Path    string
	ModTime time.Time
}

// RawResearchPath returns the path of the pre-verification research file.
func (s *FileStore) RawResearchPath(slug string) string {
	return filepath.Join(s.ResearchDir, slug+rawSuffix)
}

// ResearchPath returns the path of the verified research file.
func (s *FileStore) ResearchPath(slug string) string {
	return filepath.Join(s.ResearchDir, slug+researchSuffix)
}

// DossierPath returns the dossier path for slug on the current date.
func (s *FileStore) DossierPath(slug string) string {
	return filepath.Join(s.DossierDir, fmt.Sprintf("%s_%s.md", slug, s.now().Format(dateLayout)))
}

// WriteRawResearch stores the pre-verification research document.
func (s *FileStore) WriteRawResearch(slug, text string) (string, error) {
	return write(s.RawResearchPath(slug), text)
}

// WriteResearch stores the verified research document.
func (s *FileStore) WriteResearch(slug, text string) (string, error) {
	return write(s.ResearchPath(slug), text)
}

// WriteDossier stores a finished dossier.
func (s *FileStore) WriteDossier(slug, text string) (string, error) {
	return write(s.DossierPath(slug), text)
}

// RawFor maps a verified research path to its raw sibling.
func RawFor(researchPath string) string {
	dir, base := filepath.Split(researchPath)
	if !strings.HasSuffix(base, researchSuffix) {
		return ""
	}
	return filepath.Join(dir, strings.TrimSuffix(base, researchSuffix)+rawSuffix)
}

// ListResearch returns the verified research files, newest first.
func (s *FileStore) ListResearch() ([]Entry, error) {
	return list(s.ResearchDir, func(name string) (string, bool) {
		if strings.HasSuffix(name, rawSuffix) || !strings.HasSuffix(name, researchSuffix) {
			return "", false
		}
		return strings.TrimSuffix(name, researchSuffix), true
	})
}

// ListDossiers returns the dossier files, newest first.
func (s *FileStore) ListDossiers() ([]Entry, error) {
	return list(s.DossierDir, func(name string) (string, bool) {
		base, ok := strings.CutSuffix(name, ".md")
		if !ok {
			return "", false
		}
		i := strings.LastIndexByte(base, '_')
		if i <= 0 {
			return "", false
		}
		if _, err := time.Parse(dateLayout, base[i+1:]); err != nil {
			return "", false
		}
		return base[:i], true
	})
}

func (s *FileStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func write(path, text string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// list returns the files in dir accepted by match, newest first. A missing
// directory yields no entries.
func list(dir string, match func(name string) (slug string, ok bool)) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var entries []Entry
	for _, de := range des {
		if de.IsDir() {
			continue
		}
		slug, ok := match(de.Name())
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Slug:    slug,
			Path:    filepath.Join(dir, de.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Path > entries[j].Path
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, nil
}
