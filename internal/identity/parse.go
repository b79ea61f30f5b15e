// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// payload is the JSON shape the classifier is asked to produce.
type payload struct {
	Candidates  []types.Candidate `json:"candidates"`
	IsAmbiguous bool              `json:"is_ambiguous"`
}

// extractor pulls a JSON object out of free-form model output. It returns
// ok=false when its strategy does not apply.
type extractor struct {
	name string
	fn   func(text string) (string, bool)
}

// strategies are tried in order; the first that yields a decodable payload
// wins.
var strategies = []extractor{
	{"whole", wholeText},
	{"fenced", fencedBlock},
	{"braces", firstObject},
}

var fenceRe = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\n(.*?)```")

func wholeText(text string) (string, bool) {
	t := strings.TrimSpace(text)
	return t, strings.HasPrefix(t, "{")
}

func fencedBlock(text string) (string, bool) {
	m := fenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// firstObject returns the first balanced {...} span, skipping braces that
// appear inside JSON strings.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := matchBrace(text, start); end > 0 {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchBrace returns the index of the brace closing the one at open, or -1.
func matchBrace(text string, open int) int {
	depth := 0
	inString := false
	escaped := false
	for i := open; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var errNoCandidates = errors.New("no candidates in payload")

// parseClassification runs the strategy chain over text and returns a
// normalized result. The error is a *types.ParseError when no strategy
// produced a usable candidate list.
func parseClassification(text string) (types.Disambiguation, error) {
	var lastErr error
	for _, s := range strategies {
		raw, ok := s.fn(text)
		if !ok {
			continue
		}
		var p payload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			lastErr = err
			continue
		}
		d, err := normalize(p)
		if err != nil {
			lastErr = err
			continue
		}
		return d, nil
	}
	return types.Disambiguation{}, &types.ParseError{What: "classification", Err: lastErr}
}

// normalize drops unnamed candidates and makes IsAmbiguous agree with the
// candidate count.
func normalize(p payload) (types.Disambiguation, error) {
	var cands []types.Candidate
	for _, c := range p.Candidates {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		c.Description = strings.TrimSpace(c.Description)
		c.ContextHint = strings.TrimSpace(c.ContextHint)
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return types.Disambiguation{}, errNoCandidates
	}
	if !p.IsAmbiguous || len(cands) == 1 {
		return types.Disambiguation{Candidates: cands[:1]}, nil
	}
	return types.Disambiguation{Candidates: cands, IsAmbiguous: true}, nil
}
