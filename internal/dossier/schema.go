// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dossier

import (
	"bytes"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Anchors lists the section anchor ids in their required order.
var Anchors = []string{
	"cheat-sheet",
	"hidden-gems",
	"gespraechsfuehrung",
	"killer-fragen",
	"show-integration",
	"red-flags",
	"freshness-check",
}

// Navigation is the quick-navigation block that follows the title.
const Navigation = "> **Quick Navigation:**\n" +
	"> [Cheat Sheet](#cheat-sheet) | [Hidden Gems](#hidden-gems) | [Gesprächsführung](#gespraechsfuehrung) | " +
	"[Killer-Fragen](#killer-fragen) | [Show-Integration](#show-integration) | [Red Flags](#red-flags) | " +
	"[Freshness Check](#freshness-check)"

var (
	anchorRe = regexp.MustCompile(`<a\s+id="([^"]+)"\s*>`)
	atxRe    = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?[ \t]*\r?\n?$`)
)

// TitlePrefix starts the first line of every dossier.
const TitlePrefix = "# Dossier: "

// markdown parses with GitHub extensions and keeps raw HTML so the anchor
// tags survive rendering.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// event is an anchor or heading in document order.
type event struct {
	anchor string
	level  int
	title  string
}

// Validate checks that doc follows the dossier schema: a "# Dossier:" title
// as first heading, every anchor exactly once in order, and each anchor
// directly followed by a level-1 heading.
func Validate(doc string) error {
	first := firstLine(doc)
	if !strings.HasPrefix(first, TitlePrefix) || strings.TrimSpace(strings.TrimPrefix(first, TitlePrefix)) == "" {
		return fmt.Errorf("first line %q is not a dossier title", first)
	}

	events := scan([]byte(doc))

	var order []string
	seen := map[string]int{}
	for i, ev := range events {
		if ev.anchor == "" {
			continue
		}
		seen[ev.anchor]++
		order = append(order, ev.anchor)
		if i+1 >= len(events) || events[i+1].level != 1 {
			return fmt.Errorf("anchor %q is not followed by a level-1 heading", ev.anchor)
		}
	}

	for _, a := range Anchors {
		switch n := seen[a]; {
		case n == 0:
			return fmt.Errorf("anchor %q is missing", a)
		case n > 1:
			return fmt.Errorf("anchor %q appears %d times", a, n)
		}
	}

	var known []string
	for _, a := range order {
		if slices.Contains(Anchors, a) {
			known = append(known, a)
		}
	}
	for i, a := range known {
		if a != Anchors[i] {
			return fmt.Errorf("anchor %q at position %d, want %q", a, i+1, Anchors[i])
		}
	}
	return nil
}

// Title returns the guest name from the dossier's title heading, or "".
func Title(doc string) string {
	for _, ev := range scan([]byte(doc)) {
		if ev.level == 1 {
			return strings.TrimSpace(strings.TrimPrefix(ev.title, "Dossier:"))
		}
	}
	return ""
}

// RenderHTML converts a dossier to an HTML fragment, keeping anchors.
func RenderHTML(doc string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(doc), &buf); err != nil {
		return nil, fmt.Errorf("rendering dossier: %w", err)
	}
	return buf.Bytes(), nil
}

// scan walks the Markdown AST and returns anchors and headings in order.
func scan(src []byte) []event {
	root := markdown.Parser().Parse(text.NewReader(src))

	var events []event
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			events = append(events, event{level: node.Level, title: inlineText(node, src)})
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			var b strings.Builder
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				b.Write(seg.Value(src))
			}
			events = appendAnchors(events, b.String())
		case *ast.HTMLBlock:
			// An unclosed <a id="..."> opens an HTML block that runs to the
			// next blank line and swallows the heading after it.
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				line := string(seg.Value(src))
				if m := atxRe.FindStringSubmatch(line); m != nil {
					events = append(events, event{level: len(m[1]), title: strings.TrimSpace(strings.TrimRight(m[2], "#"))})
					continue
				}
				events = appendAnchors(events, line)
			}
		}
		return ast.WalkContinue, nil
	})
	return events
}

func appendAnchors(events []event, raw string) []event {
	for _, m := range anchorRe.FindAllStringSubmatch(raw, -1) {
		events = append(events, event{anchor: m[1]})
	}
	return events
}

// inlineText concatenates the text leaves under n.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
