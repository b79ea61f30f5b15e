// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"strings"
	"time"
)

// Marker opens the real-time section of a research document.
const Marker = "## Echtzeit-Check (Tavily)"

// Separator sits between the narrative body and the real-time section.
const Separator = "\n\n---\n\n"

// timestampLayout is the German date format of the document header.
const timestampLayout = "02.01.2006 15:04"

// Document is a merged research result.
type Document struct {
	// Text is the full Markdown document.
	Text string

	// Source names the provider that produced the narrative body: the
	// primary provider or "fallback:<label>".
	Source string

	// RealtimeOK is false when the real-time check failed and the section
	// carries only a placeholder.
	RealtimeOK bool
}

// Split partitions doc at the first Marker. narrative is everything before
// the marker and realtime is the marker and everything after it, so
// narrative+realtime == doc. found is false, and realtime empty, when doc
// has no marker.
func Split(doc string) (narrative, realtime string, found bool) {
	i := strings.Index(doc, Marker)
	if i < 0 {
		return doc, "", false
	}
	return doc[:i], doc[i:], true
}

// Join reverses Split.
func Join(narrative, realtime string) string {
	return narrative + realtime
}

// header renders the title block of a research document.
func header(name, hint string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research-Dossier: %s\n", name)
	if hint != "" {
		fmt.Fprintf(&b, "**Identifikation:** %s\n", hint)
	}
	fmt.Fprintf(&b, "*Erstellt am %s*\n\n", now.Format(timestampLayout))
	return b.String()
}

// merge assembles the final document.
func merge(name, hint string, now time.Time, body, realtime string) string {
	return header(name, hint, now) + body + Separator + realtime
}
