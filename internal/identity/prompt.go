// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package identity

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// snippetLimit caps the characters taken from each search result.
const snippetLimit = 400

// classifyPromptTmpl asks the model whether a name denotes one or several
// public figures and fixes the JSON shape of the answer.
var classifyPromptTmpl = template.Must(template.New("classify").Parse(`Analysiere die folgenden Suchergebnisse zum Namen "{{.Name}}".

SUCHERGEBNISSE:
{{.Context}}

AUFGABE: Gibt es mehrere verschiedene bekannte Personen mit diesem Namen (oder sehr ähnlichem Namen)?

Antworte AUSSCHLIESSLICH im folgenden JSON-Format, ohne zusätzlichen Text:
{
  "candidates": [
    {
      "name": "Voller Name der Person (exakte Schreibweise)",
      "description": "Kurze Beschreibung (Beruf, bekannt für...)",
      "context_hint": "Spezifische Suchbegriffe zur Identifikation, z.B. 'Autor Roman Schimmernder Dunst' oder 'Kinobetreiber Programmkino Rex Darmstadt'. Muss konkrete Keywords enthalten, die diese Person von Namensvettern unterscheiden."
    }
  ],
  "is_ambiguous": true/false
}

Regeln:
- Wenn der Name EINDEUTIG nur eine bekannte Person ergibt: is_ambiguous=false, ein Kandidat
- Wenn es MEHRERE verschiedene Personen gibt: is_ambiguous=true, alle Kandidaten auflisten
- Berücksichtige auch Schreibvarianten (ü/ue, ß/ss, etc.)
- Nur real existierende Personen, keine Vermutungen
- WICHTIG für context_hint: Verwende konkrete, suchbare Keywords (Buchtitel, Firma, Ort, Beruf), KEINE vagen Beschreibungen`))

// searchQuery is the broad identity query for name.
func searchQuery(name string) string {
	return fmt.Sprintf(`"%s" wer ist Person Beruf`, name)
}

// searchContext renders search hits as the evidence block of the prompt.
func searchContext(resp types.WebSearchResponse) string {
	var b strings.Builder
	if resp.Answer != "" {
		fmt.Fprintf(&b, "Zusammenfassung: %s\n\n", resp.Answer)
	}
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "- %s: %s\n", r.Title, truncate(r.Content, snippetLimit))
		fmt.Fprintf(&b, "  URL: %s\n\n", r.URL)
	}
	return b.String()
}

func buildClassifyPrompt(name string, resp types.WebSearchResponse) (types.Prompt, error) {
	var buf bytes.Buffer
	data := struct{ Name, Context string }{Name: name, Context: searchContext(resp)}
	if err := classifyPromptTmpl.Execute(&buf, data); err != nil {
		return types.Prompt{}, fmt.Errorf("rendering classification prompt: %w", err)
	}
	return types.Prompt{User: buf.String(), MaxTokens: 1500}, nil
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
