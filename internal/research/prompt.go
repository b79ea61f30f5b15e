// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

const dateLayout = "02.01.2006"

// briefTmpl is the five-section research brief sent to the primary
// provider.
var briefTmpl = template.Must(template.New("brief").Parse(`Du bist Chef-Rechercheur für eine führende TV-Talkshow. Deine Aufgabe ist es, ein detailliertes, kritisches und gesprächsorientiertes Dossier über den folgenden Gast zu erstellen:

AKTUELLES DATUM: Heute ist der {{.Today}}. Informationen aus {{.Year}} und {{.NextYear}} sind GEGENWART, nicht Zukunft.

GAST: {{.Name}}
{{- if .Hint}}

KONTEXT: Es handelt sich um {{.Hint}}. Recherchiere AUSSCHLIESSLICH über diese Person.
WARNUNG: Es gibt andere Personen mit ähnlichem Namen. Prüfe bei JEDER Information, ob sie sich wirklich auf die richtige Person bezieht. Im Zweifel: weglassen.
{{- end}}

Bitte führe eine umfassende Deep Research durch (suche in Nachrichtenarchiven, Social Media, Interviews der letzten 12 Monate, Biografien) und erstelle das Dossier exakt nach folgender Struktur. Sei präzise, nenne Quellen und vermeide PR-Sprech.

WICHTIG: Stelle sicher, dass sich alle Informationen tatsächlich auf die oben genannte Person beziehen. Verwechsle sie NICHT mit Namensvettern oder ähnlich klingenden Personen.

---

### 1. Der aktuelle Aufhänger (The "Why Now")
Warum ist diese Person *jetzt gerade* relevant?
- Was hat sie in den letzten 3-6 Monaten getan, veröffentlicht oder gesagt?
- Gibt es aktuelle Skandale, virale Momente, gewonnene Preise oder neue Projekte (Buch, Film, Amt)?
- Welches Thema dominiert die aktuelle Berichterstattung über sie?

### 2. Die "Hidden Gems" (Biografie & Brüche)
Ignoriere den Standard-Wikipedia-Lebenslauf. Suche nach dem Interessanten:
- Gab es Brüche, Scheitern oder ungewöhnliche Wendungen im Leben?
- Was sind überraschende Fakten, die kaum jemand weiß (Hobbys, Marotten, frühere Jobs)?
- Gibt es ein prägendes Ereignis ("Origin Story"), das den Charakter erklärt?

### 3. Der Konflikt & Die Kritik (Die "Hard Talk" Vorbereitung)
Wo bietet die Person Angriffsfläche?
- Welche kontroversen Aussagen oder Handlungen gab es in der Vergangenheit?
- Wo widerspricht sich die Person (z.B. Aussagen von vor 5 Jahren vs. heute)?
- Welche Kritikpunkte bringen politische Gegner, Feuilletonisten oder Konkurrenten vor?

### 4. O-Töne & Narrativ (Wie spricht der Gast?)
- Zitiere 3 prägnante, steile oder emotionale Aussagen aus den letzten 12 Monaten (mit Quelle/Datum).
- Welches "Narrativ" versucht der Gast aktuell zu verkaufen (z.B. "Ich bin der Retter", "Ich bin das Opfer", "Ich bin der pragmatische Macher")?

### 5. Beziehungs-Netzwerk
- Mit wem ist der Gast verbündet? (Politische Seilschaften, beste Freunde, Geschäftspartner).
- Wer sind die Erzfeinde oder Rivalen?

---

FORMAT-VORGABE:
Nutze Markdown. Schreibe stichpunktartig aber detailreich. Füge bei kritischen Fakten oder Zitaten immer die Quelle/Datum in Klammern hinzu.`))

var systemTmpl = template.Must(template.New("system").Parse(`Du bist ein erfahrener Rechercheur für deutsche TV-Talkshows. Heute ist der {{.Today}}. Informationen aus {{.Year}} und {{.NextYear}} sind Gegenwart. Recherchiere gründlich und liefere quellenbasierte Ergebnisse auf Deutsch. WICHTIG: Du recherchierst über {{.Name}}{{if .Hint}} {{.Hint}}{{end}}. Verwechsle diese Person NICHT mit Namensvettern.`))

const fallbackSystem = "Du bist ein erfahrener Rechercheur für deutsche TV-Talkshows. Recherchiere gründlich auf Deutsch."

type promptData struct {
	Name     string
	Hint     string
	Today    string
	Year     int
	NextYear int
}

func newPromptData(name, hint string, now time.Time) promptData {
	return promptData{
		Name:     name,
		Hint:     hint,
		Today:    now.Format(dateLayout),
		Year:     now.Year(),
		NextYear: now.Year() + 1,
	}
}

// primaryPrompt renders the system instruction and brief for the primary
// deep research provider.
func primaryPrompt(name, hint string, now time.Time) (types.Prompt, error) {
	data := newPromptData(name, hint, now)

	var sys, user bytes.Buffer
	if err := systemTmpl.Execute(&sys, data); err != nil {
		return types.Prompt{}, fmt.Errorf("rendering research system prompt: %w", err)
	}
	if err := briefTmpl.Execute(&user, data); err != nil {
		return types.Prompt{}, fmt.Errorf("rendering research brief: %w", err)
	}
	return types.Prompt{System: sys.String(), User: user.String()}, nil
}

// fallbackPrompt is the single-shot request sent to fallback providers.
func fallbackPrompt(name, hint string) types.Prompt {
	subject := name
	if hint != "" {
		subject = fmt.Sprintf("%s (%s)", name, hint)
	}
	return types.Prompt{
		System: fallbackSystem,
		User: fmt.Sprintf("Recherchiere aktuelle Informationen über %s: Aktuelle Projekte, Kontroversen, "+
			"überraschende Fakten, wichtige Zitate der letzten 12 Monate. Nenne immer Quellen.", subject),
	}
}
