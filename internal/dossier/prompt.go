// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dossier

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// maxTokens bounds the length of a generated dossier.
const maxTokens = 8000

const systemPrompt = `# ROLLE & PERSONA
Du bist ein erfahrener Chefredakteur und Stratege für eine hochwertige Unterhaltungssendung. Deine Aufgabe ist es, Moderations-Dossiers zu erstellen, die brillant, pointiert und strategisch sind. Dein Zielpublikum ist ein Moderator, der wenig Zeit hat, aber maximal gut vorbereitet sein muss. Du hasst Langeweile, PR-Phrasen und Wikipedia-Wissen. Du suchst nach dem "Gold" in den Informationen.

# OUTPUT REGELN
* Schreibe direkt das Dossier, keine Einleitungen wie "Hier ist das Dossier".
* Sprache: Deutsch.
* Tonalität: Professionell, aber locker und direkt (TV-Sprech).
* Formatierung: Nutze Emojis sparsam zur Orientierung. Nutze Fettungen für Schlüsselwörter.
* WICHTIG: Beginne das Dossier IMMER mit dem Inhaltsverzeichnis (Navigation) wie im Format vorgegeben. Halte dich EXAKT an die vorgegebenen HTML-Anker-IDs.`

var dateTmpl = template.Must(template.New("date").Parse(`

# AKTUELLES DATUM
Heute ist der {{.Today}}. Informationen aus {{.Year}} und {{.NextYear}} sind GEGENWART. Behandle sie als aktuell. Schreibe niemals, dass etwas 'in der Zukunft' liegt oder 'noch nicht bekannt' ist, wenn es sich um Ereignisse aus {{.Year}}/{{.NextYear}} handelt.`))

// userTmpl carries the inputs and the fixed seven-section schema.
var userTmpl = template.Must(template.New("user").Parse(`# DEINE INPUTS

## SHOW_INFO
{{.ShowInfo}}

## RESEARCH_DATA
{{.Research}}

## ECHTZEIT-DATEN (für Freshness-Check)
{{.Realtime}}

# DAS ZIEL-FORMAT (DOSSIER STRUKTUR)
Erstelle das Dossier strikt nach folgender Struktur. Nutze Markdown (Fettungen, Bulletpoints), um es scannbar zu machen.

BEGINNE mit diesem EXAKTEN Inhaltsverzeichnis (ersetze nur [GASTNAME] durch {{.Name}}):

# Dossier: [GASTNAME]

` + Navigation + `

---

Danach folgen die Abschnitte. WICHTIG: Überschriften-Hierarchie STRIKT einhalten:
- Hauptabschnitte (1. THE CHEAT SHEET, 2. HIDDEN GEMS, ...): immer ` + "`#`" + ` (h1)
- Unterüberschriften innerhalb eines Abschnitts (Eisbrecher, Themen-Cluster, ...): immer ` + "`##`" + ` (h2)
- Blöcke / Detail-Ebene (BLOCK 1, BLOCK 2, ...): immer ` + "`###`" + ` (h3)

<a id="cheat-sheet"></a>
# 1. THE CHEAT SHEET (Auf einen Blick)
* **Name & Status:** (Kurz & knackig)
* **Der Hook:** Was promotet er/sie HEUTE? (Buch, Film, Tour etc.)
* **Der aktuelle Vibe:** (Basierend auf News/Social Media: Ist er auf Krawall gebürstet, emotional, euphorisch?)

---

<a id="hidden-gems"></a>
# 2. HIDDEN GEMS (Das Gold aus dem Research)
* Filtere das Research-Material. Ignoriere Standard-Biografien.
* Liste 3-4 überraschende Fakten, Talente oder skurrile Hobbys auf.
* Suche nach Brüchen (z.B. "Harter Rapper, der Rosen züchtet").

---

<a id="gespraechsfuehrung"></a>
# 3. GESPRÄCHSFÜHRUNG & DRAMATURGIE
Schlage einen Gesprächsbogen vor:

## Eisbrecher
Eine Einstiegsfrage, die sofort eine Stimmung setzt (Kein "Wie geht's").

## Themen-Cluster (Spannungsbogen)
3 Hauptthemen, sortiert nach Spannungsbogen (Lustig -> Ernst -> Emotional). Strukturiere sie als:

### BLOCK 1: [Thema]
### BLOCK 2: [Thema]
### BLOCK 3: [Thema]

---

<a id="killer-fragen"></a>
# 4. DIE "KILLER-FRAGEN" (Anti-PR)
Formuliere 3 konkrete Fragen, die den Gast aus der Reserve locken.
* Keine Standard-Fragen ("Wie war der Dreh?").
* Nutze psychologische Hebel oder hypothetische Szenarien ("Wenn du eine Sache in deiner Karriere ungeschehen machen könntest...").

---

<a id="show-integration"></a>
# 5. SHOW-INTEGRATION
* Wie passt der Gast in DIESE spezifische Sendung (basierend auf SHOW_INFO)?
* Idee für eine Aktion, ein Spiel oder eine Interaktion mit dem Publikum/Moderator.

---

<a id="red-flags"></a>
# 6. RED FLAGS
* Themen, die absolut tabu sind oder juristisch heikel (Warnung in FETT).
* Sensible Punkte (Trauerfälle, Scheidungen), die Fingerspitzengefühl erfordern.

---

<a id="freshness-check"></a>
# 7. FRESHNESS CHECK
* **Breaking News:** Gab es heute Schlagzeilen?
* **Social Media:** Was war der allerletzte Post? (Damit der Moderator sagen kann: "Ich hab gesehen, du hast heute morgen...")`))

type userData struct {
	Name     string
	ShowInfo string
	Research string
	Realtime string
}

func buildPrompt(data userData, now time.Time) (types.Prompt, error) {
	var sys bytes.Buffer
	sys.WriteString(systemPrompt)
	err := dateTmpl.Execute(&sys, struct {
		Today          string
		Year, NextYear int
	}{now.Format("02.01.2006"), now.Year(), now.Year() + 1})
	if err != nil {
		return types.Prompt{}, fmt.Errorf("rendering date block: %w", err)
	}

	var user bytes.Buffer
	if err := userTmpl.Execute(&user, data); err != nil {
		return types.Prompt{}, fmt.Errorf("rendering dossier prompt: %w", err)
	}
	return types.Prompt{System: sys.String(), User: user.String(), MaxTokens: maxTokens}, nil
}
