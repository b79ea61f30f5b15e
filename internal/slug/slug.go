// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package slug derives filesystem-safe identifiers from guest names.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// umlauts maps German letters to their two-letter transliteration. Input is
// lowercased first, except for the capital sharp s which has no simple
// lowercase mapping in every locale.
var umlauts = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
	"ẞ", "ss",
)

// Make returns the slug of name: lowercase ASCII letters and digits joined
// by single underscores. German umlauts become two letters, other
// diacritics are reduced to their base letter. Make is idempotent. The
// result is empty when name holds no letter or digit.
func Make(name string) string {
	s := norm.NFC.String(name)
	s = strings.ToLower(s)
	s = umlauts.Replace(s)
	s = stripMarks(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// stripMarks decomposes s and drops combining marks, so "é" becomes "e".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
