// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

// realtimeSnippet caps the characters taken from each real-time hit.
const realtimeSnippet = 300

// socialDomains restricts the profile search to social platforms.
var socialDomains = []string{
	"instagram.com",
	"twitter.com",
	"x.com",
	"linkedin.com",
	"tiktok.com",
	"facebook.com",
	"youtube.com",
}

const (
	noProfiles  = "- Keine Social-Media-Profile gefunden.\n\n"
	unavailable = "- Echtzeit-Check nicht verfügbar.\n"
)

// Searcher is the recency-filtered web search capability.
type Searcher interface {
	Search(ctx context.Context, req types.WebSearchRequest) (types.WebSearchResponse, error)
}

// searchQuery qualifies the quoted name with the identity hint so that
// results favor the selected person.
func searchQuery(name, hint, suffix string) string {
	q := `"` + name + `"`
	for _, part := range []string{hint, suffix} {
		if part != "" {
			q += " " + part
		}
	}
	return strings.TrimSpace(q)
}

// realtimeCheck runs the news, social, and image-platform searches and
// renders the real-time section. Any search failure fails the whole check.
func realtimeCheck(ctx context.Context, s Searcher, name, hint string) (string, error) {
	news, err := s.Search(ctx, types.WebSearchRequest{
		Query:         searchQuery(name, hint, "aktuelle News"),
		Depth:         types.DepthAdvanced,
		MaxResults:    5,
		IncludeAnswer: true,
		Topic:         types.TopicNews,
	})
	if err != nil {
		return "", fmt.Errorf("news search: %w", err)
	}

	social, err := s.Search(ctx, types.WebSearchRequest{
		Query:          searchQuery(name, hint, ""),
		Depth:          types.DepthAdvanced,
		MaxResults:     5,
		IncludeAnswer:  true,
		IncludeDomains: socialDomains,
	})
	if err != nil {
		return "", fmt.Errorf("social search: %w", err)
	}

	insta, err := s.Search(ctx, types.WebSearchRequest{
		Query:          searchQuery(name, hint, "site:instagram.com"),
		Depth:          types.DepthBasic,
		MaxResults:     3,
		IncludeDomains: []string{"instagram.com"},
	})
	if err != nil {
		return "", fmt.Errorf("instagram search: %w", err)
	}

	return renderRealtime(news, social, insta), nil
}

func renderRealtime(news, social, insta types.WebSearchResponse) string {
	var b strings.Builder
	b.WriteString(Marker + "\n\n")

	b.WriteString("### Aktuelle News (letzte 48h)\n")
	if news.Answer != "" {
		b.WriteString(news.Answer + "\n\n")
	}
	for _, r := range news.Results {
		url := r.URL
		if url == "" {
			url = "N/A"
		}
		writeItem(&b, r.Title, r.Content, url)
	}

	b.WriteString("### Social Media Profile\n")
	if social.Answer != "" {
		b.WriteString(social.Answer + "\n\n")
	}

	all := append(append([]types.WebResult{}, social.Results...), insta.Results...)
	seen := make(map[string]bool, len(all))
	for _, r := range all {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		writeItem(&b, r.Title, r.Content, r.URL)
	}
	if len(all) == 0 {
		b.WriteString(noProfiles)
	}
	return b.String()
}

// unavailableSection keeps the marker present when the check failed.
func unavailableSection() string {
	return Marker + "\n\n" + unavailable
}

func writeItem(b *strings.Builder, title, content, url string) {
	if title == "" {
		title = "Ohne Titel"
	}
	fmt.Fprintf(b, "- **%s**\n", title)
	fmt.Fprintf(b, "  %s\n", clip(content, realtimeSnippet))
	fmt.Fprintf(b, "  Quelle: %s\n\n", url)
}

// clip returns at most n runes of s.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
