// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/dossier-engine/pkg/types"
)

func TestSearchQuery(t *testing.T) {
	assert.Equal(t, `"Anna" Moderatorin NDR aktuelle News`, searchQuery("Anna", "Moderatorin NDR", "aktuelle News"))
	assert.Equal(t, `"Anna" aktuelle News`, searchQuery("Anna", "", "aktuelle News"))
	assert.Equal(t, `"Anna" Moderatorin`, searchQuery("Anna", "Moderatorin", ""))
	assert.Equal(t, `"Anna"`, searchQuery("Anna", "", ""))
}

func TestRealtimeCheck_Queries(t *testing.T) {
	s := &scriptedSearcher{}
	_, err := realtimeCheck(context.Background(), s, "Anna Beispiel", "Moderatorin NDR")
	require.NoError(t, err)

	reqs := s.requests()
	require.Len(t, reqs, 3)

	assert.Equal(t, `"Anna Beispiel" Moderatorin NDR aktuelle News`, reqs[0].Query)
	assert.Equal(t, types.TopicNews, reqs[0].Topic)
	assert.Equal(t, 5, reqs[0].MaxResults)

	assert.Equal(t, `"Anna Beispiel" Moderatorin NDR`, reqs[1].Query)
	assert.Equal(t, socialDomains, reqs[1].IncludeDomains)
	assert.True(t, reqs[1].IncludeAnswer)

	assert.Equal(t, `"Anna Beispiel" Moderatorin NDR site:instagram.com`, reqs[2].Query, "every realtime query carries the hint")
	assert.Equal(t, types.DepthBasic, reqs[2].Depth)
	assert.Equal(t, 3, reqs[2].MaxResults)
	assert.False(t, reqs[2].IncludeAnswer)
	assert.Equal(t, []string{"instagram.com"}, reqs[2].IncludeDomains)
}

func TestRenderRealtime(t *testing.T) {
	news := types.WebSearchResponse{
		Answer:  "Neues Buch erschienen.",
		Results: []types.WebResult{{Title: "Buchpremiere", URL: "https://news.example/1", Content: strings.Repeat("x", 350)}},
	}
	social := types.WebSearchResponse{
		Results: []types.WebResult{
			{Title: "Anna (@anna)", URL: "https://instagram.com/anna", Content: "Profil"},
			{Title: "", URL: "https://x.com/anna", Content: "Posts"},
		},
	}
	insta := types.WebSearchResponse{
		Results: []types.WebResult{{Title: "Anna (@anna)", URL: "https://instagram.com/anna", Content: "Profil"}},
	}

	out := renderRealtime(news, social, insta)

	assert.True(t, strings.HasPrefix(out, Marker+"\n\n### Aktuelle News (letzte 48h)\nNeues Buch erschienen.\n\n"))
	assert.Contains(t, out, "- **Buchpremiere**\n  "+strings.Repeat("x", realtimeSnippet)+"\n  Quelle: https://news.example/1\n\n")
	assert.NotContains(t, out, strings.Repeat("x", realtimeSnippet+1))
	assert.Contains(t, out, "- **Ohne Titel**\n  Posts\n  Quelle: https://x.com/anna\n\n")
	assert.Equal(t, 1, strings.Count(out, "https://instagram.com/anna"), "duplicate profile URLs are merged")
	assert.NotContains(t, out, "Keine Social-Media-Profile")
}

func TestRenderRealtime_NoProfiles(t *testing.T) {
	out := renderRealtime(types.WebSearchResponse{}, types.WebSearchResponse{}, types.WebSearchResponse{})
	assert.Contains(t, out, "### Social Media Profile\n"+noProfiles)
	assert.True(t, strings.HasPrefix(out, Marker))
}
