// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the dossier-engine
// pipeline stages: web search records, identity candidates, prompts, run
// records, configuration, and the error taxonomy.
package types

// SearchDepth selects how thoroughly the web search provider crawls.
type SearchDepth string

const (
	DepthBasic    SearchDepth = "basic"
	DepthAdvanced SearchDepth = "advanced"
)

// SearchTopic narrows a web search to a content category.
type SearchTopic string

const (
	TopicGeneral SearchTopic = "general"
	TopicNews    SearchTopic = "news"
)

// WebSearchRequest describes one query against the web search capability.
type WebSearchRequest struct {
	// Query is the search string, passed to the provider verbatim.
	Query string `json:"query"`

	// Depth selects basic or advanced crawling.
	Depth SearchDepth `json:"search_depth,omitempty"`

	// MaxResults caps the number of returned results.
	MaxResults int `json:"max_results,omitempty"`

	// IncludeAnswer asks the provider for a synthesized answer summary.
	IncludeAnswer bool `json:"include_answer"`

	// Topic restricts the search to a category (e.g. news).
	Topic SearchTopic `json:"topic,omitempty"`

	// IncludeDomains restricts results to the listed domains.
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// WebResult is a single hit returned by the web search capability.
type WebResult struct {
	Title   string  `json:"title" yaml:"title"`
	URL     string  `json:"url" yaml:"url"`
	Content string  `json:"content" yaml:"content"`
	Score   float64 `json:"score" yaml:"score"`
}

// WebSearchResponse is the normalized answer of the web search capability.
type WebSearchResponse struct {
	// Answer is the provider's synthesized summary; empty when not requested.
	Answer string `json:"answer"`

	// Results lists the hits in provider order.
	Results []WebResult `json:"results"`
}

// Prompt is a single-turn request to a text generation capability.
type Prompt struct {
	// System is the optional system instruction.
	System string

	// User is the user turn.
	User string

	// MaxTokens caps the generated output. Zero selects the adapter default.
	MaxTokens int
}
