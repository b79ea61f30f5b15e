package types

import "time"

// ProviderConfig holds the settings for one external capability.
type ProviderConfig struct {
	// Model is the provider's model identifier (e.g. "sonar-pro").
	Model string `json:"model" yaml:"model"`

	// APIKey is the credential. Empty means the capability is not configured.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single call, including streaming.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// BaseURL overrides the provider endpoint (tests, proxies).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retries on rate limiting and transient
	// server errors (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StorageConfig holds the on-disk locations of pipeline artifacts.
type StorageConfig struct {
	// ResearchDir receives <slug>_research_raw.md and <slug>_research.md.
	ResearchDir string `json:"research_dir" yaml:"research_dir"`

	// DossierDir receives <slug>_<YYYY-MM-DD>.md.
	DossierDir string `json:"dossier_dir" yaml:"dossier_dir"`

	// ShowInfoPath is the show-context document fed to the synthesizer.
	ShowInfoPath string `json:"show_info" yaml:"show_info"`

	// DBPath is the SQLite run log.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	// Search is the broad web search capability (Tavily).
	Search ProviderConfig `json:"search" yaml:"search"`

	// DeepResearch is the primary research capability (Perplexity).
	DeepResearch ProviderConfig `json:"deep_research" yaml:"deep_research"`

	// Classify is the short completion capability used for disambiguation.
	Classify ProviderConfig `json:"classify" yaml:"classify"`

	// Verify is the completion capability used by the namesake filter.
	Verify ProviderConfig `json:"verify" yaml:"verify"`

	// Synthesis is the streaming long-form capability.
	Synthesis ProviderConfig `json:"synthesis" yaml:"synthesis"`

	// Fallback is the web-search-augmented fallback (OpenAI).
	Fallback ProviderConfig `json:"fallback" yaml:"fallback"`

	// SecondaryFallback is tried after Fallback (Gemini with search grounding).
	SecondaryFallback ProviderConfig `json:"secondary_fallback" yaml:"secondary_fallback"`

	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// DefaultPipelineConfig returns the models, timeouts, and paths used when
// nothing is configured.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Search:            ProviderConfig{Timeout: 60 * time.Second, MaxRetries: 3},
		DeepResearch:      ProviderConfig{Model: "sonar-pro", Timeout: 120 * time.Second, MaxRetries: 2},
		Classify:          ProviderConfig{Model: "claude-haiku-4-5-20251001", Timeout: 60 * time.Second, MaxRetries: 3},
		Verify:            ProviderConfig{Model: "claude-sonnet-4-5-20250929", Timeout: 120 * time.Second, MaxRetries: 2},
		Synthesis:         ProviderConfig{Model: "claude-sonnet-4-5-20250929", Timeout: 300 * time.Second, MaxRetries: 2},
		Fallback:          ProviderConfig{Model: "gpt-4o", Timeout: 120 * time.Second, MaxRetries: 2},
		SecondaryFallback: ProviderConfig{Model: "gemini-2.5-flash", Timeout: 120 * time.Second},
		Storage: StorageConfig{
			ResearchDir:  ".tmp",
			DossierDir:   "dossiers",
			ShowInfoPath: "Show Info DAS.md",
			DBPath:       ".tmp/runs.db",
		},
	}
}
