package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"brandwatch/internal/models"
)

// TrackingConfig controls what the fetcher asks external services for.
// Hierarchical settings that are easier to manage in YAML than env vars.
type TrackingConfig struct {
	// CategoryTerms maps a brand category to generic search terms.
	// Only the first two terms of a category are used.
	CategoryTerms map[string][]string `yaml:"category_terms"`

	// CitationQueries are prompt templates; {brand} is replaced by the brand name.
	CitationQueries []string `yaml:"citation_queries"`

	// RefreshQueries are the templates used by scheduled refreshes.
	RefreshQueries []string `yaml:"refresh_queries"`

	// PendingModels get placeholder citations because no live integration exists.
	PendingModels []string `yaml:"pending_models"`

	// ReviewPlatforms get placeholder reviews when a brand is fetched.
	ReviewPlatforms []string `yaml:"review_platforms"`
}

// DefaultTracking returns the built-in tracking settings.
func DefaultTracking() *TrackingConfig {
	return &TrackingConfig{
		CategoryTerms: map[string][]string{
			models.CategorySoftware:  {"software", "app", "tool", "solution"},
			models.CategoryEcommerce: {"online store", "shop", "marketplace", "retail"},
			models.CategoryFinance:   {"finance", "accounting", "bookkeeping", "financial"},
			models.CategoryHealth:    {"health", "wellness", "medical", "healthcare"},
			models.CategoryFood:      {"food", "restaurant", "delivery", "cuisine"},
			models.CategoryServices:  {"services", "consulting", "agency", "professional"},
			models.CategoryOther:     {"company", "business", "brand"},
		},
		CitationQueries: []string{
			"What is {brand}?",
			"Tell me about {brand}",
		},
		RefreshQueries: []string{
			"What is {brand} and what does it do?",
			"Tell me about {brand}'s main features",
		},
		PendingModels: []string{
			models.AIModelChatGPT,
			models.AIModelPerplexity,
		},
		ReviewPlatforms: []string{
			models.PlatformGoogle,
			models.PlatformTrustpilot,
			models.PlatformG2,
		},
	}
}

// LoadTrackingConfig reads the YAML file at path and overlays it on the
// defaults. A missing file yields the defaults.
func LoadTrackingConfig(path string) (*TrackingConfig, error) {
	cfg := DefaultTracking()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var file TrackingConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for category, terms := range file.CategoryTerms {
		if !models.IsValidCategory(category) {
			return nil, fmt.Errorf("unknown category %q in %s", category, path)
		}
		if len(terms) > 0 {
			cfg.CategoryTerms[category] = terms
		}
	}
	if len(file.CitationQueries) > 0 {
		cfg.CitationQueries = file.CitationQueries
	}
	if len(file.RefreshQueries) > 0 {
		cfg.RefreshQueries = file.RefreshQueries
	}
	if file.PendingModels != nil {
		for _, m := range file.PendingModels {
			if !models.IsValidAIModel(m) {
				return nil, fmt.Errorf("unknown ai model %q in %s", m, path)
			}
		}
		cfg.PendingModels = file.PendingModels
	}
	if file.ReviewPlatforms != nil {
		for _, p := range file.ReviewPlatforms {
			if !models.IsValidPlatform(p) {
				return nil, fmt.Errorf("unknown review platform %q in %s", p, path)
			}
		}
		cfg.ReviewPlatforms = file.ReviewPlatforms
	}

	return cfg, nil
}
