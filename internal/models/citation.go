package models

import (
	"time"

	"github.com/google/uuid"
)

// AI models a citation can be recorded against.
const (
	AIModelChatGPT    = "chatgpt"
	AIModelGemini     = "gemini"
	AIModelPerplexity = "perplexity"
	AIModelCopilot    = "copilot"
	AIModelGoogleAI   = "google_ai"
	AIModelClaude     = "claude"
)

// AIModels lists every accepted AI model in display order.
var AIModels = []string{
	AIModelChatGPT,
	AIModelGemini,
	AIModelPerplexity,
	AIModelCopilot,
	AIModelGoogleAI,
	AIModelClaude,
}

var aiModelDisplayNames = map[string]string{
	AIModelChatGPT:    "ChatGPT",
	AIModelGemini:     "Gemini",
	AIModelPerplexity: "Perplexity",
	AIModelCopilot:    "Microsoft Copilot",
	AIModelGoogleAI:   "Google AI Overview",
	AIModelClaude:     "Claude",
}

// Citation status values. Pending rows are placeholders for models
// without a live integration.
const (
	CitationChecked = "checked"
	CitationPending = "pending"
)

// PendingContext is the context text stored on placeholder citations.
const PendingContext = "Pending verification"

// Citation records whether an AI model mentioned a brand for a query on a date.
type Citation struct {
	ID             uuid.UUID `json:"id"`
	BrandID        uuid.UUID `json:"brand"`
	BrandName      string    `json:"brand_name"`
	AIModel        string    `json:"ai_model"`
	AIModelDisplay string    `json:"ai_model_display"`
	Query          string    `json:"query"`
	Mentioned      bool      `json:"mentioned"`
	Context        string    `json:"citation_context"`
	Status         string    `json:"status"`
	Date           string    `json:"date"`
	CreatedAt      time.Time `json:"created_at"`
}

// CitationModelBreakdown is the per-model slice of citation totals.
type CitationModelBreakdown struct {
	AIModel        string  `json:"ai_model"`
	AIModelDisplay string  `json:"ai_model_display"`
	Total          int     `json:"total"`
	Mentioned      int     `json:"mentioned"`
	NotMentioned   int     `json:"not_mentioned"`
	CitationRate   float64 `json:"citation_rate"`
}

// CitationBreakdown groups citation totals by AI model.
type CitationBreakdown struct {
	Breakdown      []CitationModelBreakdown `json:"breakdown"`
	TotalCitations int                      `json:"total_citations"`
	TotalMentioned int                      `json:"total_mentioned"`
}

// CitationSummary aggregates citations matching a filter.
type CitationSummary struct {
	TotalCitations int     `json:"total_citations"`
	TotalMentioned int     `json:"total_mentioned"`
	CitationRate   float64 `json:"citation_rate"`
}

// IsValidAIModel reports whether model is one of AIModels.
func IsValidAIModel(model string) bool {
	_, ok := aiModelDisplayNames[model]
	return ok
}

// AIModelDisplayName returns the human label for a model, or the raw value if unknown.
func AIModelDisplayName(model string) string {
	if name, ok := aiModelDisplayNames[model]; ok {
		return name
	}
	return model
}
