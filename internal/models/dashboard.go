package models

import "github.com/google/uuid"

// Dashboard is the payload behind the overview page.
type Dashboard struct {
	Overview Overview `json:"overview"`
	Charts   Charts   `json:"charts"`
}

// Overview holds headline numbers for a date range.
type Overview struct {
	TotalBrands           int     `json:"total_brands"`
	AverageSearchPosition float64 `json:"average_search_position"`
	AICitationRate        float64 `json:"ai_citation_rate"`
	AverageRating         float64 `json:"average_rating"`
	TotalReviews          int     `json:"total_reviews"`
}

// Charts holds the three chart datasets.
type Charts struct {
	RankingSummary    []RankingSeries   `json:"ranking_summary"`
	CitationBreakdown []ChartSlice      `json:"citation_breakdown"`
	BrandComparison   []BrandComparison `json:"brand_comparison"`
}

// RankingSeries is one brand's ranking line.
type RankingSeries struct {
	BrandName string         `json:"brand_name"`
	Data      []RankingPoint `json:"data"`
}

// ChartSlice is one labelled pie slice.
type ChartSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// BrandComparison is one bar of the visibility comparison chart.
type BrandComparison struct {
	BrandID         uuid.UUID `json:"brand_id"`
	BrandName       string    `json:"brand_name"`
	VisibilityScore float64   `json:"visibility_score"`
	SearchScore     float64   `json:"search_score"`
	AIScore         float64   `json:"ai_score"`
	ReviewScore     float64   `json:"review_score"`
}

// BrandStats are the raw per-brand aggregates the visibility score is built from.
// Nil fields mean the brand has no rows of that kind.
type BrandStats struct {
	BrandID         uuid.UUID
	BrandName       string
	AveragePosition *float64
	CitationRate    *float64
	AverageRating   *float64
}

// Export is a full data dump, optionally restricted to one brand's records.
type Export struct {
	Brands    []Brand    `json:"brands"`
	Rankings  []Ranking  `json:"rankings"`
	Citations []Citation `json:"citations"`
	Reviews   []Review   `json:"reviews"`
}
