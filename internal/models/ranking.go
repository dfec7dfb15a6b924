package models

import (
	"time"

	"github.com/google/uuid"
)

// NotFoundPosition is stored when a brand is absent from the checked results.
const NotFoundPosition = 100

// Ranking is a brand's position in search results for one keyword on one date.
type Ranking struct {
	ID        uuid.UUID `json:"id"`
	BrandID   uuid.UUID `json:"brand"`
	BrandName string    `json:"brand_name"`
	Keyword   string    `json:"keyword"`
	Position  int       `json:"position"`
	SearchURL string    `json:"search_url"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// RankingTrend groups a brand's rankings for a single keyword in date order.
type RankingTrend struct {
	Keyword string         `json:"keyword"`
	Data    []RankingPoint `json:"data"`
}

// RankingPoint is one dated position.
type RankingPoint struct {
	Date     string `json:"date"`
	Position int    `json:"position"`
}

// RankingSummary aggregates rankings matching a filter.
type RankingSummary struct {
	TotalRankings   int     `json:"total_rankings"`
	AveragePosition float64 `json:"average_position"`
	UniqueKeywords  int     `json:"unique_keywords"`
}
