package models

import (
	"time"

	"github.com/google/uuid"
)

// Review platforms.
const (
	PlatformGoogle     = "google"
	PlatformYelp       = "yelp"
	PlatformTrustpilot = "trustpilot"
	PlatformG2         = "g2"
	PlatformCapterra   = "capterra"
	PlatformGlassdoor  = "glassdoor"
)

// Platforms lists every accepted review platform in display order.
var Platforms = []string{
	PlatformGoogle,
	PlatformYelp,
	PlatformTrustpilot,
	PlatformG2,
	PlatformCapterra,
	PlatformGlassdoor,
}

var platformDisplayNames = map[string]string{
	PlatformGoogle:     "Google Reviews",
	PlatformYelp:       "Yelp",
	PlatformTrustpilot: "Trustpilot",
	PlatformG2:         "G2",
	PlatformCapterra:   "Capterra",
	PlatformGlassdoor:  "Glassdoor",
}

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Review is a brand's aggregate rating on one platform on one date.
type Review struct {
	ID              uuid.UUID `json:"id"`
	BrandID         uuid.UUID `json:"brand"`
	BrandName       string    `json:"brand_name"`
	Platform        string    `json:"platform"`
	PlatformDisplay string    `json:"platform_display"`
	Rating          float64   `json:"rating"`
	ReviewCount     int       `json:"review_count"`
	Date            string    `json:"date"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlatformReviewSummary is the per-platform slice of review totals.
type PlatformReviewSummary struct {
	Platform        string  `json:"platform"`
	PlatformDisplay string  `json:"platform_display"`
	AvgRating       float64 `json:"avg_rating"`
	TotalReviews    int     `json:"total_reviews"`
}

// ReviewSummary aggregates reviews matching a filter.
type ReviewSummary struct {
	AverageRating float64                 `json:"average_rating"`
	TotalReviews  int                     `json:"total_reviews"`
	ByPlatform    []PlatformReviewSummary `json:"by_platform"`
}

// IsValidPlatform reports whether platform is one of Platforms.
func IsValidPlatform(platform string) bool {
	_, ok := platformDisplayNames[platform]
	return ok
}

// PlatformDisplayName returns the human label for a platform, or the raw value if unknown.
func PlatformDisplayName(platform string) string {
	if name, ok := platformDisplayNames[platform]; ok {
		return name
	}
	return platform
}

// ClampRating limits a rating to [MinRating, MaxRating].
func ClampRating(rating float64) float64 {
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}
