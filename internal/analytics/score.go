// Package analytics computes the dashboard's derived figures.
package analytics

import (
	"cmp"
	"math"
	"slices"

	"brandwatch/internal/models"
)

// Weights of the visibility score components.
const (
	positionWeight = 0.4
	citationWeight = 0.4
	ratingWeight   = 4.0
)

// VisibilityScore combines an average search position (1-100, lower is
// better), a citation rate (0-100) and an average rating (0-5). Brands
// without data pass 100, 0 and 0.
func VisibilityScore(avgPosition, citationRate, avgRating float64) float64 {
	positionScore := math.Max(0, 100-avgPosition)
	return positionScore*positionWeight + citationRate*citationWeight + avgRating*ratingWeight
}

// Compare scores every brand and sorts them by visibility, highest first.
func Compare(stats []models.BrandStats) []models.BrandComparison {
	out := make([]models.BrandComparison, 0, len(stats))
	for _, s := range stats {
		position := valueOr(s.AveragePosition, models.NotFoundPosition)
		rate := valueOr(s.CitationRate, 0)
		rating := valueOr(s.AverageRating, 0)

		out = append(out, models.BrandComparison{
			BrandID:         s.BrandID,
			BrandName:       s.BrandName,
			VisibilityScore: Round1(VisibilityScore(position, rate, rating)),
			SearchScore:     Round1(math.Max(0, 100-position)),
			AIScore:         Round1(rate),
			ReviewScore:     Round1(rating * 20),
		})
	}

	slices.SortStableFunc(out, func(a, b models.BrandComparison) int {
		return cmp.Compare(b.VisibilityScore, a.VisibilityScore)
	})
	return out
}

// CitationRate is the mentioned share of total as a percentage, 0 when total is 0.
func CitationRate(mentioned, total int) float64 {
	if total == 0 {
		return 0
	}
	return Round1(float64(mentioned) / float64(total) * 100)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
