package db

import (
	"context"

	"brandwatch/internal/models"
)

// OverviewStats are the raw headline aggregates for a date range.
type OverviewStats struct {
	TotalBrands        int
	AveragePosition    float64
	TotalCitations     int
	MentionedCitations int
	AverageRating      float64
	TotalReviews       int
}

// GetOverviewStats computes the headline aggregates. The brand count is
// unfiltered; every other figure is limited to the date range.
func (d *DB) GetOverviewStats(ctx context.Context, dates models.DateRange) (*OverviewStats, error) {
	var s OverviewStats

	total, err := d.CountBrands(ctx)
	if err != nil {
		return nil, err
	}
	s.TotalBrands = total

	rankings, err := d.SummarizeRankings(ctx, RankingFilter{Dates: dates})
	if err != nil {
		return nil, err
	}
	s.AveragePosition = rankings.AveragePosition

	s.TotalCitations, s.MentionedCitations, err = d.CountMentions(ctx, CitationFilter{Dates: dates})
	if err != nil {
		return nil, err
	}

	clause, args := ReviewFilter{Dates: dates}.Where()
	query := `SELECT COALESCE(AVG(v.rating), 0)::float8, COALESCE(SUM(v.review_count), 0) FROM reviews v` + clause
	if err := d.Pool.QueryRow(ctx, query, args...).Scan(&s.AverageRating, &s.TotalReviews); err != nil {
		return nil, err
	}

	return &s, nil
}

// RankingSeries returns the newest brandLimit brands, each with up to
// pointLimit of its rankings in date order.
func (d *DB) RankingSeries(ctx context.Context, brandLimit, pointLimit int) ([]models.RankingSeries, error) {
	query := `
		SELECT b.id, b.name, to_char(r.date, 'YYYY-MM-DD'), r.position
		FROM (
			SELECT id, name, created_at FROM brands ORDER BY created_at DESC LIMIT $1
		) b
		LEFT JOIN LATERAL (
			SELECT date, position FROM search_rankings
			WHERE brand_id = b.id
			ORDER BY date ASC
			LIMIT $2
		) r ON TRUE
		ORDER BY b.created_at DESC, b.id, r.date ASC
	`
	rows, err := d.Pool.Query(ctx, query, brandLimit, pointLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []models.RankingSeries{}
	var lastID string
	for rows.Next() {
		var (
			id       string
			name     string
			date     *string
			position *int
		)
		if err := rows.Scan(&id, &name, &date, &position); err != nil {
			return nil, err
		}
		if id != lastID {
			series = append(series, models.RankingSeries{BrandName: name, Data: []models.RankingPoint{}})
			lastID = id
		}
		if date != nil && position != nil {
			last := &series[len(series)-1]
			last.Data = append(last.Data, models.RankingPoint{Date: *date, Position: *position})
		}
	}
	return series, rows.Err()
}

// MentionsByModel counts mentioned citations per model, largest first.
func (d *DB) MentionsByModel(ctx context.Context) ([]models.ChartSlice, error) {
	query := `
		SELECT ai_model, COUNT(*)
		FROM ai_citations
		WHERE mentioned
		GROUP BY ai_model
		ORDER BY COUNT(*) DESC, ai_model
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slices := []models.ChartSlice{}
	for rows.Next() {
		var model string
		var count int
		if err := rows.Scan(&model, &count); err != nil {
			return nil, err
		}
		slices = append(slices, models.ChartSlice{Name: models.AIModelDisplayName(model), Value: count})
	}
	return slices, rows.Err()
}

// ListBrandStats returns every brand's all-time ranking, citation and review aggregates.
func (d *DB) ListBrandStats(ctx context.Context) ([]models.BrandStats, error) {
	query := `
		SELECT b.id, b.name,
			(SELECT AVG(position)::float8 FROM search_rankings WHERE brand_id = b.id),
			(SELECT CASE WHEN COUNT(*) = 0 THEN NULL
				ELSE (100.0 * COUNT(*) FILTER (WHERE mentioned) / COUNT(*))::float8 END
			 FROM ai_citations WHERE brand_id = b.id),
			(SELECT AVG(rating)::float8 FROM reviews WHERE brand_id = b.id)
		FROM brands b
		ORDER BY b.created_at DESC
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.BrandStats{}
	for rows.Next() {
		var s models.BrandStats
		if err := rows.Scan(&s.BrandID, &s.BrandName, &s.AveragePosition, &s.CitationRate, &s.AverageRating); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
