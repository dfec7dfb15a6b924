package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"brandwatch/internal/models"
)

// rankingSelect joins brands so rows carry the brand name.
const rankingSelect = `
	SELECT r.id, r.brand_id, b.name, r.keyword, r.position, r.search_url,
		to_char(r.date, 'YYYY-MM-DD'), r.created_at
	FROM search_rankings r
	JOIN brands b ON b.id = r.brand_id`

func scanRanking(row pgx.Row) (*models.Ranking, error) {
	var r models.Ranking
	err := row.Scan(&r.ID, &r.BrandID, &r.BrandName, &r.Keyword, &r.Position, &r.SearchURL, &r.Date, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRankingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRankings(rows pgx.Rows) ([]models.Ranking, error) {
	defer rows.Close()

	rankings := []models.Ranking{}
	for rows.Next() {
		var r models.Ranking
		if err := rows.Scan(&r.ID, &r.BrandID, &r.BrandName, &r.Keyword, &r.Position, &r.SearchURL, &r.Date, &r.CreatedAt); err != nil {
			return nil, err
		}
		rankings = append(rankings, r)
	}
	return rankings, rows.Err()
}

// UpsertRanking records a position, overwriting any ranking already stored
// for the same brand, keyword and date.
func (d *DB) UpsertRanking(ctx context.Context, ranking *models.Ranking) error {
	if ranking.Date == "" {
		ranking.Date = models.Today()
	}

	query := `
		INSERT INTO search_rankings (brand_id, keyword, position, search_url, date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (brand_id, keyword, date) DO UPDATE SET
			position = EXCLUDED.position,
			search_url = EXCLUDED.search_url
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		ranking.BrandID,
		ranking.Keyword,
		ranking.Position,
		ranking.SearchURL,
		ranking.Date,
	).Scan(&ranking.ID, &ranking.CreatedAt)
	return translateWriteError(err)
}

// CreateRanking inserts a ranking, failing with ErrDuplicateRecord if one
// already exists for the brand, keyword and date.
func (d *DB) CreateRanking(ctx context.Context, ranking *models.Ranking) (*models.Ranking, error) {
	if ranking.Date == "" {
		ranking.Date = models.Today()
	}

	query := `
		WITH r AS (
			INSERT INTO search_rankings (brand_id, keyword, position, search_url, date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT r.id, r.brand_id, b.name, r.keyword, r.position, r.search_url,
			to_char(r.date, 'YYYY-MM-DD'), r.created_at
		FROM r JOIN brands b ON b.id = r.brand_id
	`
	created, err := scanRanking(d.Pool.QueryRow(ctx, query,
		ranking.BrandID, ranking.Keyword, ranking.Position, ranking.SearchURL, ranking.Date))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return created, nil
}

// GetRankingByID retrieves a ranking by ID.
func (d *DB) GetRankingByID(ctx context.Context, id uuid.UUID) (*models.Ranking, error) {
	return scanRanking(d.Pool.QueryRow(ctx, rankingSelect+` WHERE r.id = $1`, id))
}

// UpdateRanking overwrites a ranking's editable fields.
func (d *DB) UpdateRanking(ctx context.Context, ranking *models.Ranking) (*models.Ranking, error) {
	query := `
		WITH r AS (
			UPDATE search_rankings
			SET brand_id = $2, keyword = $3, position = $4, search_url = $5, date = $6
			WHERE id = $1
			RETURNING *
		)
		SELECT r.id, r.brand_id, b.name, r.keyword, r.position, r.search_url,
			to_char(r.date, 'YYYY-MM-DD'), r.created_at
		FROM r JOIN brands b ON b.id = r.brand_id
	`
	updated, err := scanRanking(d.Pool.QueryRow(ctx, query,
		ranking.ID, ranking.BrandID, ranking.Keyword, ranking.Position, ranking.SearchURL, ranking.Date))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return updated, nil
}

// DeleteRanking removes a ranking by ID.
func (d *DB) DeleteRanking(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM search_rankings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRankingNotFound
	}
	return nil
}

// ListRankings returns rankings matching the filter, newest first and best position first within a day.
func (d *DB) ListRankings(ctx context.Context, filter RankingFilter, page Page) ([]models.Ranking, error) {
	clause, args := filter.Where()
	query := rankingSelect + clause + ` ORDER BY r.date DESC, r.position ASC` + page.clause()

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanRankings(rows)
}

// CountRankings counts rankings matching the filter.
func (d *DB) CountRankings(ctx context.Context, filter RankingFilter) (int, error) {
	clause, args := filter.Where()
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM search_rankings r`+clause, args...).Scan(&count)
	return count, err
}

// SummarizeRankings aggregates rankings matching the filter. The average
// is left unrounded.
func (d *DB) SummarizeRankings(ctx context.Context, filter RankingFilter) (*models.RankingSummary, error) {
	clause, args := filter.Where()
	query := `
		SELECT COUNT(*), COALESCE(AVG(r.position), 0)::float8, COUNT(DISTINCT r.keyword)
		FROM search_rankings r` + clause

	var s models.RankingSummary
	if err := d.Pool.QueryRow(ctx, query, args...).Scan(&s.TotalRankings, &s.AveragePosition, &s.UniqueKeywords); err != nil {
		return nil, err
	}
	return &s, nil
}

// RankingTrends groups a brand's rankings by keyword, each series in date order.
func (d *DB) RankingTrends(ctx context.Context, brandID uuid.UUID) ([]models.RankingTrend, error) {
	query := `
		SELECT keyword, to_char(date, 'YYYY-MM-DD'), position
		FROM search_rankings
		WHERE brand_id = $1
		ORDER BY keyword, date ASC
	`
	rows, err := d.Pool.Query(ctx, query, brandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trends := []models.RankingTrend{}
	for rows.Next() {
		var keyword string
		var point models.RankingPoint
		if err := rows.Scan(&keyword, &point.Date, &point.Position); err != nil {
			return nil, err
		}
		if n := len(trends); n == 0 || trends[n-1].Keyword != keyword {
			trends = append(trends, models.RankingTrend{Keyword: keyword})
		}
		last := &trends[len(trends)-1]
		last.Data = append(last.Data, point)
	}
	return trends, rows.Err()
}
