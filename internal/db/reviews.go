package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"brandwatch/internal/models"
)

const reviewColumns = `v.id, v.brand_id, b.name, v.platform, v.rating::float8, v.review_count,
	to_char(v.date, 'YYYY-MM-DD'), v.created_at`

// reviewSelect joins brands so rows carry the brand name.
const reviewSelect = `SELECT ` + reviewColumns + `
	FROM reviews v
	JOIN brands b ON b.id = v.brand_id`

func scanReviewRow(row pgx.Row, r *models.Review) error {
	err := row.Scan(&r.ID, &r.BrandID, &r.BrandName, &r.Platform, &r.Rating, &r.ReviewCount, &r.Date, &r.CreatedAt)
	if err != nil {
		return err
	}
	r.PlatformDisplay = models.PlatformDisplayName(r.Platform)
	return nil
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var r models.Review
	err := scanReviewRow(row, &r)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReviews(rows pgx.Rows) ([]models.Review, error) {
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := scanReviewRow(rows, &r); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

// InsertPlaceholderReview stores a zero-rated review unless one already
// exists for the brand, platform and date. Reports whether a row was created.
func (d *DB) InsertPlaceholderReview(ctx context.Context, brandID uuid.UUID, platform, date string) (bool, error) {
	if date == "" {
		date = models.Today()
	}

	stmt := `
		INSERT INTO reviews (brand_id, platform, rating, review_count, date)
		VALUES ($1, $2, 0, 0, $3)
		ON CONFLICT (brand_id, platform, date) DO NOTHING
	`
	tag, err := d.Pool.Exec(ctx, stmt, brandID, platform, date)
	if err != nil {
		return false, translateWriteError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// CreateReview inserts a review with its rating clamped to [0, 5].
func (d *DB) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.Date == "" {
		review.Date = models.Today()
	}

	query := `
		WITH v AS (
			INSERT INTO reviews (brand_id, platform, rating, review_count, date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT ` + reviewColumns + ` FROM v JOIN brands b ON b.id = v.brand_id
	`
	created, err := scanReview(d.Pool.QueryRow(ctx, query,
		review.BrandID, review.Platform, models.ClampRating(review.Rating), max(review.ReviewCount, 0), review.Date))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return created, nil
}

// GetReviewByID retrieves a review by ID.
func (d *DB) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return scanReview(d.Pool.QueryRow(ctx, reviewSelect+` WHERE v.id = $1`, id))
}

// UpdateReview overwrites a review's editable fields, clamping the rating.
func (d *DB) UpdateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	query := `
		WITH v AS (
			UPDATE reviews
			SET brand_id = $2, platform = $3, rating = $4, review_count = $5, date = $6
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + reviewColumns + ` FROM v JOIN brands b ON b.id = v.brand_id
	`
	updated, err := scanReview(d.Pool.QueryRow(ctx, query,
		review.ID, review.BrandID, review.Platform, models.ClampRating(review.Rating), max(review.ReviewCount, 0), review.Date))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return updated, nil
}

// DeleteReview removes a review by ID.
func (d *DB) DeleteReview(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

// ListReviews returns reviews matching the filter, newest first.
func (d *DB) ListReviews(ctx context.Context, filter ReviewFilter, page Page) ([]models.Review, error) {
	clause, args := filter.Where()
	query := reviewSelect + clause + ` ORDER BY v.date DESC, v.created_at DESC` + page.clause()

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanReviews(rows)
}

// CountReviews counts reviews matching the filter.
func (d *DB) CountReviews(ctx context.Context, filter ReviewFilter) (int, error) {
	clause, args := filter.Where()
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews v`+clause, args...).Scan(&count)
	return count, err
}

// SummarizeReviews returns the unrounded average rating, the summed review
// count and a per-platform breakdown for the filter.
func (d *DB) SummarizeReviews(ctx context.Context, filter ReviewFilter) (*models.ReviewSummary, error) {
	clause, args := filter.Where()

	var s models.ReviewSummary
	totals := `SELECT COALESCE(AVG(v.rating), 0)::float8, COALESCE(SUM(v.review_count), 0) FROM reviews v` + clause
	if err := d.Pool.QueryRow(ctx, totals, args...).Scan(&s.AverageRating, &s.TotalReviews); err != nil {
		return nil, err
	}

	byPlatform := `
		SELECT v.platform, COALESCE(AVG(v.rating), 0)::float8, COALESCE(SUM(v.review_count), 0)
		FROM reviews v` + clause + `
		GROUP BY v.platform
		ORDER BY v.platform`
	rows, err := d.Pool.Query(ctx, byPlatform, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.ByPlatform = []models.PlatformReviewSummary{}
	for rows.Next() {
		var p models.PlatformReviewSummary
		if err := rows.Scan(&p.Platform, &p.AvgRating, &p.TotalReviews); err != nil {
			return nil, err
		}
		p.PlatformDisplay = models.PlatformDisplayName(p.Platform)
		s.ByPlatform = append(s.ByPlatform, p)
	}
	return &s, rows.Err()
}
