package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"brandwatch/internal/models"
)

// brandColumns is the standard column list for brand queries.
const brandColumns = `id, name, category, website, created_at, updated_at`

func scanBrand(row pgx.Row) (*models.Brand, error) {
	var b models.Brand
	err := row.Scan(&b.ID, &b.Name, &b.Category, &b.Website, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBrandNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBrands(rows pgx.Rows) ([]models.Brand, error) {
	defer rows.Close()

	brands := []models.Brand{}
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.Website, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// CreateBrand inserts a brand and fills in its generated fields.
func (d *DB) CreateBrand(ctx context.Context, brand *models.Brand) error {
	if brand.Category == "" {
		brand.Category = models.CategoryOther
	}

	query := `
		INSERT INTO brands (name, category, website)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query, brand.Name, brand.Category, brand.Website).
		Scan(&brand.ID, &brand.CreatedAt, &brand.UpdatedAt)
}

// GetBrandByID retrieves a brand by ID.
func (d *DB) GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1`
	return scanBrand(d.Pool.QueryRow(ctx, query, id))
}

// ListBrands returns brands newest first.
func (d *DB) ListBrands(ctx context.Context, page Page) ([]models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands ORDER BY created_at DESC` + page.clause()
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanBrands(rows)
}

// CountBrands returns the number of tracked brands.
func (d *DB) CountBrands(ctx context.Context) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM brands`).Scan(&count)
	return count, err
}

// UpdateBrand saves name, category and website and refreshes updated_at.
func (d *DB) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	query := `
		UPDATE brands
		SET name = $2, category = $3, website = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query, brand.ID, brand.Name, brand.Category, brand.Website).
		Scan(&brand.CreatedAt, &brand.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrBrandNotFound
	}
	return err
}

// DeleteBrand removes a brand and, by cascade, all of its records.
func (d *DB) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBrandNotFound
	}
	return nil
}
