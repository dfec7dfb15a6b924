package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"brandwatch/internal/models"
)

const citationColumns = `c.id, c.brand_id, b.name, c.ai_model, c.query, c.mentioned,
	c.citation_context, c.status, to_char(c.date, 'YYYY-MM-DD'), c.created_at`

// citationSelect joins brands so rows carry the brand name.
const citationSelect = `SELECT ` + citationColumns + `
	FROM ai_citations c
	JOIN brands b ON b.id = c.brand_id`

func scanCitationRow(row pgx.Row, c *models.Citation) error {
	err := row.Scan(&c.ID, &c.BrandID, &c.BrandName, &c.AIModel, &c.Query, &c.Mentioned,
		&c.Context, &c.Status, &c.Date, &c.CreatedAt)
	if err != nil {
		return err
	}
	c.AIModelDisplay = models.AIModelDisplayName(c.AIModel)
	return nil
}

func scanCitation(row pgx.Row) (*models.Citation, error) {
	var c models.Citation
	err := scanCitationRow(row, &c)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCitationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCitations(rows pgx.Rows) ([]models.Citation, error) {
	defer rows.Close()

	citations := []models.Citation{}
	for rows.Next() {
		var c models.Citation
		if err := scanCitationRow(rows, &c); err != nil {
			return nil, err
		}
		citations = append(citations, c)
	}
	return citations, rows.Err()
}

// UpsertCitation stores a checked citation result, overwriting any row for
// the same brand, model, query and date (including a pending placeholder).
func (d *DB) UpsertCitation(ctx context.Context, citation *models.Citation) error {
	if citation.Date == "" {
		citation.Date = models.Today()
	}
	if citation.Status == "" {
		citation.Status = models.CitationChecked
	}

	query := `
		INSERT INTO ai_citations (brand_id, ai_model, query, mentioned, citation_context, status, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (brand_id, ai_model, query, date) DO UPDATE SET
			mentioned = EXCLUDED.mentioned,
			citation_context = EXCLUDED.citation_context,
			status = EXCLUDED.status
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		citation.BrandID,
		citation.AIModel,
		citation.Query,
		citation.Mentioned,
		citation.Context,
		citation.Status,
		citation.Date,
	).Scan(&citation.ID, &citation.CreatedAt)
	return translateWriteError(err)
}

// InsertPendingCitation stores a placeholder citation unless a row already
// exists for the key. Reports whether a row was created.
func (d *DB) InsertPendingCitation(ctx context.Context, brandID uuid.UUID, aiModel, query, date string) (bool, error) {
	if date == "" {
		date = models.Today()
	}

	stmt := `
		INSERT INTO ai_citations (brand_id, ai_model, query, mentioned, citation_context, status, date)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6)
		ON CONFLICT (brand_id, ai_model, query, date) DO NOTHING
	`
	tag, err := d.Pool.Exec(ctx, stmt, brandID, aiModel, query, models.PendingContext, models.CitationPending, date)
	if err != nil {
		return false, translateWriteError(err)
	}
	return tag.RowsAffected() == 1, nil
}

// CreateCitation inserts a citation, failing with ErrDuplicateRecord if the key exists.
func (d *DB) CreateCitation(ctx context.Context, citation *models.Citation) (*models.Citation, error) {
	if citation.Date == "" {
		citation.Date = models.Today()
	}
	if citation.Status == "" {
		citation.Status = models.CitationChecked
	}

	query := `
		WITH c AS (
			INSERT INTO ai_citations (brand_id, ai_model, query, mentioned, citation_context, status, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + citationColumns + ` FROM c JOIN brands b ON b.id = c.brand_id
	`
	created, err := scanCitation(d.Pool.QueryRow(ctx, query,
		citation.BrandID, citation.AIModel, citation.Query, citation.Mentioned,
		citation.Context, citation.Status, citation.Date))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return created, nil
}

// GetCitationByID retrieves a citation by ID.
func (d *DB) GetCitationByID(ctx context.Context, id uuid.UUID) (*models.Citation, error) {
	return scanCitation(d.Pool.QueryRow(ctx, citationSelect+` WHERE c.id = $1`, id))
}

// UpdateCitation overwrites a citation's editable fields.
func (d *DB) UpdateCitation(ctx context.Context, citation *models.Citation) (*models.Citation, error) {
	query := `
		WITH c AS (
			UPDATE ai_citations
			SET brand_id = $2, ai_model = $3, query = $4, mentioned = $5,
				citation_context = $6, status = $7, date = $8
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + citationColumns + ` FROM c JOIN brands b ON b.id = c.brand_id
	`
	updated, err := scanCitation(d.Pool.QueryRow(ctx, query,
		citation.ID, citation.BrandID, citation.AIModel, citation.Query, citation.Mentioned,
		citation.Context, citation.Status, citation.Date))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return updated, nil
}

// DeleteCitation removes a citation by ID.
func (d *DB) DeleteCitation(ctx context.Context, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM ai_citations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCitationNotFound
	}
	return nil
}

// ListCitations returns citations matching the filter, newest first.
func (d *DB) ListCitations(ctx context.Context, filter CitationFilter, page Page) ([]models.Citation, error) {
	clause, args := filter.Where()
	query := citationSelect + clause + ` ORDER BY c.date DESC, c.created_at DESC` + page.clause()

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanCitations(rows)
}

// CountCitations counts citations matching the filter.
func (d *DB) CountCitations(ctx context.Context, filter CitationFilter) (int, error) {
	clause, args := filter.Where()
	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM ai_citations c`+clause, args...).Scan(&count)
	return count, err
}

// CountMentions returns the total and mentioned citation counts for the filter.
// Pending placeholders are included in both numbers' population.
func (d *DB) CountMentions(ctx context.Context, filter CitationFilter) (total, mentioned int, err error) {
	clause, args := filter.Where()
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE c.mentioned) FROM ai_citations c` + clause
	err = d.Pool.QueryRow(ctx, query, args...).Scan(&total, &mentioned)
	return total, mentioned, err
}

// CitationCounts is the per-model total and mentioned count.
type CitationCounts struct {
	AIModel   string
	Total     int
	Mentioned int
}

// CountMentionsByModel groups citation counts by AI model, largest total first.
func (d *DB) CountMentionsByModel(ctx context.Context, filter CitationFilter) ([]CitationCounts, error) {
	clause, args := filter.Where()
	query := `
		SELECT c.ai_model, COUNT(*), COUNT(*) FILTER (WHERE c.mentioned)
		FROM ai_citations c` + clause + `
		GROUP BY c.ai_model
		ORDER BY COUNT(*) DESC, c.ai_model`

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []CitationCounts{}
	for rows.Next() {
		var cc CitationCounts
		if err := rows.Scan(&cc.AIModel, &cc.Total, &cc.Mentioned); err != nil {
			return nil, err
		}
		counts = append(counts, cc)
	}
	return counts, rows.Err()
}
