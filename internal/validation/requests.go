package validation

import (
	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"brandwatch/internal/models"
)

// BrandInput is the body of a brand create or full update.
type BrandInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Website  string `json:"website"`
}

func (b BrandInput) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Name, v.Required, v.Length(1, 200)),
		v.Field(&b.Category, oneOf(models.Categories)),
		v.Field(&b.Website, v.Length(0, 500), webURL),
	)
}

// Apply copies the input onto brand, defaulting the category.
func (b BrandInput) Apply(brand *models.Brand) {
	brand.Name = b.Name
	brand.Category = b.Category
	if brand.Category == "" {
		brand.Category = models.CategoryOther
	}
	brand.Website = b.Website
}

// BrandPatch is the body of a partial brand update.
type BrandPatch struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Website  *string `json:"website"`
}

func (b BrandPatch) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Name, v.NilOrNotEmpty, v.Length(1, 200)),
		v.Field(&b.Category, v.NilOrNotEmpty, oneOf(models.Categories)),
		v.Field(&b.Website, v.Length(0, 500), webURL),
	)
}

// Apply copies the set fields onto brand.
func (b BrandPatch) Apply(brand *models.Brand) {
	if b.Name != nil {
		brand.Name = *b.Name
	}
	if b.Category != nil {
		brand.Category = *b.Category
	}
	if b.Website != nil {
		brand.Website = *b.Website
	}
}

// RankingInput is the body of a ranking create or update.
type RankingInput struct {
	BrandID   string `json:"brand"`
	Keyword   string `json:"keyword"`
	Position  int    `json:"position"`
	SearchURL string `json:"search_url"`
	Date      string `json:"date"`
}

func (r RankingInput) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.BrandID, v.Required, is.UUID),
		v.Field(&r.Keyword, v.Required, v.Length(1, 300)),
		v.Field(&r.Position, v.Required, v.Min(1), v.Max(models.NotFoundPosition)),
		v.Field(&r.SearchURL, v.Length(0, 1000), webURL),
		v.Field(&r.Date, date),
	)
}

// Ranking converts a validated input into a record.
func (r RankingInput) Ranking() *models.Ranking {
	return &models.Ranking{
		BrandID:   uuid.MustParse(r.BrandID),
		Keyword:   r.Keyword,
		Position:  r.Position,
		SearchURL: r.SearchURL,
		Date:      dateOrToday(r.Date),
	}
}

// CitationInput is the body of a citation create or update.
type CitationInput struct {
	BrandID   string `json:"brand"`
	AIModel   string `json:"ai_model"`
	Query     string `json:"query"`
	Mentioned bool   `json:"mentioned"`
	Context   string `json:"citation_context"`
	Status    string `json:"status"`
	Date      string `json:"date"`
}

func (c CitationInput) Validate() error {
	return v.ValidateStruct(&c,
		v.Field(&c.BrandID, v.Required, is.UUID),
		v.Field(&c.AIModel, v.Required, oneOf(models.AIModels)),
		v.Field(&c.Query, v.Required),
		v.Field(&c.Status, oneOf([]string{models.CitationChecked, models.CitationPending})),
		v.Field(&c.Date, date),
	)
}

// Citation converts a validated input into a record.
func (c CitationInput) Citation() *models.Citation {
	status := c.Status
	if status == "" {
		status = models.CitationChecked
	}
	return &models.Citation{
		BrandID:   uuid.MustParse(c.BrandID),
		AIModel:   c.AIModel,
		Query:     c.Query,
		Mentioned: c.Mentioned,
		Context:   c.Context,
		Status:    status,
		Date:      dateOrToday(c.Date),
	}
}

// ReviewInput is the body of a review create or update. Ratings outside
// 0-5 are clamped rather than rejected.
type ReviewInput struct {
	BrandID     string  `json:"brand"`
	Platform    string  `json:"platform"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Date        string  `json:"date"`
}

func (r ReviewInput) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.BrandID, v.Required, is.UUID),
		v.Field(&r.Platform, v.Required, oneOf(models.Platforms)),
		v.Field(&r.ReviewCount, v.Min(0)),
		v.Field(&r.Date, date),
	)
}

// Review converts a validated input into a record.
func (r ReviewInput) Review() *models.Review {
	return &models.Review{
		BrandID:     uuid.MustParse(r.BrandID),
		Platform:    r.Platform,
		Rating:      models.ClampRating(r.Rating),
		ReviewCount: r.ReviewCount,
		Date:        dateOrToday(r.Date),
	}
}

// SearchRequest asks for one brand's position for a keyword.
type SearchRequest struct {
	BrandID string `json:"brand_id"`
	Keyword string `json:"keyword"`
}

func (s SearchRequest) Validate() error {
	return v.ValidateStruct(&s,
		v.Field(&s.BrandID, v.Required, is.UUID),
		v.Field(&s.Keyword, v.Required, v.Length(1, 300)),
	)
}

// BulkQuery is one entry of a bulk search. Entries are validated one by
// one with Search so a bad entry only fails itself.
type BulkQuery struct {
	BrandID string `json:"brand_id"`
	Keyword string `json:"keyword"`
}

// Search converts the entry into a single search request.
func (q BulkQuery) Search() SearchRequest {
	return SearchRequest(q)
}

// BulkSearchRequest batches search requests.
type BulkSearchRequest struct {
	Queries []BulkQuery `json:"queries"`
}

func (b BulkSearchRequest) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Queries, v.Required.Error("queries array is required")),
	)
}

// CitationCheckRequest asks the AI model about a brand without storing the result.
type CitationCheckRequest struct {
	BrandID string `json:"brand_id"`
	Query   string `json:"query"`
}

func (c CitationCheckRequest) Validate() error {
	return v.ValidateStruct(&c,
		v.Field(&c.BrandID, v.Required, is.UUID),
		v.Field(&c.Query, v.Length(0, 1000)),
	)
}

func dateOrToday(d string) string {
	if d == "" {
		return models.Today()
	}
	return d
}
