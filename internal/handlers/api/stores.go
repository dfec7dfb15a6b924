package api

import (
	"context"

	"github.com/google/uuid"

	"brandwatch/internal/db"
	"brandwatch/internal/jobs"
	"brandwatch/internal/models"
	"brandwatch/internal/tracking"
)

// BrandStore is the brand persistence the handlers need.
type BrandStore interface {
	CreateBrand(ctx context.Context, brand *models.Brand) error
	GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
	ListBrands(ctx context.Context, page db.Page) ([]models.Brand, error)
	CountBrands(ctx context.Context) (int, error)
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}

// RankingStore is the ranking persistence the handlers need.
type RankingStore interface {
	CreateRanking(ctx context.Context, ranking *models.Ranking) (*models.Ranking, error)
	UpsertRanking(ctx context.Context, ranking *models.Ranking) error
	GetRankingByID(ctx context.Context, id uuid.UUID) (*models.Ranking, error)
	UpdateRanking(ctx context.Context, ranking *models.Ranking) (*models.Ranking, error)
	DeleteRanking(ctx context.Context, id uuid.UUID) error
	ListRankings(ctx context.Context, filter db.RankingFilter, page db.Page) ([]models.Ranking, error)
	CountRankings(ctx context.Context, filter db.RankingFilter) (int, error)
	SummarizeRankings(ctx context.Context, filter db.RankingFilter) (*models.RankingSummary, error)
	RankingTrends(ctx context.Context, brandID uuid.UUID) ([]models.RankingTrend, error)
}

// CitationStore is the citation persistence the handlers need.
type CitationStore interface {
	CreateCitation(ctx context.Context, citation *models.Citation) (*models.Citation, error)
	GetCitationByID(ctx context.Context, id uuid.UUID) (*models.Citation, error)
	UpdateCitation(ctx context.Context, citation *models.Citation) (*models.Citation, error)
	DeleteCitation(ctx context.Context, id uuid.UUID) error
	ListCitations(ctx context.Context, filter db.CitationFilter, page db.Page) ([]models.Citation, error)
	CountCitations(ctx context.Context, filter db.CitationFilter) (int, error)
	CountMentions(ctx context.Context, filter db.CitationFilter) (total, mentioned int, err error)
	CountMentionsByModel(ctx context.Context, filter db.CitationFilter) ([]db.CitationCounts, error)
}

// ReviewStore is the review persistence the handlers need.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ListReviews(ctx context.Context, filter db.ReviewFilter, page db.Page) ([]models.Review, error)
	CountReviews(ctx context.Context, filter db.ReviewFilter) (int, error)
	SummarizeReviews(ctx context.Context, filter db.ReviewFilter) (*models.ReviewSummary, error)
}

// Invalidator drops derived data after a write.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Submitter queues background work.
type Submitter interface {
	Submit(job jobs.Job) *jobs.Handle
}

// BrandFetcher gathers a brand's external data.
type BrandFetcher interface {
	FetchAll(ctx context.Context, brand *models.Brand) *tracking.Summary
}
