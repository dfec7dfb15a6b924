package analytics

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"brandwatch/internal/cache"
	"brandwatch/internal/db"
	"brandwatch/internal/metrics"
	"brandwatch/internal/models"
)

const (
	seriesBrands = 5
	seriesPoints = 30
)

// Store is the read side the dashboard is built from.
type Store interface {
	GetOverviewStats(ctx context.Context, dates models.DateRange) (*db.OverviewStats, error)
	RankingSeries(ctx context.Context, brandLimit, pointLimit int) ([]models.RankingSeries, error)
	MentionsByModel(ctx context.Context) ([]models.ChartSlice, error)
	ListBrandStats(ctx context.Context) ([]models.BrandStats, error)
	ListBrands(ctx context.Context, page db.Page) ([]models.Brand, error)
	ListRankings(ctx context.Context, filter db.RankingFilter, page db.Page) ([]models.Ranking, error)
	ListCitations(ctx context.Context, filter db.CitationFilter, page db.Page) ([]models.Citation, error)
	ListReviews(ctx context.Context, filter db.ReviewFilter, page db.Page) ([]models.Review, error)
	GetBrandByID(ctx context.Context, id uuid.UUID) (*models.Brand, error)
}

// Service builds dashboard payloads with a read-through cache.
type Service struct {
	store Store
	cache cache.Cache
}

// NewService creates a dashboard service.
func NewService(store Store, c cache.Cache) *Service {
	return &Service{store: store, cache: c}
}

// Overview returns headline numbers for dates and the three charts.
// Only the headline numbers honour the date range.
func (s *Service) Overview(ctx context.Context, dates models.DateRange) (*models.Dashboard, error) {
	key := "overview:" + dates.Key()
	gen := s.cache.Generation(ctx)

	if raw, ok := s.cache.Get(ctx, gen, key); ok {
		var d models.Dashboard
		if err := json.Unmarshal(raw, &d); err == nil {
			metrics.RecordCacheLookup(true)
			return &d, nil
		}
		slog.Warn("discarding unreadable dashboard cache entry", "key", key)
	}
	metrics.RecordCacheLookup(false)

	d, err := s.build(ctx, dates)
	if err != nil {
		return nil, err
	}

	// A write during build bumps the generation and this Set is dropped.
	if raw, err := json.Marshal(d); err == nil {
		s.cache.Set(ctx, gen, key, raw)
	}
	return d, nil
}

func (s *Service) build(ctx context.Context, dates models.DateRange) (*models.Dashboard, error) {
	stats, err := s.store.GetOverviewStats(ctx, dates)
	if err != nil {
		return nil, err
	}

	series, err := s.store.RankingSeries(ctx, seriesBrands, seriesPoints)
	if err != nil {
		return nil, err
	}

	mentions, err := s.store.MentionsByModel(ctx)
	if err != nil {
		return nil, err
	}

	comparison, err := s.BrandComparison(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		Overview: models.Overview{
			TotalBrands:           stats.TotalBrands,
			AverageSearchPosition: Round1(stats.AveragePosition),
			AICitationRate:        CitationRate(stats.MentionedCitations, stats.TotalCitations),
			AverageRating:         Round1(stats.AverageRating),
			TotalReviews:          stats.TotalReviews,
		},
		Charts: models.Charts{
			RankingSummary:    series,
			CitationBreakdown: mentions,
			BrandComparison:   comparison,
		},
	}, nil
}

// BrandComparison scores every brand over all of its data.
func (s *Service) BrandComparison(ctx context.Context) ([]models.BrandComparison, error) {
	stats, err := s.store.ListBrandStats(ctx)
	if err != nil {
		return nil, err
	}
	return Compare(stats), nil
}

// Export returns every brand together with its records. When brandID is
// set the records are limited to that brand.
func (s *Service) Export(ctx context.Context, brandID *uuid.UUID) (*models.Export, error) {
	var out models.Export
	all := db.Page{}

	if brandID != nil {
		if _, err := s.store.GetBrandByID(ctx, *brandID); err != nil {
			return nil, err
		}
	}

	// The brand list is always complete; only records follow the filter.
	brands, err := s.store.ListBrands(ctx, all)
	if err != nil {
		return nil, err
	}
	out.Brands = brands

	if out.Rankings, err = s.store.ListRankings(ctx, db.RankingFilter{BrandID: brandID}, all); err != nil {
		return nil, err
	}
	if out.Citations, err = s.store.ListCitations(ctx, db.CitationFilter{BrandID: brandID}, all); err != nil {
		return nil, err
	}
	if out.Reviews, err = s.store.ListReviews(ctx, db.ReviewFilter{BrandID: brandID}, all); err != nil {
		return nil, err
	}
	return &out, nil
}

// Invalidate drops every cached payload. Call after any write.
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx)
}
