package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"brandwatch/internal/config"
	"brandwatch/internal/integrations"
	"brandwatch/internal/models"
)

const maxStoredContext = 500

// Store persists what the fetcher gathers.
type Store interface {
	UpsertRanking(ctx context.Context, ranking *models.Ranking) error
	UpsertCitation(ctx context.Context, citation *models.Citation) error
	InsertPendingCitation(ctx context.Context, brandID uuid.UUID, aiModel, query, date string) (bool, error)
	InsertPlaceholderReview(ctx context.Context, brandID uuid.UUID, platform, date string) (bool, error)
}

// PositionFinder looks a brand up in search results.
type PositionFinder interface {
	FindPosition(ctx context.Context, brand, keyword string) (*integrations.Position, error)
}

// CitationChecker asks an AI model about a brand.
type CitationChecker interface {
	Configured() bool
	CheckCitation(ctx context.Context, brand, query string) (*integrations.CitationCheck, error)
	TestConnection(ctx context.Context) error
}

// Fetcher gathers every signal for a brand. It never aborts part-way:
// individual failures are reported in the summary.
type Fetcher struct {
	store    Store
	search   PositionFinder
	ai       CitationChecker
	keywords *KeywordGenerator
	tracking *config.TrackingConfig

	// OnChange runs after a fetch or refresh wrote data.
	OnChange func(ctx context.Context)

	// RefreshDelay separates citation queries during a refresh.
	RefreshDelay time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a fetcher.
func NewFetcher(store Store, search PositionFinder, ai CitationChecker, tracking *config.TrackingConfig) *Fetcher {
	return &Fetcher{
		store:    store,
		search:   search,
		ai:       ai,
		keywords: NewKeywordGenerator(tracking.CategoryTerms),
		tracking: tracking,
		sleep:    sleepContext,
	}
}

// Summary reports everything one FetchAll run did.
type Summary struct {
	BrandID   uuid.UUID        `json:"brand_id"`
	BrandName string           `json:"brand_name"`
	Rankings  RankingsSummary  `json:"rankings"`
	Citations CitationsSummary `json:"citations"`
	Reviews   ReviewsSummary   `json:"reviews"`
}

// RankingsSummary covers the keyword lookups.
type RankingsSummary struct {
	RankingsFetched int             `json:"rankings_fetched"`
	TotalKeywords   int             `json:"total_keywords"`
	Results         []KeywordResult `json:"results"`
}

// KeywordResult is the outcome for one keyword.
type KeywordResult struct {
	Keyword  string `json:"keyword"`
	Position *int   `json:"position"`
	Success  bool   `json:"success"`
	Note     string `json:"note,omitempty"`
	Error    string `json:"error,omitempty"`
}

// CitationsSummary covers live checks and pending placeholders.
type CitationsSummary struct {
	CitationsChecked int              `json:"citations_checked"`
	CitationsCreated int              `json:"citations_created"`
	CitationsFailed  int              `json:"citations_failed"`
	AIModelsChecked  int              `json:"ai_models_checked"`
	Results          []CitationResult `json:"results"`
}

// CitationResult is the outcome for one live query.
type CitationResult struct {
	AIModel       string `json:"ai_model"`
	Query         string `json:"query"`
	Mentioned     bool   `json:"mentioned"`
	SemanticMatch bool   `json:"semantic_match"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// ReviewsSummary covers placeholder reviews.
type ReviewsSummary struct {
	ReviewsCreated int `json:"reviews_created"`
	PlatformsAdded int `json:"platforms_added"`
}

// FetchAll gathers rankings, citations and placeholder reviews for brand.
func (f *Fetcher) FetchAll(ctx context.Context, brand *models.Brand) *Summary {
	today := models.Today()

	s := &Summary{
		BrandID:   brand.ID,
		BrandName: brand.Name,
		Rankings:  f.fetchRankings(ctx, brand, today),
		Citations: f.fetchCitations(ctx, brand, today),
		Reviews:   f.fetchReviews(ctx, brand, today),
	}

	slog.Info("brand fetch finished",
		"brand", brand.Name,
		"rankings", s.Rankings.RankingsFetched,
		"keywords", s.Rankings.TotalKeywords,
		"citations_checked", s.Citations.CitationsChecked,
		"citations_failed", s.Citations.CitationsFailed,
		"reviews_created", s.Reviews.ReviewsCreated,
	)

	f.changed(ctx)
	return s
}

func (f *Fetcher) fetchRankings(ctx context.Context, brand *models.Brand, today string) RankingsSummary {
	keywords := f.keywords.Generate(brand.Name, brand.Category)
	s := RankingsSummary{
		TotalKeywords: len(keywords),
		Results:       make([]KeywordResult, 0, len(keywords)),
	}

	for _, keyword := range keywords {
		result := KeywordResult{Keyword: keyword}

		pos, err := f.search.FindPosition(ctx, brand.Name, keyword)
		if err != nil {
			result.Error = err.Error()
			s.Results = append(s.Results, result)
			continue
		}

		ranking := &models.Ranking{
			BrandID:  brand.ID,
			Keyword:  keyword,
			Position: models.NotFoundPosition,
			Date:     today,
		}
		if pos.Found && pos.Position != nil {
			ranking.Position = *pos.Position
			result.Position = pos.Position
		} else {
			result.Note = fmt.Sprintf("Brand not found in top %d results", integrations.MaxResultsChecked)
		}

		if err := f.store.UpsertRanking(ctx, ranking); err != nil {
			result.Position = nil
			result.Note = ""
			result.Error = err.Error()
			s.Results = append(s.Results, result)
			continue
		}

		result.Success = true
		s.RankingsFetched++
		s.Results = append(s.Results, result)
	}

	return s
}

func (f *Fetcher) fetchCitations(ctx context.Context, brand *models.Brand, today string) CitationsSummary {
	s := CitationsSummary{Results: []CitationResult{}}
	pending := f.tracking.PendingModels

	if f.ai != nil && f.ai.Configured() {
		for _, template := range f.tracking.CitationQueries {
			query := ExpandQuery(template, brand.Name)
			result := f.checkCitation(ctx, brand, query, today)
			if result.Success {
				s.CitationsChecked++
			} else {
				s.CitationsFailed++
			}
			s.Results = append(s.Results, result)
		}
		s.AIModelsChecked = 1
	} else {
		// Without a live integration Gemini gets placeholders like the rest.
		pending = append([]string{models.AIModelGemini}, pending...)
	}

	for _, model := range pending {
		for _, template := range f.tracking.CitationQueries {
			created, err := f.store.InsertPendingCitation(ctx, brand.ID, model, ExpandQuery(template, brand.Name), today)
			if err != nil {
				slog.Warn("failed to add pending citation", "brand", brand.Name, "ai_model", model, "error", err)
				continue
			}
			if created {
				s.CitationsCreated++
			}
		}
	}
	s.AIModelsChecked += len(pending)

	return s
}

func (f *Fetcher) checkCitation(ctx context.Context, brand *models.Brand, query, date string) CitationResult {
	result := CitationResult{AIModel: models.AIModelGemini, Query: query}

	check, err := f.ai.CheckCitation(ctx, brand.Name, query)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	citation := &models.Citation{
		BrandID:   brand.ID,
		AIModel:   models.AIModelGemini,
		Query:     query,
		Mentioned: check.Mentioned,
		Context:   truncate(check.Context, maxStoredContext),
		Status:    models.CitationChecked,
		Date:      date,
	}
	if err := f.store.UpsertCitation(ctx, citation); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Mentioned = check.Mentioned
	result.SemanticMatch = check.SemanticMatch
	result.Success = true
	return result
}

func (f *Fetcher) fetchReviews(ctx context.Context, brand *models.Brand, today string) ReviewsSummary {
	s := ReviewsSummary{PlatformsAdded: len(f.tracking.ReviewPlatforms)}

	for _, platform := range f.tracking.ReviewPlatforms {
		created, err := f.store.InsertPlaceholderReview(ctx, brand.ID, platform, today)
		if err != nil {
			slog.Warn("failed to add placeholder review", "brand", brand.Name, "platform", platform, "error", err)
			continue
		}
		if created {
			s.ReviewsCreated++
		}
	}

	return s
}

// ErrAINotConfigured is returned by RefreshCitations without a live AI integration.
var ErrAINotConfigured = errors.New("no live AI integration configured")

// RefreshSummary reports a citation refresh across brands.
type RefreshSummary struct {
	BrandsChecked int              `json:"brands_checked"`
	TotalChecks   int              `json:"total_checks"`
	TotalMentions int              `json:"total_mentions"`
	Results       []CitationResult `json:"results"`
}

// RefreshCitations re-asks the refresh queries for every brand and
// overwrites today's live citations. The connection is tested first;
// a failing connection aborts the refresh before any brand is touched.
func (f *Fetcher) RefreshCitations(ctx context.Context, brands []models.Brand) (*RefreshSummary, error) {
	if f.ai == nil || !f.ai.Configured() {
		return nil, ErrAINotConfigured
	}
	if err := f.ai.TestConnection(ctx); err != nil {
		return nil, fmt.Errorf("ai connection test: %w", err)
	}

	today := models.Today()
	s := &RefreshSummary{Results: []CitationResult{}}

	for i := range brands {
		brand := &brands[i]
		for _, template := range f.tracking.RefreshQueries {
			if err := f.sleep(ctx, f.RefreshDelay); err != nil {
				if s.TotalChecks > 0 {
					f.changed(context.WithoutCancel(ctx))
				}
				return s, err
			}

			result := f.checkCitation(ctx, brand, ExpandQuery(template, brand.Name), today)
			s.Results = append(s.Results, result)
			if !result.Success {
				slog.Warn("citation refresh failed", "brand", brand.Name, "query", result.Query, "error", result.Error)
				continue
			}
			s.TotalChecks++
			if result.Mentioned {
				s.TotalMentions++
			}
		}
		s.BrandsChecked++
	}

	slog.Info("citation refresh finished", "brands", s.BrandsChecked, "checks", s.TotalChecks, "mentions", s.TotalMentions)
	f.changed(ctx)
	return s, nil
}

func (f *Fetcher) changed(ctx context.Context) {
	if f.OnChange != nil {
		f.OnChange(ctx)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
