package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"brandwatch/internal/db"
	"brandwatch/internal/integrations"
	"brandwatch/internal/jobs"
	"brandwatch/internal/models"
	"brandwatch/internal/tracking"
)

// fakeStore keeps brands and rankings in memory. Citation and review
// queries return the canned fields.
type fakeStore struct {
	mu       sync.Mutex
	brands   []models.Brand
	rankings []models.Ranking
	upserts  []models.Ranking

	rankingSummary models.RankingSummary
	modelCounts    []db.CitationCounts
	reviewSummary  models.ReviewSummary
	lastCitations  db.CitationFilter
}

func (s *fakeStore) addBrand(name string) models.Brand {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := models.Brand{ID: uuid.New(), Name: name, Category: models.CategoryOther, CreatedAt: time.Now()}
	s.brands = append(s.brands, b)
	return b
}

func (s *fakeStore) CreateBrand(_ context.Context, b *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	s.brands = append(s.brands, *b)
	return nil
}

func (s *fakeStore) GetBrandByID(_ context.Context, id uuid.UUID) (*models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.brands {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, db.ErrBrandNotFound
}

func (s *fakeStore) ListBrands(_ context.Context, page db.Page) ([]models.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.brands[min(page.Offset, len(s.brands)):]
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (s *fakeStore) CountBrands(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.brands), nil
}

func (s *fakeStore) UpdateBrand(_ context.Context, b *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.brands {
		if s.brands[i].ID == b.ID {
			s.brands[i] = *b
			return nil
		}
	}
	return db.ErrBrandNotFound
}

func (s *fakeStore) DeleteBrand(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.brands {
		if s.brands[i].ID == id {
			s.brands = append(s.brands[:i], s.brands[i+1:]...)
			return nil
		}
	}
	return db.ErrBrandNotFound
}

func (s *fakeStore) CreateRanking(_ context.Context, r *models.Ranking) (*models.Ranking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rankings {
		if existing.BrandID == r.BrandID && existing.Keyword == r.Keyword && existing.Date == r.Date {
			return nil, db.ErrDuplicateRecord
		}
	}
	r.ID = uuid.New()
	s.rankings = append(s.rankings, *r)
	return r, nil
}

func (s *fakeStore) UpsertRanking(_ context.Context, r *models.Ranking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, *r)
	return nil
}

func (s *fakeStore) GetRankingByID(context.Context, uuid.UUID) (*models.Ranking, error) {
	return nil, db.ErrRankingNotFound
}

func (s *fakeStore) UpdateRanking(context.Context, *models.Ranking) (*models.Ranking, error) {
	return nil, db.ErrRankingNotFound
}

func (s *fakeStore) DeleteRanking(context.Context, uuid.UUID) error {
	return db.ErrRankingNotFound
}

func (s *fakeStore) ListRankings(context.Context, db.RankingFilter, db.Page) ([]models.Ranking, error) {
	return s.rankings, nil
}

func (s *fakeStore) CountRankings(context.Context, db.RankingFilter) (int, error) {
	return len(s.rankings), nil
}

func (s *fakeStore) SummarizeRankings(context.Context, db.RankingFilter) (*models.RankingSummary, error) {
	summary := s.rankingSummary
	return &summary, nil
}

func (s *fakeStore) RankingTrends(context.Context, uuid.UUID) ([]models.RankingTrend, error) {
	return []models.RankingTrend{}, nil
}

func (s *fakeStore) CreateCitation(_ context.Context, c *models.Citation) (*models.Citation, error) {
	c.ID = uuid.New()
	return c, nil
}

func (s *fakeStore) GetCitationByID(context.Context, uuid.UUID) (*models.Citation, error) {
	return nil, db.ErrCitationNotFound
}

func (s *fakeStore) UpdateCitation(context.Context, *models.Citation) (*models.Citation, error) {
	return nil, db.ErrCitationNotFound
}

func (s *fakeStore) DeleteCitation(context.Context, uuid.UUID) error {
	return db.ErrCitationNotFound
}

func (s *fakeStore) ListCitations(_ context.Context, f db.CitationFilter, _ db.Page) ([]models.Citation, error) {
	s.lastCitations = f
	return []models.Citation{}, nil
}

func (s *fakeStore) CountCitations(_ context.Context, f db.CitationFilter) (int, error) {
	s.lastCitations = f
	return 0, nil
}

func (s *fakeStore) CountMentions(context.Context, db.CitationFilter) (int, int, error) {
	total, mentioned := 0, 0
	for _, cc := range s.modelCounts {
		total += cc.Total
		mentioned += cc.Mentioned
	}
	return total, mentioned, nil
}

func (s *fakeStore) CountMentionsByModel(context.Context, db.CitationFilter) ([]db.CitationCounts, error) {
	return s.modelCounts, nil
}

func (s *fakeStore) CreateReview(_ context.Context, r *models.Review) (*models.Review, error) {
	r.ID = uuid.New()
	return r, nil
}

func (s *fakeStore) GetReviewByID(context.Context, uuid.UUID) (*models.Review, error) {
	return nil, db.ErrReviewNotFound
}

func (s *fakeStore) UpdateReview(context.Context, *models.Review) (*models.Review, error) {
	return nil, db.ErrReviewNotFound
}

func (s *fakeStore) DeleteReview(context.Context, uuid.UUID) error {
	return db.ErrReviewNotFound
}

func (s *fakeStore) ListReviews(context.Context, db.ReviewFilter, db.Page) ([]models.Review, error) {
	return []models.Review{}, nil
}

func (s *fakeStore) CountReviews(context.Context, db.ReviewFilter) (int, error) {
	return 0, nil
}

func (s *fakeStore) SummarizeReviews(context.Context, db.ReviewFilter) (*models.ReviewSummary, error) {
	summary := s.reviewSummary
	summary.ByPlatform = append([]models.PlatformReviewSummary(nil), s.reviewSummary.ByPlatform...)
	return &summary, nil
}

type countingCache struct{ invalidations int }

func (c *countingCache) Invalidate(context.Context) { c.invalidations++ }

// recordingQueue runs jobs on a real queue and keeps their handles.
type recordingQueue struct {
	queue   *jobs.Queue
	jobs    []jobs.Job
	handles []*jobs.Handle
}

func newRecordingQueue(t *testing.T) *recordingQueue {
	t.Helper()
	q := jobs.NewQueue(8, 1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	q.Start(ctx)
	return &recordingQueue{queue: q}
}

func (q *recordingQueue) Submit(j jobs.Job) *jobs.Handle {
	h := q.queue.Submit(j)
	q.jobs = append(q.jobs, j)
	q.handles = append(q.handles, h)
	return h
}

type fakeFetcher struct {
	fetched []string
}

func (f *fakeFetcher) FetchAll(_ context.Context, brand *models.Brand) *tracking.Summary {
	f.fetched = append(f.fetched, brand.Name)
	return &tracking.Summary{BrandID: brand.ID, BrandName: brand.Name}
}

type fakeSearch struct {
	calls    int
	position int
	err      error
}

func (f *fakeSearch) FindPosition(_ context.Context, brand, keyword string) (*integrations.Position, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := &integrations.Position{Keyword: keyword, Brand: brand, Date: models.Today()}
	if f.position > 0 {
		pos := f.position
		p.Position = &pos
		p.Found = true
	}
	return p, nil
}

func (f *fakeSearch) Usage(context.Context) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"plan_searches_left": 42.0}, nil
}

type fakeAI struct {
	err       error
	lastQuery string
}

func (f *fakeAI) CheckCitation(_ context.Context, brand, query string) (*integrations.CitationCheck, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return &integrations.CitationCheck{Brand: brand, Query: query, Mentioned: true, DirectMention: true}, nil
}

func (f *fakeAI) TestConnection(context.Context) error { return f.err }

type fakeTrigger struct {
	handle *jobs.Handle
	brand  *models.Brand
}

func (f *fakeTrigger) Trigger() *jobs.Handle { return f.handle }

func (f *fakeTrigger) TriggerBrand(brand models.Brand) *jobs.Handle {
	f.brand = &brand
	return f.handle
}

// envelope is the decoded body of any API response.
type envelope struct {
	Status  string            `json:"status"`
	Data    json.RawMessage   `json:"data"`
	Error   bool              `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, target, raw, err)
		}
	}
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}
