package api

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"brandwatch/internal/db"
	"brandwatch/internal/models"
)

func TestRankingSummary_Rounds(t *testing.T) {
	store := &fakeStore{rankingSummary: models.RankingSummary{TotalRankings: 3, AveragePosition: 7.3333, UniqueKeywords: 2}}
	app := newTestApp()
	h := NewRankingHandler(store, store, &countingCache{})
	app.Get("/rankings/summary", h.Summary)

	status, env := doRequest(t, app, fiber.MethodGet, "/rankings/summary", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var got models.RankingSummary
	decodeData(t, env, &got)
	if got.AveragePosition != 7.3 || got.TotalRankings != 3 || got.UniqueKeywords != 2 {
		t.Errorf("summary = %+v", got)
	}

	status, env = doRequest(t, app, fiber.MethodGet, "/rankings/summary?start_date=2024-13-01", "")
	if status != fiber.StatusBadRequest || env.Details["start_date"] == "" {
		t.Errorf("bad date: status = %d details = %v", status, env.Details)
	}
}

func TestRankingCreate(t *testing.T) {
	store := &fakeStore{}
	acme := store.addBrand("Acme")
	cache := &countingCache{}
	app := newTestApp()
	h := NewRankingHandler(store, store, cache)
	app.Post("/rankings", h.Create)

	body := `{"brand":"` + acme.ID.String() + `","keyword":"acme app","position":4,"date":"2024-03-01"}`

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"created", body, 201, ""},
		{"duplicate day", body, 409, "CONFLICT"},
		{"position out of range", `{"brand":"` + acme.ID.String() + `","keyword":"x","position":101}`, 400, "BAD_REQUEST"},
		{"missing brand", `{"keyword":"x","position":3}`, 400, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, app, fiber.MethodPost, "/rankings", tt.body)
			if status != tt.wantStatus || env.Code != tt.wantCode {
				t.Errorf("status = %d code = %q, want %d %q", status, env.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
	if cache.invalidations != 1 {
		t.Errorf("cache invalidated %d times, want 1", cache.invalidations)
	}
}

func TestRankingTrends(t *testing.T) {
	store := &fakeStore{}
	acme := store.addBrand("Acme")
	app := newTestApp()
	h := NewRankingHandler(store, store, &countingCache{})
	app.Get("/rankings/trends/:brandID", h.Trends)

	status, env := doRequest(t, app, fiber.MethodGet, "/rankings/trends/"+acme.ID.String(), "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var got struct {
		BrandID uuid.UUID             `json:"brand_id"`
		Trends  []models.RankingTrend `json:"trends"`
	}
	decodeData(t, env, &got)
	if got.BrandID != acme.ID || got.Trends == nil {
		t.Errorf("trends = %+v", got)
	}

	status, _ = doRequest(t, app, fiber.MethodGet, "/rankings/trends/"+uuid.NewString(), "")
	if status != fiber.StatusNotFound {
		t.Errorf("unknown brand status = %d, want 404", status)
	}
}

func TestCitationBreakdown(t *testing.T) {
	store := &fakeStore{modelCounts: []db.CitationCounts{
		{AIModel: models.AIModelChatGPT, Total: 4, Mentioned: 1},
		{AIModel: models.AIModelGemini, Total: 3, Mentioned: 2},
		{AIModel: models.AIModelClaude, Total: 0, Mentioned: 0},
	}}
	app := newTestApp()
	h := NewCitationHandler(store, &countingCache{})
	app.Get("/citations/breakdown", h.Breakdown)
	app.Get("/citations/summary", h.Summary)

	_, env := doRequest(t, app, fiber.MethodGet, "/citations/breakdown", "")
	var got models.CitationBreakdown
	decodeData(t, env, &got)

	if got.TotalCitations != 7 || got.TotalMentioned != 3 {
		t.Errorf("totals = %d/%d, want 7/3", got.TotalCitations, got.TotalMentioned)
	}
	wantOrder := []string{models.AIModelGemini, models.AIModelChatGPT, models.AIModelClaude}
	for i, want := range wantOrder {
		if got.Breakdown[i].AIModel != want {
			t.Errorf("breakdown[%d] = %s, want %s", i, got.Breakdown[i].AIModel, want)
		}
	}
	gemini := got.Breakdown[0]
	if gemini.AIModelDisplay != "Gemini" || gemini.NotMentioned != 1 || gemini.CitationRate != 66.7 {
		t.Errorf("gemini = %+v", gemini)
	}
	if got.Breakdown[2].CitationRate != 0 {
		t.Errorf("empty model rate = %v, want 0", got.Breakdown[2].CitationRate)
	}

	_, env = doRequest(t, app, fiber.MethodGet, "/citations/summary", "")
	var summary models.CitationSummary
	decodeData(t, env, &summary)
	if summary.CitationRate != 42.9 {
		t.Errorf("citation rate = %v, want 42.9", summary.CitationRate)
	}
}

func TestCitationFilterParams(t *testing.T) {
	store := &fakeStore{}
	app := newTestApp()
	h := NewCitationHandler(store, &countingCache{})
	app.Get("/citations", h.List)

	status, _ := doRequest(t, app, fiber.MethodGet, "/citations?mentioned=true&ai_model=gemini", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if store.lastCitations.Mentioned == nil || !*store.lastCitations.Mentioned || store.lastCitations.AIModel != "gemini" {
		t.Errorf("filter = %+v", store.lastCitations)
	}

	status, env := doRequest(t, app, fiber.MethodGet, "/citations?mentioned=maybe", "")
	if status != fiber.StatusBadRequest || env.Details["mentioned"] == "" {
		t.Errorf("mentioned=maybe: status = %d details = %v", status, env.Details)
	}

	status, env = doRequest(t, app, fiber.MethodGet, "/citations?brand=acme", "")
	if status != fiber.StatusBadRequest || env.Details["brand"] == "" {
		t.Errorf("brand=acme: status = %d details = %v", status, env.Details)
	}
}

func TestReviewSummary_SortsAndRounds(t *testing.T) {
	store := &fakeStore{reviewSummary: models.ReviewSummary{
		AverageRating: 4.06,
		TotalReviews:  350,
		ByPlatform: []models.PlatformReviewSummary{
			{Platform: models.PlatformYelp, AvgRating: 3.84, TotalReviews: 100},
			{Platform: models.PlatformG2, AvgRating: 4.66, TotalReviews: 50},
			{Platform: models.PlatformGoogle, AvgRating: 4.12, TotalReviews: 200},
		},
	}}
	app := newTestApp()
	h := NewReviewHandler(store, &countingCache{})
	app.Get("/reviews/summary", h.Summary)

	_, env := doRequest(t, app, fiber.MethodGet, "/reviews/summary", "")
	var got models.ReviewSummary
	decodeData(t, env, &got)

	if got.AverageRating != 4.1 || got.TotalReviews != 350 {
		t.Errorf("summary = %+v", got)
	}
	want := []struct {
		platform string
		rating   float64
	}{
		{models.PlatformG2, 4.7},
		{models.PlatformGoogle, 4.1},
		{models.PlatformYelp, 3.8},
	}
	for i, w := range want {
		p := got.ByPlatform[i]
		if p.Platform != w.platform || p.AvgRating != w.rating {
			t.Errorf("by_platform[%d] = %s %v, want %s %v", i, p.Platform, p.AvgRating, w.platform, w.rating)
		}
	}
}

func TestReviewCreate_ClampsRating(t *testing.T) {
	store := &fakeStore{}
	acme := store.addBrand("Acme")
	app := newTestApp()
	h := NewReviewHandler(store, &countingCache{})
	app.Post("/reviews", h.Create)

	status, env := doRequest(t, app, fiber.MethodPost, "/reviews",
		`{"brand":"`+acme.ID.String()+`","platform":"g2","rating":7.5,"review_count":12}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d: %+v", status, env)
	}
	var got models.Review
	decodeData(t, env, &got)
	if got.Rating != models.MaxRating || got.Date == "" {
		t.Errorf("review = %+v", got)
	}

	status, env = doRequest(t, app, fiber.MethodPost, "/reviews",
		`{"brand":"`+acme.ID.String()+`","platform":"myspace","rating":4}`)
	if status != fiber.StatusBadRequest || env.Details["platform"] == "" {
		t.Errorf("bad platform: status = %d details = %v", status, env.Details)
	}
}

type fakeDashboard struct {
	dates   models.DateRange
	exports []*uuid.UUID
}

func (f *fakeDashboard) Overview(_ context.Context, dates models.DateRange) (*models.Dashboard, error) {
	f.dates = dates
	return &models.Dashboard{Overview: models.Overview{TotalBrands: 2}}, nil
}

func (f *fakeDashboard) Export(_ context.Context, brandID *uuid.UUID) (*models.Export, error) {
	f.exports = append(f.exports, brandID)
	if brandID != nil && *brandID == uuid.Nil {
		return nil, db.ErrBrandNotFound
	}
	return &models.Export{}, nil
}

func TestDashboard(t *testing.T) {
	svc := &fakeDashboard{}
	app := newTestApp()
	h := NewDashboardHandler(svc)
	app.Get("/dashboard", h.Overview)
	app.Get("/export", h.Export)

	status, env := doRequest(t, app, fiber.MethodGet, "/dashboard?start_date=2024-01-01&end_date=2024-01-31", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	var d models.Dashboard
	decodeData(t, env, &d)
	if d.Overview.TotalBrands != 2 || svc.dates.Start != "2024-01-01" || svc.dates.End != "2024-01-31" {
		t.Errorf("dashboard = %+v dates = %+v", d, svc.dates)
	}

	status, env = doRequest(t, app, fiber.MethodGet, "/dashboard?end_date=31/01/2024", "")
	if status != fiber.StatusBadRequest || env.Details["end_date"] == "" {
		t.Errorf("bad end_date: status = %d details = %v", status, env.Details)
	}

	status, _ = doRequest(t, app, fiber.MethodGet, "/export?brand="+uuid.Nil.String(), "")
	if status != fiber.StatusNotFound {
		t.Errorf("export unknown brand status = %d, want 404", status)
	}
	status, _ = doRequest(t, app, fiber.MethodGet, "/export", "")
	if status != fiber.StatusOK || svc.exports[len(svc.exports)-1] != nil {
		t.Errorf("export all status = %d", status)
	}
}
