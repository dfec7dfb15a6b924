package api

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/models"
)

type brandFixture struct {
	app     *fiber.App
	store   *fakeStore
	queue   *recordingQueue
	fetcher *fakeFetcher
	cache   *countingCache
}

func newBrandFixture(t *testing.T) *brandFixture {
	f := &brandFixture{
		app:     newTestApp(),
		store:   &fakeStore{},
		queue:   newRecordingQueue(t),
		fetcher: &fakeFetcher{},
		cache:   &countingCache{},
	}
	h := NewBrandHandler(f.store, f.fetcher, f.queue, f.cache)
	f.app.Get("/brands", h.List)
	f.app.Post("/brands", h.Create)
	f.app.Get("/brands/:id", h.Get)
	f.app.Put("/brands/:id", h.Update)
	f.app.Patch("/brands/:id", h.Patch)
	f.app.Delete("/brands/:id", h.Delete)
	return f
}

func TestBrandCreate_QueuesFetch(t *testing.T) {
	f := newBrandFixture(t)

	status, env := doRequest(t, f.app, fiber.MethodPost, "/brands", `{"name":"Acme","category":"software"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201: %+v", status, env)
	}

	var got struct {
		models.Brand
		AutoFetchStatus string `json:"auto_fetch_status"`
	}
	decodeData(t, env, &got)
	if got.Name != "Acme" || got.Category != "software" {
		t.Errorf("brand = %+v", got.Brand)
	}
	if got.AutoFetchStatus != AutoFetchStarted {
		t.Errorf("auto_fetch_status = %q", got.AutoFetchStatus)
	}

	if len(f.queue.handles) != 1 {
		t.Fatalf("queued %d jobs, want 1", len(f.queue.handles))
	}
	if f.queue.jobs[0].ID != "fetch-"+got.ID.String() {
		t.Errorf("job id = %q", f.queue.jobs[0].ID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := f.queue.handles[0].Wait(ctx); err != nil {
		t.Fatalf("fetch job: %v", err)
	}
	if len(f.fetcher.fetched) != 1 || f.fetcher.fetched[0] != "Acme" {
		t.Errorf("fetched = %v", f.fetcher.fetched)
	}
	if f.cache.invalidations != 1 {
		t.Errorf("cache invalidated %d times, want 1", f.cache.invalidations)
	}
}

func TestBrandCreate_Validation(t *testing.T) {
	f := newBrandFixture(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"category":"software"}`, "name"},
		{"bad category", `{"name":"Acme","category":"crypto"}`, "category"},
		{"bad website", `{"name":"Acme","website":"javascript:alert(1)"}`, "website"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, f.app, fiber.MethodPost, "/brands", tt.body)
			if status != fiber.StatusBadRequest || env.Code != "BAD_REQUEST" {
				t.Errorf("status = %d code = %q", status, env.Code)
			}
			if _, ok := env.Details[tt.wantField]; !ok {
				t.Errorf("details = %v, want %q", env.Details, tt.wantField)
			}
		})
	}

	status, _ := doRequest(t, f.app, fiber.MethodPost, "/brands", `{not json`)
	if status != fiber.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", status)
	}
	if len(f.queue.jobs) != 0 {
		t.Errorf("jobs queued for invalid input: %d", len(f.queue.jobs))
	}
}

func TestBrandGet(t *testing.T) {
	f := newBrandFixture(t)
	acme := f.store.addBrand("Acme")

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{"found", "/brands/" + acme.ID.String(), 200, ""},
		{"unknown", "/brands/00000000-0000-4000-8000-000000000000", 404, "NOT_FOUND"},
		{"malformed id", "/brands/42", 400, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, f.app, fiber.MethodGet, tt.path, "")
			if status != tt.wantStatus || env.Code != tt.wantCode {
				t.Errorf("status = %d code = %q, want %d %q", status, env.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestBrandList_Paginates(t *testing.T) {
	f := newBrandFixture(t)
	for i := range 25 {
		f.store.addBrand(fmt.Sprintf("Brand %d", i))
	}

	var page struct {
		Count   int            `json:"count"`
		Page    int            `json:"page"`
		Results []models.Brand `json:"results"`
	}

	_, env := doRequest(t, f.app, fiber.MethodGet, "/brands?page=2", "")
	decodeData(t, env, &page)
	if page.Count != 25 || page.Page != 2 || len(page.Results) != 5 {
		t.Errorf("page = count %d page %d results %d", page.Count, page.Page, len(page.Results))
	}

	status, env := doRequest(t, f.app, fiber.MethodGet, "/brands?page=0", "")
	if status != fiber.StatusBadRequest || env.Details["page"] == "" {
		t.Errorf("page=0: status = %d details = %v", status, env.Details)
	}
}

func TestBrandPatchAndDelete(t *testing.T) {
	f := newBrandFixture(t)
	acme := f.store.addBrand("Acme")
	path := "/brands/" + acme.ID.String()

	status, env := doRequest(t, f.app, fiber.MethodPatch, path, `{"website":"https://acme.io"}`)
	if status != fiber.StatusOK {
		t.Fatalf("patch status = %d: %+v", status, env)
	}
	var patched models.Brand
	decodeData(t, env, &patched)
	if patched.Name != "Acme" || patched.Website != "https://acme.io" {
		t.Errorf("patched = %+v", patched)
	}

	status, env = doRequest(t, f.app, fiber.MethodDelete, path, "")
	if status != fiber.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	var msg struct {
		Message string `json:"message"`
	}
	decodeData(t, env, &msg)
	if msg.Message != `Brand "Acme" deleted successfully` {
		t.Errorf("message = %q", msg.Message)
	}

	status, _ = doRequest(t, f.app, fiber.MethodDelete, path, "")
	if status != fiber.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", status)
	}
	if f.cache.invalidations != 2 {
		t.Errorf("cache invalidated %d times, want 2", f.cache.invalidations)
	}
}
