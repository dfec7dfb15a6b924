package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/jobs"
	"brandwatch/internal/models"
	"brandwatch/internal/validation"
)

// AutoFetchStarted is reported when a new brand's data fetch is queued.
const AutoFetchStarted = "Data fetching started in background"

// BrandHandler handles brand CRUD via JSON API.
type BrandHandler struct {
	store   BrandStore
	fetcher BrandFetcher
	queue   Submitter
	cache   Invalidator
}

// NewBrandHandler creates a new brand handler.
func NewBrandHandler(store BrandStore, fetcher BrandFetcher, queue Submitter, cache Invalidator) *BrandHandler {
	return &BrandHandler{store: store, fetcher: fetcher, queue: queue, cache: cache}
}

// createdBrand is a new brand plus the state of its background fetch.
type createdBrand struct {
	models.Brand
	AutoFetchStatus string `json:"auto_fetch_status"`
}

// List returns one page of brands, newest first.
func (h *BrandHandler) List(c fiber.Ctx) error {
	page, window, err := pageParams(c)
	if err != nil {
		return paramError(c, err)
	}

	count, err := h.store.CountBrands(c.Context())
	if err != nil {
		return storeError(c, err, "count brands")
	}
	brands, err := h.store.ListBrands(c.Context(), window)
	if err != nil {
		return storeError(c, err, "list brands")
	}

	return jsonList(c, count, page, brands)
}

// Get returns a single brand.
func (h *BrandHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	brand, err := h.store.GetBrandByID(c.Context(), id)
	if err != nil {
		return storeError(c, err, "fetch brand")
	}
	return jsonSuccess(c, brand)
}

// Create stores a brand and queues a fetch of its rankings, citations
// and placeholder reviews. The response does not wait for the fetch.
func (h *BrandHandler) Create(c fiber.Ctx) error {
	var body validation.BrandInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	var brand models.Brand
	body.Apply(&brand)
	if err := h.store.CreateBrand(c.Context(), &brand); err != nil {
		return storeError(c, err, "create brand")
	}
	h.cache.Invalidate(c.Context())

	fetched := brand
	h.queue.Submit(fetchJob(h.fetcher, &fetched))

	return jsonCreated(c, createdBrand{Brand: brand, AutoFetchStatus: AutoFetchStarted})
}

// Update replaces a brand's editable fields.
func (h *BrandHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	var body validation.BrandInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	brand, err := h.store.GetBrandByID(c.Context(), id)
	if err != nil {
		return storeError(c, err, "fetch brand")
	}
	body.Apply(brand)
	return h.save(c, brand)
}

// Patch updates only the fields present in the body.
func (h *BrandHandler) Patch(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	var body validation.BrandPatch
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	brand, err := h.store.GetBrandByID(c.Context(), id)
	if err != nil {
		return storeError(c, err, "fetch brand")
	}
	body.Apply(brand)
	return h.save(c, brand)
}

func (h *BrandHandler) save(c fiber.Ctx, brand *models.Brand) error {
	if err := h.store.UpdateBrand(c.Context(), brand); err != nil {
		return storeError(c, err, "update brand")
	}
	h.cache.Invalidate(c.Context())
	return jsonSuccess(c, brand)
}

// Delete removes a brand and all of its records.
func (h *BrandHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	brand, err := h.store.GetBrandByID(c.Context(), id)
	if err != nil {
		return storeError(c, err, "fetch brand")
	}
	if err := h.store.DeleteBrand(c.Context(), id); err != nil {
		return storeError(c, err, "delete brand")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, fiber.Map{
		"message": fmt.Sprintf(`Brand "%s" deleted successfully`, brand.Name),
	})
}

// fetchJob wraps a brand fetch as a queue job.
func fetchJob(fetcher BrandFetcher, brand *models.Brand) jobs.Job {
	return jobs.Job{
		ID:     "fetch-" + brand.ID.String(),
		Source: "brand_fetch",
		Work: func(ctx context.Context) error {
			fetcher.FetchAll(ctx, brand)
			return nil
		},
	}
}
