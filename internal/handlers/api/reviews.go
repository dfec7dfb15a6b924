package api

import (
	"cmp"
	"encoding/json"
	"slices"

	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/analytics"
	"brandwatch/internal/models"
	"brandwatch/internal/validation"
)

// ReviewHandler handles review records via JSON API.
type ReviewHandler struct {
	store ReviewStore
	cache Invalidator
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(store ReviewStore, cache Invalidator) *ReviewHandler {
	return &ReviewHandler{store: store, cache: cache}
}

// List returns one page of reviews matching the filters.
func (h *ReviewHandler) List(c fiber.Ctx) error {
	filter, err := reviewFilter(c)
	if err != nil {
		return paramError(c, err)
	}
	page, window, err := pageParams(c)
	if err != nil {
		return paramError(c, err)
	}

	count, err := h.store.CountReviews(c.Context(), filter)
	if err != nil {
		return storeError(c, err, "count reviews")
	}
	reviews, err := h.store.ListReviews(c.Context(), filter, window)
	if err != nil {
		return storeError(c, err, "list reviews")
	}

	return jsonList(c, count, page, reviews)
}

// Get returns a single review.
func (h *ReviewHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	review, err := h.store.GetReviewByID(c.Context(), id)
	if err != nil {
		return storeError(c, err, "fetch review")
	}
	return jsonSuccess(c, review)
}

// Create records a review by hand. The rating is clamped to 0-5.
func (h *ReviewHandler) Create(c fiber.Ctx) error {
	var body validation.ReviewInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	review, err := h.store.CreateReview(c.Context(), body.Review())
	if err != nil {
		return storeError(c, err, "create review")
	}
	h.cache.Invalidate(c.Context())

	return jsonCreated(c, review)
}

// Update overwrites a review, typically to back-fill a placeholder.
func (h *ReviewHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	var body validation.ReviewInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	in := body.Review()
	in.ID = id
	review, err := h.store.UpdateReview(c.Context(), in)
	if err != nil {
		return storeError(c, err, "update review")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, review)
}

// Delete removes a review.
func (h *ReviewHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	if err := h.store.DeleteReview(c.Context(), id); err != nil {
		return storeError(c, err, "delete review")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, fiber.Map{"message": "Review deleted successfully"})
}

// Summary returns the average rating, total review count and a
// per-platform breakdown, best rated platform first.
func (h *ReviewHandler) Summary(c fiber.Ctx) error {
	filter, err := reviewFilter(c)
	if err != nil {
		return paramError(c, err)
	}

	summary, err := h.store.SummarizeReviews(c.Context(), filter)
	if err != nil {
		return storeError(c, err, "summarize reviews")
	}

	summary.AverageRating = analytics.Round1(summary.AverageRating)
	for i := range summary.ByPlatform {
		summary.ByPlatform[i].AvgRating = analytics.Round1(summary.ByPlatform[i].AvgRating)
	}
	slices.SortStableFunc(summary.ByPlatform, func(a, b models.PlatformReviewSummary) int {
		return cmp.Compare(b.AvgRating, a.AvgRating)
	})

	return jsonSuccess(c, summary)
}
