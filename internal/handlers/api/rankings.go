package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/analytics"
	"brandwatch/internal/validation"
)

// RankingHandler handles search ranking records via JSON API.
type RankingHandler struct {
	store  RankingStore
	brands BrandStore
	cache  Invalidator
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(store RankingStore, brands BrandStore, cache Invalidator) *RankingHandler {
	return &RankingHandler{store: store, brands: brands, cache: cache}
}

// List returns one page of rankings matching the brand, keyword and date filters.
func (h *RankingHandler) List(c fiber.Ctx) error {
	filter, err := rankingFilter(c)
	if err != nil {
		return paramError(c, err)
	}
	page, window, err := pageParams(c)
	if err != nil {
		return paramError(c, err)
	}

	count, err := h.store.CountRankings(c.Context(), filter)
	if err != nil {
		return storeError(c, err, "count rankings")
	}
	rankings, err := h.store.ListRankings(c.Context(), filter, window)
	if err != nil {
		return storeError(c, err, "list rankings")
	}

	return jsonList(c, count, page, rankings)
}

// Get returns a single ranking.
func (h *RankingHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	ranking, err := h.store.GetRankingByID(c.Context(), id)
	if err != nil {
		return storeError(c, err, "fetch ranking")
	}
	return jsonSuccess(c, ranking)
}

// Create records a ranking by hand.
func (h *RankingHandler) Create(c fiber.Ctx) error {
	var body validation.RankingInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	ranking, err := h.store.CreateRanking(c.Context(), body.Ranking())
	if err != nil {
		return storeError(c, err, "create ranking")
	}
	h.cache.Invalidate(c.Context())

	return jsonCreated(c, ranking)
}

// Update overwrites a ranking.
func (h *RankingHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	var body validation.RankingInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	r := body.Ranking()
	r.ID = id
	ranking, err := h.store.UpdateRanking(c.Context(), r)
	if err != nil {
		return storeError(c, err, "update ranking")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, ranking)
}

// Delete removes a ranking.
func (h *RankingHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	if err := h.store.DeleteRanking(c.Context(), id); err != nil {
		return storeError(c, err, "delete ranking")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, fiber.Map{"message": "Ranking deleted successfully"})
}

// Summary returns the count, average position and distinct keyword count
// for the filtered rankings.
func (h *RankingHandler) Summary(c fiber.Ctx) error {
	filter, err := rankingFilter(c)
	if err != nil {
		return paramError(c, err)
	}

	summary, err := h.store.SummarizeRankings(c.Context(), filter)
	if err != nil {
		return storeError(c, err, "summarize rankings")
	}
	summary.AveragePosition = analytics.Round1(summary.AveragePosition)

	return jsonSuccess(c, summary)
}

// Trends returns a brand's ranking history grouped by keyword.
func (h *RankingHandler) Trends(c fiber.Ctx) error {
	brandID, err := pathID(c, "brandID")
	if err != nil {
		return paramError(c, err)
	}

	if _, err := h.brands.GetBrandByID(c.Context(), brandID); err != nil {
		return storeError(c, err, "fetch brand")
	}
	trends, err := h.store.RankingTrends(c.Context(), brandID)
	if err != nil {
		return storeError(c, err, "load ranking trends")
	}

	return jsonSuccess(c, fiber.Map{
		"brand_id": brandID,
		"trends":   trends,
	})
}
