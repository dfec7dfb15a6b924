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

// CitationHandler handles AI citation records via JSON API.
type CitationHandler struct {
	store CitationStore
	cache Invalidator
}

// NewCitationHandler creates a new citation handler.
func NewCitationHandler(store CitationStore, cache Invalidator) *CitationHandler {
	return &CitationHandler{store: store, cache: cache}
}

// List returns one page of citations matching the filters.
func (h *CitationHandler) List(c fiber.Ctx) error {
	filter, err := citationFilter(c)
	if err != nil {
		return paramError(c, err)
	}
	page, window, err := pageParams(c)
	if err != nil {
		return paramError(c, err)
	}

	count, err := h.store.CountCitations(c.Context(), filter)
	if err != nil {
		return storeError(c, err, "count citations")
	}
	citations, err := h.store.ListCitations(c.Context(), filter, window)
	if err != nil {
		return storeError(c, err, "list citations")
	}

	return jsonList(c, count, page, citations)
}

// Get returns a single citation.
func (h *CitationHandler) Get(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	citation, err := h.store.GetCitationByID(c.Context(), id)
	if err != nil {
		return storeError(c, err, "fetch citation")
	}
	return jsonSuccess(c, citation)
}

// Create records a citation by hand.
func (h *CitationHandler) Create(c fiber.Ctx) error {
	var body validation.CitationInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	citation, err := h.store.CreateCitation(c.Context(), body.Citation())
	if err != nil {
		return storeError(c, err, "create citation")
	}
	h.cache.Invalidate(c.Context())

	return jsonCreated(c, citation)
}

// Update overwrites a citation.
func (h *CitationHandler) Update(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	var body validation.CitationInput
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	in := body.Citation()
	in.ID = id
	citation, err := h.store.UpdateCitation(c.Context(), in)
	if err != nil {
		return storeError(c, err, "update citation")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, citation)
}

// Delete removes a citation.
func (h *CitationHandler) Delete(c fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return paramError(c, err)
	}

	if err := h.store.DeleteCitation(c.Context(), id); err != nil {
		return storeError(c, err, "delete citation")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, fiber.Map{"message": "Citation deleted successfully"})
}

// Summary returns total and mentioned counts with the citation rate.
func (h *CitationHandler) Summary(c fiber.Ctx) error {
	filter, err := citationFilter(c)
	if err != nil {
		return paramError(c, err)
	}

	total, mentioned, err := h.store.CountMentions(c.Context(), filter)
	if err != nil {
		return storeError(c, err, "summarize citations")
	}

	return jsonSuccess(c, models.CitationSummary{
		TotalCitations: total,
		TotalMentioned: mentioned,
		CitationRate:   analytics.CitationRate(mentioned, total),
	})
}

// Breakdown groups the filtered citations by AI model, most mentioned first.
func (h *CitationHandler) Breakdown(c fiber.Ctx) error {
	filter, err := citationFilter(c)
	if err != nil {
		return paramError(c, err)
	}

	counts, err := h.store.CountMentionsByModel(c.Context(), filter)
	if err != nil {
		return storeError(c, err, "break down citations")
	}

	out := models.CitationBreakdown{Breakdown: make([]models.CitationModelBreakdown, 0, len(counts))}
	for _, cc := range counts {
		out.Breakdown = append(out.Breakdown, models.CitationModelBreakdown{
			AIModel:        cc.AIModel,
			AIModelDisplay: models.AIModelDisplayName(cc.AIModel),
			Total:          cc.Total,
			Mentioned:      cc.Mentioned,
			NotMentioned:   cc.Total - cc.Mentioned,
			CitationRate:   analytics.CitationRate(cc.Mentioned, cc.Total),
		})
		out.TotalCitations += cc.Total
		out.TotalMentioned += cc.Mentioned
	}
	slices.SortStableFunc(out.Breakdown, func(a, b models.CitationModelBreakdown) int {
		return cmp.Compare(b.Mentioned, a.Mentioned)
	})

	return jsonSuccess(c, out)
}
