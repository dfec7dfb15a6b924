package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"brandwatch/internal/db"
	"brandwatch/internal/integrations"
	"brandwatch/internal/jobs"
	"brandwatch/internal/models"
	"brandwatch/internal/tracking"
	"brandwatch/internal/validation"
)

// SearchClient is the search-results API.
type SearchClient interface {
	FindPosition(ctx context.Context, brand, keyword string) (*integrations.Position, error)
	Usage(ctx context.Context) (map[string]any, error)
}

// AIClient is the generative-text API.
type AIClient interface {
	CheckCitation(ctx context.Context, brand, query string) (*integrations.CitationCheck, error)
	TestConnection(ctx context.Context) error
}

// RefreshTrigger queues a citation refresh of every brand or of one.
type RefreshTrigger interface {
	Trigger() *jobs.Handle
	TriggerBrand(brand models.Brand) *jobs.Handle
}

// defaultCitationQuery is asked when a check request names no query.
const defaultCitationQuery = "What is {brand}?"

// IntegrationHandler exposes direct calls to the external APIs.
type IntegrationHandler struct {
	brands   BrandStore
	rankings RankingStore
	search   SearchClient
	ai       AIClient
	refresh  RefreshTrigger
	cache    Invalidator
}

// NewIntegrationHandler creates a new integration handler.
func NewIntegrationHandler(brands BrandStore, rankings RankingStore, search SearchClient, ai AIClient, refresh RefreshTrigger, cache Invalidator) *IntegrationHandler {
	return &IntegrationHandler{
		brands:   brands,
		rankings: rankings,
		search:   search,
		ai:       ai,
		refresh:  refresh,
		cache:    cache,
	}
}

// bulkFailure is one entry of a bulk search that did not run.
type bulkFailure struct {
	Error string               `json:"error"`
	Query validation.BulkQuery `json:"query"`
}

// Search looks one brand up for a keyword and stores today's position when found.
func (h *IntegrationHandler) Search(c fiber.Ctx) error {
	var body validation.SearchRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	brand, err := h.brands.GetBrandByID(c.Context(), uuid.MustParse(body.BrandID))
	if err != nil {
		return storeError(c, err, "fetch brand")
	}

	pos, err := h.lookup(c.Context(), brand, body.Keyword)
	if err != nil {
		return upstreamError(c, err, "search")
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, pos)
}

// BulkSearch runs a batch of searches one after another. Entries that fail
// are reported in place; the batch itself succeeds.
func (h *IntegrationHandler) BulkSearch(c fiber.Ctx) error {
	var body validation.BulkSearchRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	results := make([]any, 0, len(body.Queries))
	for _, q := range body.Queries {
		req := q.Search()
		if err := req.Validate(); err != nil {
			results = append(results, bulkFailure{Error: "brand_id and keyword required", Query: q})
			continue
		}

		brand, err := h.brands.GetBrandByID(c.Context(), uuid.MustParse(req.BrandID))
		if err != nil {
			msg := err.Error()
			if errors.Is(err, db.ErrBrandNotFound) {
				msg = fmt.Sprintf("Brand %s not found", req.BrandID)
			}
			results = append(results, bulkFailure{Error: msg, Query: q})
			continue
		}

		pos, err := h.lookup(c.Context(), brand, req.Keyword)
		if err != nil {
			results = append(results, bulkFailure{Error: err.Error(), Query: q})
			continue
		}
		results = append(results, pos)
	}
	h.cache.Invalidate(c.Context())

	return jsonSuccess(c, fiber.Map{
		"total":   len(body.Queries),
		"results": results,
	})
}

func (h *IntegrationHandler) lookup(ctx context.Context, brand *models.Brand, keyword string) (*integrations.Position, error) {
	pos, err := h.search.FindPosition(ctx, brand.Name, keyword)
	if err != nil {
		return nil, err
	}
	if pos.Found && pos.Position != nil {
		err := h.rankings.UpsertRanking(ctx, &models.Ranking{
			BrandID:  brand.ID,
			Keyword:  keyword,
			Position: *pos.Position,
			Date:     models.Today(),
		})
		if err != nil {
			return nil, fmt.Errorf("save ranking: %w", err)
		}
	}
	return pos, nil
}

// Usage returns the search API account usage.
func (h *IntegrationHandler) Usage(c fiber.Ctx) error {
	usage, err := h.search.Usage(c.Context())
	if err != nil {
		return upstreamError(c, err, "search")
	}
	return jsonSuccess(c, usage)
}

// TestAI checks the generative-text API key with a trivial prompt.
func (h *IntegrationHandler) TestAI(c fiber.Ctx) error {
	if err := h.ai.TestConnection(c.Context()); err != nil {
		return upstreamError(c, err, "gemini")
	}
	return jsonSuccess(c, fiber.Map{
		"connected": true,
		"message":   "Gemini API connection successful",
	})
}

// CheckCitation asks the AI model about a brand and returns the verdict
// without storing it.
func (h *IntegrationHandler) CheckCitation(c fiber.Ctx) error {
	var body validation.CitationCheckRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := body.Validate(); err != nil {
		return jsonValidationError(c, err)
	}

	brand, err := h.brands.GetBrandByID(c.Context(), uuid.MustParse(body.BrandID))
	if err != nil {
		return storeError(c, err, "fetch brand")
	}

	query := body.Query
	if query == "" {
		query = tracking.ExpandQuery(defaultCitationQuery, brand.Name)
	}

	check, err := h.ai.CheckCitation(c.Context(), brand.Name, query)
	if err != nil {
		return upstreamError(c, err, "gemini")
	}
	return jsonSuccess(c, check)
}

// RefreshCitations queues a citation refresh of every brand, or only of the
// brand named by the optional brand query parameter.
func (h *IntegrationHandler) RefreshCitations(c fiber.Ctx) error {
	brandID, err := brandParam(c)
	if err != nil {
		return paramError(c, err)
	}

	var handle *jobs.Handle
	if brandID == nil {
		handle = h.refresh.Trigger()
	} else {
		brand, err := h.brands.GetBrandByID(c.Context(), *brandID)
		if err != nil {
			return storeError(c, err, "fetch brand")
		}
		handle = h.refresh.TriggerBrand(*brand)
	}

	select {
	case <-handle.Done():
		if err := handle.Err(); err != nil {
			return jsonErrorDetails(c, fiber.StatusServiceUnavailable, "refresh could not be queued", map[string]string{"error": err.Error()})
		}
	default:
	}

	c.Status(fiber.StatusAccepted)
	return jsonSuccess(c, fiber.Map{"message": "Citation refresh queued"})
}
