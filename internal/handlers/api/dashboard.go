package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"brandwatch/internal/models"
)

// DashboardService builds the dashboard read models.
type DashboardService interface {
	Overview(ctx context.Context, dates models.DateRange) (*models.Dashboard, error)
	Export(ctx context.Context, brandID *uuid.UUID) (*models.Export, error)
}

// DashboardHandler serves the dashboard and data export.
type DashboardHandler struct {
	svc DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Overview returns headline numbers for the optional date range plus chart data.
func (h *DashboardHandler) Overview(c fiber.Ctx) error {
	dates, err := dateParams(c)
	if err != nil {
		return paramError(c, err)
	}

	d, err := h.svc.Overview(c.Context(), dates)
	if err != nil {
		return storeError(c, err, "build dashboard")
	}
	return jsonSuccess(c, d)
}

// Export dumps every record, or one brand's when ?brand is set.
func (h *DashboardHandler) Export(c fiber.Ctx) error {
	brand, err := brandParam(c)
	if err != nil {
		return paramError(c, err)
	}

	export, err := h.svc.Export(c.Context(), brand)
	if err != nil {
		return storeError(c, err, "export data")
	}
	return jsonSuccess(c, export)
}
