package server

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/handlers"
	"brandwatch/internal/handlers/api"
	"brandwatch/internal/middleware"
)

// Store is the persistence every route needs. *db.DB satisfies it.
type Store interface {
	api.BrandStore
	api.RankingStore
	api.CitationStore
	api.ReviewStore
	handlers.Pinger
	handlers.UserStore
	middleware.UserLookup
}

// Deps are the services the routes are built from.
type Deps struct {
	Store     Store
	Dashboard api.DashboardService
	Cache     api.Invalidator
	Queue     api.Submitter
	Fetcher   api.BrandFetcher
	Search    api.SearchClient
	AI        api.AIClient
	Refresh   api.RefreshTrigger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, deps Deps) error {
	probeHandler := handlers.NewProbeHandler(deps.Store)
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)

	// Reads stay public; writes need a session once OIDC is configured.
	guard := func(c fiber.Ctx) error { return c.Next() }
	if s.Cfg.AuthEnabled() {
		authHandler, err := handlers.NewAuthHandler(ctx, s.Cfg, deps.Store)
		if err != nil {
			return err
		}
		authMiddleware := middleware.NewAuthMiddleware(deps.Store)

		s.App.Get("/auth/login", authHandler.Login)
		s.App.Get("/auth/callback", authHandler.Callback)
		s.App.Get("/auth/logout", authHandler.Logout)
		s.App.Get("/api/me", authMiddleware.RequireAuth, api.Me)

		guard = authMiddleware.RequireAuthForWrites
	} else {
		slog.Warn("OIDC_ISSUER not set, API writes do not require sign-in")
	}

	registerAPI(s.App.Group("/api", guard), deps)
	return nil
}

func registerAPI(r fiber.Router, deps Deps) {
	brandHandler := api.NewBrandHandler(deps.Store, deps.Fetcher, deps.Queue, deps.Cache)
	rankingHandler := api.NewRankingHandler(deps.Store, deps.Store, deps.Cache)
	citationHandler := api.NewCitationHandler(deps.Store, deps.Cache)
	reviewHandler := api.NewReviewHandler(deps.Store, deps.Cache)
	dashboardHandler := api.NewDashboardHandler(deps.Dashboard)
	integrationHandler := api.NewIntegrationHandler(deps.Store, deps.Store, deps.Search, deps.AI, deps.Refresh, deps.Cache)

	r.Get("/brands", brandHandler.List)
	r.Post("/brands", brandHandler.Create)
	r.Get("/brands/:id", brandHandler.Get)
	r.Put("/brands/:id", brandHandler.Update)
	r.Patch("/brands/:id", brandHandler.Patch)
	r.Delete("/brands/:id", brandHandler.Delete)

	// Static segments are registered before /:id.
	r.Get("/rankings/summary", rankingHandler.Summary)
	r.Get("/rankings/trends/:brandID", rankingHandler.Trends)
	r.Get("/rankings", rankingHandler.List)
	r.Post("/rankings", rankingHandler.Create)
	r.Get("/rankings/:id", rankingHandler.Get)
	r.Put("/rankings/:id", rankingHandler.Update)
	r.Delete("/rankings/:id", rankingHandler.Delete)

	r.Get("/citations/summary", citationHandler.Summary)
	r.Get("/citations/breakdown", citationHandler.Breakdown)
	r.Get("/citations", citationHandler.List)
	r.Post("/citations", citationHandler.Create)
	r.Get("/citations/:id", citationHandler.Get)
	r.Put("/citations/:id", citationHandler.Update)
	r.Delete("/citations/:id", citationHandler.Delete)

	r.Get("/reviews/summary", reviewHandler.Summary)
	r.Get("/reviews", reviewHandler.List)
	r.Post("/reviews", reviewHandler.Create)
	r.Get("/reviews/:id", reviewHandler.Get)
	r.Put("/reviews/:id", reviewHandler.Update)
	r.Delete("/reviews/:id", reviewHandler.Delete)

	r.Get("/dashboard/overview", dashboardHandler.Overview)
	r.Get("/dashboard/export", dashboardHandler.Export)

	r.Post("/integrations/search", integrationHandler.Search)
	r.Post("/integrations/bulk-search", integrationHandler.BulkSearch)
	r.Get("/integrations/usage", integrationHandler.Usage)
	r.Get("/integrations/gemini/test", integrationHandler.TestAI)
	r.Post("/integrations/gemini/check-citation", integrationHandler.CheckCitation)
	r.Post("/integrations/refresh-citations", integrationHandler.RefreshCitations)
}
