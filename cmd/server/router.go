package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adlift/adlift-api/internal/api"
	apiMiddleware "github.com/adlift/adlift-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	campaignHandler := api.NewCampaignHandler(app.campaignService)
	generationHandler := api.NewGenerationHandler(app.generationService)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	rateLimitMiddleware := apiMiddleware.NewRateLimitMiddleware(app.limiter)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Campaign management
			r.Post("/campaigns", campaignHandler.CreateCampaign)
			r.Get("/campaigns", campaignHandler.ListCampaigns)
			r.Get("/campaigns/{id}", campaignHandler.GetCampaign)
			r.Put("/campaigns/{id}", campaignHandler.UpdateCampaign)
			r.Delete("/campaigns/{id}", campaignHandler.DeleteCampaign)

			// Generation submission is rate limited per user; the jobs it
			// spawns are billed against the upstream model
			r.Group(func(r chi.Router) {
				r.Use(rateLimitMiddleware.Limit)
				r.Post("/generate/campaign", generationHandler.GenerateCampaign)
				r.Post("/generate/keywords", generationHandler.GenerateKeywords)
				r.Post("/generate/recommendations", generationHandler.GenerateRecommendations)
			})

			// Job tracking
			r.Get("/jobs", generationHandler.ListJobs)
			r.Get("/jobs/{id}", generationHandler.GetJob)
			r.Post("/jobs/{id}/cancel", generationHandler.CancelJob)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
