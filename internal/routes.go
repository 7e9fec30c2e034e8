package internal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	cartridgemiddleware "github.com/karloscodes/cartridge/middleware"

	"linkpress/internal/config"
	"linkpress/internal/http"
	"linkpress/internal/http/middleware"
)

// MountAppRoutes mounts all application routes using cartridge's route API.
// The catch-all redirect route is registered last so it never shadows the
// health and API paths.
func MountAppRoutes(srv *cartridge.Server) {
	cfg := config.GetConfig()

	// Helper to conditionally apply rate limiting (only in production).
	// In development/test, rate limiting would interfere with testing.
	conditionalRateLimiter := func(limiter fiber.Handler) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if cfg.IsProduction() {
				return limiter(c)
			}
			return c.Next()
		}
	}

	// Redirect traffic is the public surface; 300/min per IP absorbs bursts
	// from link-in-bio pages while still capping scrapers.
	redirectRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(300),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	// Analytics API is authenticated but still rate limited against
	// key-holding automation hammering the aggregate queries.
	apiRateLimiter := conditionalRateLimiter(cartridgemiddleware.RateLimiter(
		cartridgemiddleware.WithMax(60),
		cartridgemiddleware.WithDuration(time.Minute),
	))

	db := srv.GetDBManager().GetConnection()
	logger := srv.GetLogger()

	redirectConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware:   []fiber.Handler{redirectRateLimiter},
	}

	apiConfig := &cartridge.RouteConfig{
		EnableSecFetchSite: cartridge.Bool(false),
		CustomMiddleware: []fiber.Handler{
			apiRateLimiter,
			middleware.APIKeyAuth(db, logger),
		},
	}

	// === HEALTH ===
	srv.Get("/_health", http.HealthIndexAction)
	srv.Head("/_health", http.HealthIndexAction)

	// === ANALYTICS API ===
	srv.Get("/api/v1/analytics", http.UserAnalyticsAction, apiConfig)
	srv.Get("/api/v1/links/:id/analytics", http.LinkAnalyticsAction, apiConfig)

	// === REDIRECT (catch-all, keep last) ===
	srv.Get("/:code", http.RedirectAction, redirectConfig)
}
