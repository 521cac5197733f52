package api

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/observability"
	"github.com/pageza/recetario/backend/internal/response"
	"github.com/pageza/recetario/backend/internal/service"
)

// Version is reported by the health endpoint.
const Version = "v1.0.0"

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators the routes are built from. Images and the
// rate limiters may be nil.
type Dependencies struct {
	Auth          service.IAuthService
	Recipes       service.IRecipeService
	Favorites     service.IFavoriteService
	Images        service.IImageService
	Sessions      SessionManager
	Cookie        CookieConfig
	LoginLimiter  *middleware.RateLimiter
	RecipeLimiter *middleware.RateLimiter
	HealthChecks  map[string]HealthCheck
	Logger        *slog.Logger
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, response.MsgMethodNotAllowed, nil)
	})
	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.MsgNotFound)
	})

	// Health check endpoint (no auth required)
	router.GET("/health", Health(deps.HealthChecks))
	router.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.LoadSession(deps.Sessions, deps.Cookie.Name, logger))

	NewAuthHandler(deps.Auth, deps.Sessions, deps.Cookie, deps.LoginLimiter, logger).RegisterRoutes(v1)
	NewRecipeHandler(deps.Recipes, deps.RecipeLimiter, logger).RegisterRoutes(v1)
	NewFavoriteHandler(deps.Favorites, logger).RegisterRoutes(v1)
	NewImageHandler(deps.Images, logger).RegisterRoutes(v1)
}

// Health returns the health status of the API and its dependencies
func Health(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		healthy := true
		dependencies := make(map[string]string, len(checks))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				healthy = false
				dependencies[name] = "unavailable"
				continue
			}
			dependencies[name] = "ok"
		}

		data := gin.H{
			"status":       "healthy",
			"version":      Version,
			"dependencies": dependencies,
		}
		if !healthy {
			data["status"] = "degraded"
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, response.Envelope{
				Success: false,
				Message: "Recetario API is degraded",
				Data:    data,
			})
			return
		}
		response.Success(c, "Recetario API is running", data)
	}
}
