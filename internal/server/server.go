package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/api"
	"github.com/pageza/recetario/backend/internal/database"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/repository"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	cfg    *config.Config
	logger *slog.Logger
}

// New wires repositories, services and routes. images may be nil when no bucket is configured.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, images service.IImageService, logger *slog.Logger) *Server {
	if cfg.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	users := repository.NewUserRepository(db, cfg.BcryptCost)
	recipes := repository.NewRecipeRepository(db)
	favorites := repository.NewFavoriteRepository(db)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	deps := api.Dependencies{
		Auth:      service.NewAuthService(users),
		Recipes:   service.NewRecipeService(recipes, logger),
		Favorites: service.NewFavoriteService(favorites, recipes),
		Images:    images,
		Sessions:  session.NewManager(session.NewRedisStore(rdb), cfg.SessionSecret, cfg.SessionTTL),
		Cookie: api.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
		},
		LoginLimiter:  middleware.NewLoginRateLimiter(rdb, cfg.RateLimitLogin, logger),
		RecipeLimiter: middleware.NewRecipeCreationRateLimiter(rdb, cfg.RateLimitRecipeCreation, logger),
		HealthChecks: map[string]api.HealthCheck{
			"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Logger: logger,
	}
	api.RegisterRoutes(router, deps)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean shutdown,
// including when Shutdown ran before Start.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.http.Addr, "env", string(s.cfg.Env))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
