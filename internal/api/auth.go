package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/response"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
)

// SessionManager issues and revokes the session cookie tokens.
type SessionManager interface {
	middleware.SessionResolver
	Create(ctx context.Context, user models.PublicUser) (string, *session.Session, error)
	Refresh(ctx context.Context, sess *session.Session, user models.PublicUser) error
	Destroy(ctx context.Context, token string) error
	TTL() time.Duration
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth     service.IAuthService
	sessions SessionManager
	cookie   CookieConfig
	limiter  *middleware.RateLimiter
	logger   *slog.Logger
}

func NewAuthHandler(auth service.IAuthService, sessions SessionManager, cookie CookieConfig, loginLimiter *middleware.RateLimiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		cookie:   cookie,
		limiter:  loginLimiter,
		logger:   logger,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.limiter.Middleware(middleware.ByClientIP), h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Me)
		auth.PUT("/profile", middleware.RequireAuth(), h.UpdateProfile)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.MsgInvalidJSON, nil)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	if !h.startSession(c, *user) {
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	response.Created(c, "user registered successfully", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.MsgInvalidJSON, nil)
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	// drop any session the client already held
	if old, err := c.Cookie(h.cookie.Name); err == nil && old != "" {
		if err := h.sessions.Destroy(c.Request.Context(), old); err != nil {
			h.logger.Warn("failed to destroy previous session", "error", err)
		}
	}
	if !h.startSession(c, *user) {
		return
	}

	response.Success(c, "login successful", user)
}

// Logout always succeeds, with or without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		if err := h.sessions.Destroy(c.Request.Context(), token); err != nil {
			h.logger.Warn("failed to destroy session", "error", err)
		}
	}
	h.clearCookie(c)
	response.Success(c, "logged out successfully", nil)
}

// Me reads the user fresh from the database. A session whose user is gone is destroyed.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	user, err := h.auth.Current(c.Request.Context(), userID)
	if err != nil {
		if appErr, ok := models.AsAppError(err); ok && appErr.Code == models.CodeUnauthorized {
			if err := h.sessions.Destroy(c.Request.Context(), middleware.SessionToken(c)); err != nil {
				h.logger.Warn("failed to destroy session", "error", err)
			}
			h.clearCookie(c)
		}
		response.FromError(c, h.logger, err)
		return
	}

	response.Success(c, "current user", user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.MsgInvalidJSON, nil)
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	if sess := middleware.CurrentSession(c); sess != nil {
		if err := h.sessions.Refresh(c.Request.Context(), sess, *user); err != nil {
			h.logger.Warn("failed to refresh session snapshot", "user_id", userID, "error", err)
		}
	}

	response.Success(c, "profile updated successfully", user)
}

// startSession creates a session and sets the cookie. It writes the error response
// itself and reports false on failure.
func (h *AuthHandler) startSession(c *gin.Context, user models.PublicUser) bool {
	token, _, err := h.sessions.Create(c.Request.Context(), user)
	if err != nil {
		response.FromError(c, h.logger, models.NewInternalError(err))
		return false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.sessions.TTL().Seconds()), "/", "", h.cookie.Secure, true)
	return true
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}
