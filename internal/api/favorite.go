package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/response"
	"github.com/pageza/recetario/backend/internal/service"
)

type FavoriteHandler struct {
	favorites service.IFavoriteService
	logger    *slog.Logger
}

func NewFavoriteHandler(favorites service.IFavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	favorites.Use(middleware.RequireAuth())
	{
		favorites.GET("", h.ListFavorites)
		favorites.POST("", h.ToggleFavorite)
		favorites.GET("/:recipe_id", h.IsFavorite)
	}
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	favorites, err := h.favorites.List(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, "favorites retrieved", favorites)
}

func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.MsgInvalidJSON, nil)
		return
	}
	recipeID, ok := service.ParseID(req["recipe_id"])
	if !ok {
		response.BadRequest(c, service.MsgRecipeIDRequired, map[string]string{"recipe_id": service.MsgRecipeIDRequired})
		return
	}

	result, err := h.favorites.Toggle(c.Request.Context(), userID, recipeID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	message := "recipe added to favorites"
	if result.Action == models.FavoriteRemoved {
		message = "recipe removed from favorites"
	}
	response.Success(c, message, result)
}

func (h *FavoriteHandler) IsFavorite(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	recipeID, ok := service.ParseIDString(c.Param("recipe_id"))
	if !ok {
		response.BadRequest(c, MsgInvalidRecipeID, nil)
		return
	}

	is, err := h.favorites.IsFavorite(c.Request.Context(), userID, recipeID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, "favorite status", gin.H{"recipe_id": recipeID, "is_favorite": is})
}
