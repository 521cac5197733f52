package api

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/models"
	"github.com/pageza/recetario/backend/internal/response"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/validation"
)

// Recipe handler messages.
const (
	MsgRecipeIDRequired = "recipe id is required"
	MsgInvalidRecipeID  = "recipe id must be a positive integer"
)

type RecipeHandler struct {
	recipes service.IRecipeService
	limiter *middleware.RateLimiter
	logger  *slog.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, creationLimiter *middleware.RateLimiter, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		limiter: creationLimiter,
		logger:  logger,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", middleware.RequireAuth(), h.limiter.Middleware(middleware.ByUser), h.CreateRecipe)
		recipes.PUT("/:id", middleware.RequireAuth(), h.UpdateRecipe)
		recipes.DELETE("/:id", middleware.RequireAuth(), h.DeleteRecipe)
		recipes.PUT("", h.MissingID)
		recipes.DELETE("", h.MissingID)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	filter, fields := parseRecipeFilter(c)
	if len(fields) > 0 {
		response.BadRequest(c, service.MsgValidationFailed, fields)
		return
	}

	recipes, err := h.recipes.Index(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, "recipes retrieved", recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := recipeIDParam(c)
	if !ok {
		return
	}
	viewerID, _ := middleware.UserID(c)

	recipe, err := h.recipes.Show(c.Request.Context(), id, viewerID)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, "recipe retrieved", recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	patch, fields, ok := bindRecipePatch(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), userID, patch, fields)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Created(c, "recipe created successfully", recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeIDParam(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)
	patch, fields, ok := bindRecipePatch(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), userID, id, patch, fields)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, "recipe updated successfully", recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeIDParam(c)
	if !ok {
		return
	}
	userID, _ := middleware.UserID(c)

	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Success(c, "recipe deleted successfully", nil)
}

// MissingID answers update and delete requests that name no recipe.
func (h *RecipeHandler) MissingID(c *gin.Context) {
	response.BadRequest(c, MsgRecipeIDRequired, nil)
}

func recipeIDParam(c *gin.Context) (uint, bool) {
	id, ok := service.ParseIDString(c.Param("id"))
	if !ok {
		response.BadRequest(c, MsgInvalidRecipeID, nil)
		return 0, false
	}
	return id, true
}

func bindRecipePatch(c *gin.Context) (models.RecipePatch, validation.FieldErrors, bool) {
	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, response.MsgInvalidJSON, nil)
		return models.RecipePatch{}, nil, false
	}
	patch, fields, err := service.DecodeRecipePatch(body)
	if err != nil {
		response.BadRequest(c, response.MsgInvalidJSON, nil)
		return models.RecipePatch{}, nil, false
	}
	return patch, fields, true
}

// parseRecipeFilter reads the search filters from the query string.
func parseRecipeFilter(c *gin.Context) (models.RecipeFilter, validation.FieldErrors) {
	fields := validation.FieldErrors{}
	filter := models.RecipeFilter{
		Query:      strings.TrimSpace(c.Query("query")),
		Category:   strings.TrimSpace(c.Query("category")),
		Difficulty: strings.TrimSpace(c.Query("difficulty")),
	}

	if v := c.Query("max_time"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields.Add("max_time", "max_time must be a non-negative integer")
		} else {
			filter.MaxTime = &n
		}
	}
	if v := c.Query("user_id"); v != "" {
		id, ok := service.ParseIDString(v)
		if !ok {
			fields.Add("user_id", "user_id must be a positive integer")
		} else {
			filter.UserID = &id
		}
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fields.Add("limit", "limit must be a positive integer")
		} else {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields.Add("offset", "offset must be a non-negative integer")
		} else {
			filter.Offset = n
		}
	}
	return filter, fields
}
