package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/models"
)

// Messages shared by several handlers.
const (
	MsgUnauthorized     = "you must be logged in"
	MsgServerError      = "server error"
	MsgMethodNotAllowed = "method not allowed"
	MsgNotFound         = "resource not found"
	MsgTooManyRequests  = "too many requests"
	MsgInvalidJSON      = "request body must be valid JSON"
)

// Envelope is the body of a successful response. Data is always present, null when empty.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorEnvelope is the body of a failed response. Errors is null without field detail.
type ErrorEnvelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 response and stops the handler chain
func Success(c *gin.Context, message string, data interface{}) {
	c.AbortWithStatusJSON(http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 response
func Created(c *gin.Context, message string, data interface{}) {
	c.AbortWithStatusJSON(http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response with optional per-field messages
func Error(c *gin.Context, status int, message string, errs map[string]string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string, errs map[string]string) {
	Error(c, http.StatusBadRequest, message, errs)
}

// Unauthorized sends a 401 error response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 error response
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 error response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// InternalError sends a 500 error response without exposing the cause
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, MsgServerError, nil)
}

// StatusFor maps an application error code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case models.CodeValidation:
		return http.StatusBadRequest
	case models.CodeConflict:
		return http.StatusConflict
	case models.CodeUnauthorized:
		return http.StatusUnauthorized
	case models.CodeForbidden:
		return http.StatusForbidden
	case models.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes exactly one envelope for err. Errors that are not classified
// application errors are logged and reported as a generic 500.
func FromError(c *gin.Context, logger *slog.Logger, err error) {
	if appErr, ok := models.AsAppError(err); ok && appErr.Code != models.CodeInternal {
		Error(c, StatusFor(appErr.Code), appErr.Message, appErr.Fields)
		return
	}

	if logger == nil {
		logger = slog.Default()
	}
	cause := err
	if appErr, ok := models.AsAppError(err); ok && appErr.Err != nil {
		cause = appErr.Err
	}
	if ctxErr := c.Request.Context().Err(); ctxErr != nil && errors.Is(cause, ctxErr) {
		logger.Warn("request cancelled", "path", c.Request.URL.Path, "error", cause)
	} else {
		logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", cause)
	}
	InternalError(c)
}
