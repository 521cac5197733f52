package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/response"
	"github.com/pageza/recetario/backend/internal/service"
)

// MsgStorageUnavailable is returned when no image bucket is configured.
const MsgStorageUnavailable = "image storage is not configured"

// multipart framing allowance on top of the image size limit
const multipartOverhead = 64 << 10

// ImageHandler handles image uploads
type ImageHandler struct {
	images service.IImageService
	logger *slog.Logger
}

// NewImageHandler creates a new image handler. images may be nil when storage is not configured.
func NewImageHandler(images service.IImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/uploads/images", middleware.RequireAuth(), h.UploadImage)
}

// UploadImage stores the multipart "image" file under the "kind" prefix (recipes or avatars).
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		response.Error(c, http.StatusServiceUnavailable, MsgStorageUnavailable, nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.images.MaxBytes()+multipartOverhead)
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(c, "image is too large", map[string]string{"image": "image is too large"})
			return
		}
		response.BadRequest(c, "image is required", map[string]string{"image": "image is required"})
		return
	}
	defer file.Close()

	kind := c.DefaultPostForm("kind", service.ImageKindRecipe)
	img, err := h.images.Upload(c.Request.Context(), kind, file)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	response.Created(c, "image uploaded successfully", img)
}
