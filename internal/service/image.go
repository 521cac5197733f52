package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/models"
)

// Upload kinds, used as the object key prefix.
const (
	ImageKindRecipe = "recipes"
	ImageKindAvatar = "avatars"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectUploader is the part of the S3 client used for uploads.
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// UploadedImage describes a stored image.
type UploadedImage struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ImageService stores user uploaded images in S3
type ImageService struct {
	client    ObjectUploader
	bucket    string
	publicURL func(key string) string
	maxBytes  int64
	logger    *slog.Logger
}

// NewImageService creates an ImageService backed by the configured bucket
func NewImageService(s3Config *config.S3Config, maxBytes int64, logger *slog.Logger) *ImageService {
	return NewImageServiceWithUploader(s3Config.Client, s3Config.BucketName, s3Config.PublicURL, maxBytes, logger)
}

// NewImageServiceWithUploader creates an ImageService with an explicit uploader
func NewImageServiceWithUploader(client ObjectUploader, bucket string, publicURL func(string) string, maxBytes int64, logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{
		client:    client,
		bucket:    bucket,
		publicURL: publicURL,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// MaxBytes is the largest accepted upload.
func (s *ImageService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload validates and stores an image of the given kind. The content type is
// sniffed from the data rather than trusted from the client.
func (s *ImageService) Upload(ctx context.Context, kind string, r io.Reader) (*UploadedImage, error) {
	if kind != ImageKindRecipe && kind != ImageKindAvatar {
		return nil, models.NewValidationError("kind must be recipes or avatars", map[string]string{"kind": "kind must be recipes or avatars"})
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("read upload: %w", err))
	}
	if len(data) == 0 {
		return nil, models.NewValidationError("image is required", map[string]string{"image": "image is required"})
	}
	if int64(len(data)) > s.maxBytes {
		msg := fmt.Sprintf("image must not exceed %d bytes", s.maxBytes)
		return nil, models.NewValidationError(msg, map[string]string{"image": msg})
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		msg := "image must be a jpeg, png, gif or webp file"
		return nil, models.NewValidationError(msg, map[string]string{"image": msg})
	}

	key := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("upload to S3: %w", err))
	}

	img := &UploadedImage{
		Key:         key,
		URL:         s.publicURL(key),
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	s.logger.Info("image uploaded", "key", key, "size", img.Size)
	return img, nil
}
