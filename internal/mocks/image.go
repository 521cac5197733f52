package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recetario/backend/internal/service"
)

// MockImageService is a mock implementation of the image upload service
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Upload(ctx context.Context, kind string, r io.Reader) (*service.UploadedImage, error) {
	args := m.Called(ctx, kind, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadedImage), args.Error(1)
}

func (m *MockImageService) MaxBytes() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

var (
	_ service.IAuthService     = (*MockAuthService)(nil)
	_ service.IRecipeService   = (*MockRecipeService)(nil)
	_ service.IFavoriteService = (*MockFavoriteService)(nil)
	_ service.IImageService    = (*MockImageService)(nil)
)
