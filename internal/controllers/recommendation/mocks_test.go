package recommendationController

import (
	"context"

	. "cropadvisor/internal/models"
	"cropadvisor/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Identity), args.Error(1)
}

type MockCompletionService struct {
	mock.Mock
}

func (m *MockCompletionService) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

func (m *MockCompletionService) Model() string {
	return "test-model"
}

func (m *MockCompletionService) Ready() error {
	args := m.Called()
	return args.Error(0)
}

type MockCropRecommendationRepository struct {
	mock.Mock
}

func (m *MockCropRecommendationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	recommendation *CropRecommendation,
) error {
	args := m.Called(ctx, tx, recommendation)
	return args.Error(0)
}

func (m *MockCropRecommendationRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
	limit int,
) ([]CropRecommendation, error) {
	args := m.Called(ctx, tx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CropRecommendation), args.Error(1)
}

func (m *MockCropRecommendationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
	id uuid.UUID,
) (*CropRecommendation, error) {
	args := m.Called(ctx, tx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CropRecommendation), args.Error(1)
}
