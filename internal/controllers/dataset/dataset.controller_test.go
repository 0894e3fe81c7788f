package datasetController

import (
	"context"
	"errors"
	"testing"

	"cropadvisor/internal/database"
	. "cropadvisor/internal/models"
	"cropadvisor/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) Create(ctx context.Context, tx *gorm.DB, dataset *Dataset) error {
	args := m.Called(ctx, tx, dataset)
	return args.Error(0)
}

func (m *MockDatasetRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
) ([]Dataset, error) {
	args := m.Called(ctx, tx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Dataset), args.Error(1)
}

func newTestController(repo *MockDatasetRepository) *DatasetController {
	return &DatasetController{repo: repo, db: database.DB{}, log: logger.New("datasetController")}
}

var farmer = &types.Identity{UserID: "farmer-1"}

func TestCreateDataset(t *testing.T) {
	repo := &MockDatasetRepository{}
	repo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(d *Dataset) bool {
		return d.UserID == "farmer-1" &&
			d.Name == "Rift Valley soils" &&
			d.ColabURL == "https://colab.research.google.com/drive/abc"
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*Dataset).ID = uuid.New()
	}).Return(nil).Once()

	dataset, err := newTestController(repo).CreateDataset(context.Background(), farmer, CreateDatasetRequest{
		Name:        "  Rift Valley soils ",
		Description: "Samples from 2024",
		ColabURL:    "https://colab.research.google.com/drive/abc",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, dataset.ID)
	assert.Equal(t, "Samples from 2024", dataset.Description)
	repo.AssertExpectations(t)
}

func TestCreateDataset_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  CreateDatasetRequest
	}{
		{name: "missing name", req: CreateDatasetRequest{ColabURL: "https://colab.research.google.com/x"}},
		{name: "missing url", req: CreateDatasetRequest{Name: "Soils"}},
		{name: "relative url", req: CreateDatasetRequest{Name: "Soils", ColabURL: "/drive/abc"}},
		{name: "unsupported scheme", req: CreateDatasetRequest{Name: "Soils", ColabURL: "ftp://files.example.com/a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockDatasetRepository{}
			_, err := newTestController(repo).CreateDataset(context.Background(), farmer, tt.req)
			assert.ErrorIs(t, err, ErrInvalidDataset)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateDataset_RequiresIdentity(t *testing.T) {
	_, err := newTestController(&MockDatasetRepository{}).CreateDataset(
		context.Background(),
		nil,
		CreateDatasetRequest{Name: "Soils", ColabURL: "https://colab.research.google.com/x"},
	)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListDatasets(t *testing.T) {
	repo := &MockDatasetRepository{}
	repo.On("ListByUser", mock.Anything, mock.Anything, "farmer-1").
		Return([]Dataset{{Name: "Soils"}}, nil).Once()

	datasets, err := newTestController(repo).ListDatasets(context.Background(), farmer)
	require.NoError(t, err)
	assert.Len(t, datasets, 1)

	storeErr := errors.New("connection reset")
	repo.On("ListByUser", mock.Anything, mock.Anything, "farmer-2").Return(nil, storeErr).Once()
	_, err = newTestController(repo).ListDatasets(context.Background(), &types.Identity{UserID: "farmer-2"})
	assert.ErrorIs(t, err, storeErr)
}
