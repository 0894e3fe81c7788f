package repositories

import (
	"context"

	"cropadvisor/internal/constants"
	"cropadvisor/internal/database"
	. "cropadvisor/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

type DatasetRepository interface {
	Create(ctx context.Context, tx *gorm.DB, dataset *Dataset) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]Dataset, error)
}

type datasetRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewDatasetRepository(cache database.CacheClient) DatasetRepository {
	return &datasetRepository{
		cache: cache,
		log:   logger.New("datasetRepository"),
	}
}

func (r *datasetRepository) Create(ctx context.Context, tx *gorm.DB, dataset *Dataset) error {
	log := r.log.Function("Create")

	if err := gorm.G[Dataset](tx).Create(ctx, dataset); err != nil {
		return log.Err("failed to create dataset", classifyWriteError(err), "userID", dataset.UserID)
	}

	if r.cache != nil {
		err := database.NewCacheBuilder(r.cache, dataset.UserID).
			WithContext(ctx).
			WithHash(constants.DatasetListCachePrefix).
			Delete()
		if err != nil {
			log.Warn("failed to clear dataset cache", "userID", dataset.UserID, "error", err)
		}
	}

	return nil
}

func (r *datasetRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
) ([]Dataset, error) {
	log := r.log.Function("ListByUser")

	if r.cache != nil {
		var cached []Dataset
		found, err := database.NewCacheBuilder(r.cache, userID).
			WithContext(ctx).
			WithHash(constants.DatasetListCachePrefix).
			Get(&cached)
		if err != nil {
			log.Warn("failed to get datasets from cache", "userID", userID, "error", err)
		}
		if found {
			return cached, nil
		}
	}

	datasets, err := gorm.G[Dataset](tx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list datasets", err, "userID", userID)
	}

	if r.cache != nil {
		err = database.NewCacheBuilder(r.cache, userID).
			WithContext(ctx).
			WithHash(constants.DatasetListCachePrefix).
			WithStruct(datasets).
			WithTTL(constants.HistoryCacheExpiry).
			Set()
		if err != nil {
			log.Warn("failed to cache datasets", "userID", userID, "error", err)
		}
	}

	return datasets, nil
}
