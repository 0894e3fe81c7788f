package repositories

import (
	"context"
	"errors"

	"cropadvisor/internal/constants"
	"cropadvisor/internal/database"
	. "cropadvisor/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CropRecommendationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, recommendation *CropRecommendation) error
	ListByUser(
		ctx context.Context,
		tx *gorm.DB,
		userID string,
		limit int,
	) ([]CropRecommendation, error)
	GetByID(
		ctx context.Context,
		tx *gorm.DB,
		userID string,
		id uuid.UUID,
	) (*CropRecommendation, error)
}

type cropRecommendationRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewCropRecommendationRepository(cache database.CacheClient) CropRecommendationRepository {
	return &cropRecommendationRepository{
		cache: cache,
		log:   logger.New("cropRecommendationRepository"),
	}
}

func (r *cropRecommendationRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	recommendation *CropRecommendation,
) error {
	log := r.log.Function("Create")

	if err := gorm.G[CropRecommendation](tx).Create(ctx, recommendation); err != nil {
		return log.Err(
			"failed to create crop recommendation",
			classifyWriteError(err),
			"userID", recommendation.UserID,
		)
	}

	r.clearHistoryCache(ctx, recommendation.UserID)
	return nil
}

// ListByUser returns the newest records first. The cache holds the first
// MaxHistoryLimit rows per user and smaller limits are served from it.
func (r *cropRecommendationRepository) ListByUser(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
	limit int,
) ([]CropRecommendation, error) {
	log := r.log.Function("ListByUser")
	limit = clampLimit(limit)

	if r.cache != nil {
		var cached []CropRecommendation
		found, err := database.NewCacheBuilder(r.cache, userID).
			WithContext(ctx).
			WithHash(constants.RecommendationHistoryCachePrefix).
			Get(&cached)
		if err != nil {
			log.Warn("failed to get recommendation history from cache", "userID", userID, "error", err)
		}
		if found {
			return truncate(cached, limit), nil
		}
	}

	recommendations, err := gorm.G[CropRecommendation](tx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Limit(constants.MaxHistoryLimit).
		Find(ctx)
	if err != nil {
		return nil, log.Err("failed to list crop recommendations", err, "userID", userID)
	}

	if r.cache != nil {
		err = database.NewCacheBuilder(r.cache, userID).
			WithContext(ctx).
			WithHash(constants.RecommendationHistoryCachePrefix).
			WithStruct(recommendations).
			WithTTL(constants.HistoryCacheExpiry).
			Set()
		if err != nil {
			log.Warn("failed to cache recommendation history", "userID", userID, "error", err)
		}
	}

	return truncate(recommendations, limit), nil
}

func (r *cropRecommendationRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	userID string,
	id uuid.UUID,
) (*CropRecommendation, error) {
	log := r.log.Function("GetByID")

	recommendation, err := gorm.G[CropRecommendation](tx).
		Where("id = ? AND user_id = ?", id, userID).
		First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get crop recommendation", err, "id", id)
	}

	return &recommendation, nil
}

func (r *cropRecommendationRepository) clearHistoryCache(ctx context.Context, userID string) {
	if r.cache == nil {
		return
	}

	err := database.NewCacheBuilder(r.cache, userID).
		WithContext(ctx).
		WithHash(constants.RecommendationHistoryCachePrefix).
		Delete()
	if err != nil {
		r.log.Function("clearHistoryCache").
			Warn("failed to clear recommendation history cache", "userID", userID, "error", err)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultHistoryLimit
	}
	if limit > constants.MaxHistoryLimit {
		return constants.MaxHistoryLimit
	}
	return limit
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
