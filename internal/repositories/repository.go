package repositories

import (
	"cropadvisor/internal/database"
)

type Repository struct {
	CropRecommendation CropRecommendationRepository
	Dataset            DatasetRepository
}

func New(db database.DB) Repository {
	return Repository{
		CropRecommendation: NewCropRecommendationRepository(db.Cache.User),
		Dataset:            NewDatasetRepository(db.Cache.User),
	}
}
