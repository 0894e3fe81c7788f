package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type CropRecommendation struct {
	BaseRecordModel
	UserID                string         `gorm:"type:text;not null;index"         json:"user_id"`
	DatasetID             *uuid.UUID     `gorm:"type:uuid;index"                  json:"dataset_id"`
	SoilData              datatypes.JSON `gorm:"not null"                         json:"soil_data"`
	ClimateData           datatypes.JSON `gorm:"not null"                         json:"climate_data"`
	RecommendedCrops      pq.StringArray `gorm:"type:text[];not null"             json:"recommended_crops"`
	RecommendationText    string         `gorm:"type:text;not null"               json:"recommendation_text"`
	RecommendationSwahili *string        `gorm:"type:text"                        json:"recommendation_swahili"`
}

func (CropRecommendation) TableName() string {
	return "crop_recommendations"
}
