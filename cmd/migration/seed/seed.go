package seed

import (
	"errors"

	"cropadvisor/config"
	. "cropadvisor/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const seedUserID = "seed-farmer"

func stringPtr(s string) *string {
	return &s
}

// Seed loads a small development history for a fixed user id. It is a no-op
// outside development and when the user already has a dataset.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")

	if config.Environment != "development" {
		log.Info("Skipping seed outside development", "environment", config.Environment)
		return nil
	}

	var existing Dataset
	err := db.First(&existing, "user_id = ?", seedUserID).Error
	if err == nil {
		log.Info("Seed data already present", "userID", seedUserID)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return log.Err("failed to check for seed data", err)
	}

	log.Info("Seeding development data", "userID", seedUserID)

	return db.Transaction(func(tx *gorm.DB) error {
		dataset := Dataset{
			UserID:      seedUserID,
			Name:        "Rift Valley soil survey",
			Description: "Sample soil tests from smallholder farms",
			ColabURL:    "https://colab.research.google.com/drive/seed-notebook",
		}
		if err := tx.Create(&dataset).Error; err != nil {
			return log.Err("failed to create dataset", err)
		}

		recommendations := []CropRecommendation{
			{
				UserID:           seedUserID,
				DatasetID:        &dataset.ID,
				SoilData:         datatypes.JSON(`{"soilType":"Loamy"}`),
				ClimateData:      datatypes.JSON(`{"location":"Nakuru, Kenya","rainfall":800}`),
				RecommendedCrops: []string{"Maize (Zea mays)", "Beans", "Irish Potatoes"},
				RecommendationText: "1. Maize (Zea mays): Plant at the start of the long rains.\n" +
					"2. Beans: Intercrop with maize to fix nitrogen.\n" +
					"3. Irish Potatoes: Suits the cool highland climate.",
				RecommendationSwahili: stringPtr(
					"1. Mahindi: Panda mwanzoni mwa mvua za masika.\n" +
						"2. Maharagwe: Changanya na mahindi.\n" +
						"3. Viazi: Vinafaa hali ya hewa ya baridi.",
				),
			},
			{
				UserID:             seedUserID,
				SoilData:           datatypes.JSON(`{"nitrogen":40,"phosphorus":25,"potassium":35,"ph":6.5,"temperature":24,"humidity":70}`),
				ClimateData:        datatypes.JSON(`{"rainfall":600,"season":"short rains","location":"Machakos"}`),
				RecommendedCrops:   []string{"Sorghum", "Green Grams"},
				RecommendationText: "1. Sorghum: Drought tolerant.\n2. Green Grams: Matures quickly.",
			},
		}
		for i := range recommendations {
			if err := tx.Create(&recommendations[i]).Error; err != nil {
				return log.Err("failed to create recommendation", err)
			}
		}

		log.Info("Seed complete", "datasets", 1, "recommendations", len(recommendations))
		return nil
	})
}
