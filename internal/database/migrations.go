package database

import (
	"fmt"

	"cropadvisor/internal/models"
)

// ModelsToMigrate lists every table owned by the service in dependency order.
var ModelsToMigrate = []any{
	&models.Dataset{},
	&models.CropRecommendation{},
}

func (s *DB) MigrateModels() error {
	log := s.log.Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range ModelsToMigrate {
		if err := s.SQL.AutoMigrate(model); err != nil {
			return log.Err("failed to migrate model", err, "model", fmt.Sprintf("%T", model))
		}
	}

	log.Info("Database migration completed")
	return nil
}
