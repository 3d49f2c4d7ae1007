// Package migration keeps the schema in step with the models.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"stridesync/internal/infrastructure/persistence/models"
	"stridesync/internal/shared/logger"
)

// AutoMigrateModels lists every model the schema is derived from.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.IntegrationCredentialModel{},
		&models.WorkoutModel{},
	}
}

// Run applies gorm AutoMigrate for all models.
func Run(db *gorm.DB, log logger.Interface) error {
	models := AutoMigrateModels()
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Infow("schema migration completed", "models", len(models))
	return nil
}
