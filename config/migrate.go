package config

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bellapacxx/bingo-sessions/models"
	"github.com/bellapacxx/bingo-sessions/utils/logger"
)

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Player{},
		&models.Match{},
		&models.ScoreEvent{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("✅ Database migration completed")
	return nil
}
