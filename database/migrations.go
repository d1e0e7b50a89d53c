package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"articlehub/models"
)

func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	logger.Debug("running database migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.Topic{},
		&models.FurtherReading{},
	)

	if err != nil {
		logger.Error("error running migrations", zap.Error(err))
		return err
	}

	logger.Debug("migrations completed")
	return nil
}
