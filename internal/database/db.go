package database

import (
	"cafestock-backend/internal/config"
	"cafestock-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}

	if err := Migrate(DB); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	log.Info().Msg("database connected, migration complete")
}

// Migrate runs AutoMigrate for every model. Split out so package tests can
// run it against an in-memory sqlite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Position{},
		&models.InventoryBatch{},
		&models.DailyReport{},
		&models.ReportItem{},
		&models.Notification{},
	)
}
