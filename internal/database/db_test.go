package database_test

import (
	"testing"
	"time"

	"cafestock-backend/internal/database"
	"cafestock-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
}

func TestMigrate_ReportItemsRelation(t *testing.T) {
	// The DailyReport -> ReportItem association hangs off ReportID, not the
	// conventional DailyReportID; a report must load its items through it.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	rep := models.DailyReport{
		ReportDate: time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC),
		BaristaID:  1,
		Items: []models.ReportItem{
			{PositionID: 1, EndingStock: 5},
			{PositionID: 2, EndingStock: 3},
		},
	}
	require.NoError(t, db.Create(&rep).Error)

	var loaded models.DailyReport
	require.NoError(t, db.Preload("Items").First(&loaded, rep.ID).Error)
	assert.Len(t, loaded.Items, 2)
	for _, it := range loaded.Items {
		assert.Equal(t, rep.ID, it.ReportID)
	}
}
