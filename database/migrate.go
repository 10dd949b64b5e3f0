package database

import (
	"fmt"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema, including the unique index that keeps one
// occupying booking per table, date and slot.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Booking{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("Database migrated")
	return nil
}
