package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

// testNow is 15:30 on 10 June 2025; the 12:00 and 14:00 slots of that day have started.
var testNow = time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

const (
	today    = "2025-06-10"
	tomorrow = "2025-06-11"
	past     = "2025-06-09"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:services_%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Booking{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Notification{},
	))
	return db
}

func newTestService(t *testing.T) *BookingService {
	t.Helper()
	svc := NewBookingService(newTestDB(t), nil, time.UTC, BookingPolicy{})
	svc.Now = func() time.Time { return testNow }
	return svc
}

func createTable(t *testing.T, db *gorm.DB, number string, maxGuests int, active bool) models.Table {
	t.Helper()
	table := models.Table{Number: number, MaxGuests: maxGuests, IsActive: true}
	require.NoError(t, db.Create(&table).Error)
	if !active {
		require.NoError(t, db.Model(&table).Update("is_active", false).Error)
		table.IsActive = false
	}
	return table
}

func createUser(t *testing.T, db *gorm.DB, phone, role string) models.User {
	t.Helper()
	user := models.User{PhoneNumber: phone, Password: "x", Role: role, IsActive: true, FirstName: "Test"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// insertBooking stores a booking directly, bypassing every rule.
func insertBooking(t *testing.T, db *gorm.DB, userID, tableID uint, date string, slot models.TimeSlot, status models.BookingStatus) models.Booking {
	t.Helper()
	b := models.Booking{
		UserID:      userID,
		TableID:     tableID,
		BookingDate: date,
		TimeSlot:    slot,
		GuestsCount: 2,
		Status:      status,
	}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func customer(u models.User) Actor { return Actor{UserID: u.ID, Role: u.Role} }
