package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
)

// InboxNotifier stores a Notification row for the booking owner.
type InboxNotifier struct {
	DB *gorm.DB
}

func NewInboxNotifier(db *gorm.DB) *InboxNotifier {
	return &InboxNotifier{DB: db}
}

func (n *InboxNotifier) Name() string { return "inbox" }

func (n *InboxNotifier) Notify(ctx context.Context, e events.Event) error {
	title, message := DescribeEvent(e)
	if title == "" {
		return nil
	}
	id := e.Booking.ID
	row := models.Notification{
		UserID:    e.Booking.UserID,
		BookingID: &id,
		Title:     title,
		Message:   message,
	}
	if err := n.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// DescribeEvent renders a short title and message for a booking event.
func DescribeEvent(e events.Event) (string, string) {
	b := e.Booking
	when := fmt.Sprintf("%s, %s", b.BookingDate, b.TimeSlot.Label())
	table := fmt.Sprintf("table #%d", b.TableID)
	if b.Table != nil {
		table = "table " + b.Table.Number
	}

	switch e.Type {
	case events.BookingCreated:
		if b.Status == models.StatusConfirmed {
			return "Booking confirmed", fmt.Sprintf("Your booking of %s on %s for %d guests is confirmed.", table, when, b.GuestsCount)
		}
		return "Booking received", fmt.Sprintf("Your booking of %s on %s for %d guests is awaiting confirmation.", table, when, b.GuestsCount)
	case events.BookingUpdated:
		return "Booking changed", fmt.Sprintf("Your booking is now %s on %s for %d guests.", table, when, b.GuestsCount)
	case events.BookingConfirmed:
		return "Booking confirmed", fmt.Sprintf("Your booking of %s on %s is confirmed.", table, when)
	case events.BookingCancelled:
		return "Booking cancelled", fmt.Sprintf("Your booking of %s on %s was cancelled.", table, when)
	case events.BookingCompleted:
		return "Thank you for your visit", fmt.Sprintf("Your booking of %s on %s is completed.", table, when)
	}
	return "", ""
}

// Notifications lists a user's inbox, newest first.
func Notifications(ctx context.Context, db *gorm.DB, userID uint, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	q := db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rows, nil
}
