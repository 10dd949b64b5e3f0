package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

// BookingPolicy holds the decisions left to the application rather than the booking rules.
type BookingPolicy struct {
	// StaffAutoConfirm creates bookings made by staff directly as confirmed.
	StaffAutoConfirm bool
	// AdminOverride lets administrators confirm or cancel bookings whose slot has passed.
	AdminOverride bool
}

type BookingService struct {
	DB       *gorm.DB
	Events   *events.Dispatcher
	Location *time.Location
	Policy   BookingPolicy
	// Now is the clock; tests replace it.
	Now func() time.Time
}

func NewBookingService(db *gorm.DB, dispatcher *events.Dispatcher, loc *time.Location, policy BookingPolicy) *BookingService {
	return &BookingService{
		DB:       db,
		Events:   dispatcher,
		Location: loc,
		Policy:   policy,
		Now:      time.Now,
	}
}

// BookingInput is a request for a new booking.
type BookingInput struct {
	TableID         uint   `json:"table_id"`
	BookingDate     string `json:"booking_date"`
	TimeSlot        string `json:"time_slot"`
	GuestsCount     int    `json:"guests_count"`
	SpecialRequests string `json:"special_requests"`
	// UserID books on behalf of another user; staff only. Zero means the actor.
	UserID uint `json:"user_id"`
}

// BookingUpdate changes an existing booking; nil fields keep their current value.
type BookingUpdate struct {
	TableID         *uint   `json:"table_id"`
	BookingDate     *string `json:"booking_date"`
	TimeSlot        *string `json:"time_slot"`
	GuestsCount     *int    `json:"guests_count"`
	SpecialRequests *string `json:"special_requests"`
}

func (s *BookingService) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func (s *BookingService) now() time.Time {
	if s.Now == nil {
		return time.Now().In(s.location())
	}
	return s.Now().In(s.location())
}

// CreateBooking validates in and stores a new booking.
//
// Rules are checked in order and the first violation is returned: required fields, table
// exists and is active, capacity, not in the past, slot free. The slot check is only a
// pre-check; the unique index on occupying bookings decides races, and its violation is
// reported as ErrSlotConflict.
func (s *BookingService) CreateBooking(ctx context.Context, actor Actor, in BookingInput) (*models.Booking, error) {
	switch {
	case in.TableID == 0:
		return nil, newError(ErrMissingField, "table_id", "table is required")
	case strings.TrimSpace(in.BookingDate) == "":
		return nil, newError(ErrMissingField, "booking_date", "booking date is required")
	case strings.TrimSpace(in.TimeSlot) == "":
		return nil, newError(ErrMissingField, "time_slot", "time slot is required")
	case in.GuestsCount == 0:
		return nil, newError(ErrMissingField, "guests_count", "guests count is required")
	}

	date := strings.TrimSpace(in.BookingDate)
	slot, err := s.parseFields(date, in.TimeSlot, in.GuestsCount)
	if err != nil {
		return nil, err
	}

	if actor.UserID == 0 {
		return nil, newError(ErrPermissionDenied, "user", "login required to book a table")
	}
	ownerID := actor.UserID
	if in.UserID != 0 && in.UserID != actor.UserID {
		if !actor.IsStaff() {
			return nil, newError(ErrPermissionDenied, "user_id", "only staff can book on behalf of another user")
		}
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", in.UserID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("look up user: %w", err)
		}
		if count == 0 {
			return nil, newError(ErrNotFound, "user_id", "user %d not found", in.UserID)
		}
		ownerID = in.UserID
	}

	table, err := s.checkSlotRules(s.DB.WithContext(ctx), in.TableID, date, slot, in.GuestsCount, 0)
	if err != nil {
		return nil, err
	}

	status := models.StatusPending
	if actor.IsStaff() && s.Policy.StaffAutoConfirm {
		status = models.StatusConfirmed
	}

	booking := models.Booking{
		UserID:          ownerID,
		TableID:         table.ID,
		BookingDate:     date,
		TimeSlot:        slot,
		GuestsCount:     in.GuestsCount,
		SpecialRequests: strings.TrimSpace(in.SpecialRequests),
		Status:          status,
	}
	if err := s.DB.WithContext(ctx).Create(&booking).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, slotConflict(table, date, slot)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	booking.Table = table

	utils.InfoLogger.Printf("Booking %d created: table %s on %s at %s for %d guests (status=%s)",
		booking.ID, table.Number, date, slot, booking.GuestsCount, booking.Status)
	s.publish(events.BookingCreated, booking, actor)
	return &booking, nil
}

// UpdateBooking re-validates the merged values against every rule, ignoring the booking's
// own row in the conflict check, and saves them atomically. On any error the stored booking
// is left as it was.
func (s *BookingService) UpdateBooking(ctx context.Context, actor Actor, id uint, upd BookingUpdate) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadBooking(tx, id, &booking); err != nil {
			return err
		}
		if !actor.IsStaff() && !actor.owns(&booking) {
			return newError(ErrPermissionDenied, "", "you can only edit your own bookings")
		}
		if booking.Status != models.StatusPending && booking.Status != models.StatusConfirmed {
			return newError(ErrTransition, "status", "a %s booking cannot be edited", booking.Status)
		}
		if booking.IsPast(s.now(), s.location()) {
			return newError(ErrTransition, "booking_date", "a past booking cannot be edited")
		}

		tableID, date, slotStr, guests := booking.TableID, booking.BookingDate, string(booking.TimeSlot), booking.GuestsCount
		if upd.TableID != nil {
			tableID = *upd.TableID
		}
		if upd.BookingDate != nil {
			date = strings.TrimSpace(*upd.BookingDate)
		}
		if upd.TimeSlot != nil {
			slotStr = *upd.TimeSlot
		}
		if upd.GuestsCount != nil {
			guests = *upd.GuestsCount
		}
		switch {
		case tableID == 0:
			return newError(ErrMissingField, "table_id", "table is required")
		case date == "":
			return newError(ErrMissingField, "booking_date", "booking date is required")
		case strings.TrimSpace(slotStr) == "":
			return newError(ErrMissingField, "time_slot", "time slot is required")
		case guests == 0:
			return newError(ErrMissingField, "guests_count", "guests count is required")
		}
		slot, err := s.parseFields(date, slotStr, guests)
		if err != nil {
			return err
		}

		table, err := s.checkSlotRules(tx, tableID, date, slot, guests, booking.ID)
		if err != nil {
			return err
		}

		booking.TableID = table.ID
		booking.BookingDate = date
		booking.TimeSlot = slot
		booking.GuestsCount = guests
		if upd.SpecialRequests != nil {
			booking.SpecialRequests = strings.TrimSpace(*upd.SpecialRequests)
		}
		if err := tx.Save(&booking).Error; err != nil {
			if isUniqueViolation(err) {
				return slotConflict(table, date, slot)
			}
			return fmt.Errorf("update booking: %w", err)
		}
		booking.Table = table
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Booking %d updated: table %d on %s at %s for %d guests",
		booking.ID, booking.TableID, booking.BookingDate, booking.TimeSlot, booking.GuestsCount)
	s.publish(events.BookingUpdated, booking, actor)
	return &booking, nil
}

// parseFields checks the formats once presence is established.
func (s *BookingService) parseFields(date, slot string, guests int) (models.TimeSlot, error) {
	if _, err := models.ParseDate(date, s.location()); err != nil {
		return "", newError(ErrInvalidField, "booking_date", "booking date must be in YYYY-MM-DD format")
	}
	ts, err := models.ParseTimeSlot(strings.TrimSpace(slot))
	if err != nil {
		return "", newError(ErrInvalidField, "time_slot", "time slot %q is not offered", slot)
	}
	if guests < 1 {
		return "", newError(ErrInvalidField, "guests_count", "guests count must be at least 1")
	}
	return ts, nil
}

// checkSlotRules applies table, capacity, time and conflict rules in that order.
// excludeID skips the booking being edited in the conflict check.
func (s *BookingService) checkSlotRules(db *gorm.DB, tableID uint, date string, slot models.TimeSlot, guests int, excludeID uint) (*models.Table, error) {
	var table models.Table
	err := db.Where("id = ? AND is_active = ?", tableID, true).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrTableNotFound, "table_id", "table not found or inactive")
	}
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}

	if guests > table.MaxGuests {
		return nil, newError(ErrCapacityExceeded, "guests_count",
			"guests count (%d) exceeds the capacity of table %s (%d)", guests, table.Number, table.MaxGuests)
	}

	now := s.now()
	today := now.Format(models.DateLayout)
	if date < today {
		return nil, newError(ErrPastDateTime, "booking_date", "cannot book a table for a past date")
	}
	if date == today {
		day, _ := models.ParseDate(date, s.location())
		if !slot.Start(day, s.location()).After(now) {
			return nil, newError(ErrPastDateTime, "time_slot", "cannot book a table for a past time")
		}
	}

	q := db.Model(&models.Booking{}).
		Where("table_id = ? AND booking_date = ? AND time_slot = ? AND status <> ?",
			table.ID, date, slot, models.StatusCancelled)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var taken int64
	if err := q.Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if taken > 0 {
		return nil, slotConflict(&table, date, slot)
	}
	return &table, nil
}

func slotConflict(table *models.Table, date string, slot models.TimeSlot) error {
	return newError(ErrSlotConflict, "time_slot",
		"table %s is already booked on %s at %s", table.Number, date, slot.Label())
}

func (s *BookingService) loadBooking(db *gorm.DB, id uint, out *models.Booking) error {
	err := db.First(out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "booking", "booking %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	return nil
}

func (s *BookingService) publish(eventType string, b models.Booking, actor Actor) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(events.Event{
		Type:    eventType,
		Booking: b,
		ActorID: actor.UserID,
		At:      s.now(),
	})
}
