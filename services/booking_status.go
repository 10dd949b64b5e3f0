package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

var transitions = map[models.BookingStatus][]models.BookingStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled, models.StatusCompleted},
}

// CanTransition reports whether the status machine allows from -> to.
// Cancelled and completed are terminal.
func CanTransition(from, to models.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SetStatus moves a booking through the status machine.
//
// Owners may only cancel; confirming and completing are staff actions. Confirm and cancel
// need the slot to still be ahead (administrators may override when the policy allows it);
// completing needs the slot to be over.
func (s *BookingService) SetStatus(ctx context.Context, actor Actor, id uint, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, newError(ErrInvalidField, "status", "unknown status %q", status)
	}

	var booking models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.loadBooking(tx, id, &booking); err != nil {
			return err
		}

		switch {
		case actor.IsStaff():
		case actor.owns(&booking) && status == models.StatusCancelled:
		default:
			return newError(ErrPermissionDenied, "status", "you cannot set this booking to %s", status)
		}

		if booking.Status == status {
			return newError(ErrTransition, "status", "booking is already %s", status)
		}
		if !CanTransition(booking.Status, status) {
			return newError(ErrTransition, "status", "cannot change a %s booking to %s", booking.Status, status)
		}

		past := booking.IsPast(s.now(), s.location())
		if status == models.StatusCompleted {
			if !past {
				return newError(ErrTransition, "status", "a booking can only be completed after its slot has ended")
			}
		} else if past && !(actor.IsAdmin() && s.Policy.AdminOverride) {
			return newError(ErrTransition, "status", "a past booking cannot be %s", status)
		}

		booking.Status = status
		if err := tx.Save(&booking).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(ErrSlotConflict, "status", "the slot is held by another booking")
			}
			return fmt.Errorf("save booking status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Booking %d status changed to %s by user %d", booking.ID, booking.Status, actor.UserID)
	s.publish(events.StatusEvent(booking.Status), booking, actor)
	return &booking, nil
}

func (s *BookingService) Confirm(ctx context.Context, actor Actor, id uint) (*models.Booking, error) {
	return s.SetStatus(ctx, actor, id, models.StatusConfirmed)
}

func (s *BookingService) Cancel(ctx context.Context, actor Actor, id uint) (*models.Booking, error) {
	return s.SetStatus(ctx, actor, id, models.StatusCancelled)
}
