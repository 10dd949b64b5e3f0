package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Occupies reports whether a booking in this status holds its slot.
// Only cancelled bookings release it.
func (s BookingStatus) Occupies() bool {
	return s != StatusCancelled
}

// Booking reserves one table for one date and slot.
//
// ActiveSlot is TRUE while the booking occupies its slot and NULL once it is cancelled.
// Together with table, date and slot it forms a unique index, so the database rejects a
// second occupying booking while any number of cancelled rows may coexist.
type Booking struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"not null;index" json:"user_id"`
	User            *User         `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	TableID         uint          `gorm:"not null;uniqueIndex:idx_bookings_active_slot,priority:1" json:"table_id"`
	Table           *Table        `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"table,omitempty"`
	BookingDate     string        `gorm:"type:varchar(10);not null;index;uniqueIndex:idx_bookings_active_slot,priority:2" json:"booking_date"`
	TimeSlot        TimeSlot      `gorm:"type:varchar(5);not null;uniqueIndex:idx_bookings_active_slot,priority:3" json:"time_slot"`
	ActiveSlot      *bool         `gorm:"uniqueIndex:idx_bookings_active_slot,priority:4" json:"-"`
	GuestsCount     int           `gorm:"not null" json:"guests_count"`
	SpecialRequests string        `gorm:"type:text" json:"special_requests,omitempty"`
	Status          BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updated_at"`
}

// BeforeSave keeps ActiveSlot in step with Status on every insert and full update.
func (b *Booking) BeforeSave(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.Status.Occupies() {
		active := true
		b.ActiveSlot = &active
	} else {
		b.ActiveSlot = nil
	}
	return nil
}

// SlotStart returns when the booked slot begins.
func (b *Booking) SlotStart(loc *time.Location) (time.Time, error) {
	day, err := ParseDate(b.BookingDate, loc)
	if err != nil {
		return time.Time{}, err
	}
	return b.TimeSlot.Start(day, loc), nil
}

// IsPast reports whether the slot end has elapsed at now.
func (b *Booking) IsPast(now time.Time, loc *time.Location) bool {
	day, err := ParseDate(b.BookingDate, loc)
	if err != nil {
		return false
	}
	return !now.Before(b.TimeSlot.End(day, loc))
}
