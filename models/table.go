package models

import "time"

// MaxTableCapacity is the largest party a single table may seat.
const MaxTableCapacity = 10

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Number      string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"number"`
	MaxGuests   int       `gorm:"not null" json:"max_guests"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Bookings    []Booking `gorm:"foreignKey:TableID" json:"-"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
