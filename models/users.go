package models

import (
	"regexp"
	"strings"
	"time"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{10,15}$`)

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber string    `gorm:"type:varchar(17);uniqueIndex;not null" json:"phone_number"`
	Email       string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	FirstName   string    `gorm:"type:varchar(30)" json:"first_name"`
	LastName    string    `gorm:"type:varchar(30)" json:"last_name"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	Role        string    `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	Bookings    []Booking `gorm:"foreignKey:UserID" json:"-"`
	DateJoined  time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsStaff is true for staff members and administrators.
func (u *User) IsStaff() bool {
	return IsStaffRole(u.Role)
}

func IsStaffRole(role string) bool {
	return role == RoleStaff || role == RoleAdmin
}

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleStaff || role == RoleAdmin
}

// NormalizePhoneNumber keeps the digits and coerces local numbers to the +7 country code.
func NormalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := b.String()
	if len(n) == 11 && strings.HasPrefix(n, "8") {
		n = "7" + n[1:]
	}
	if len(n) == 10 && !strings.HasPrefix(n, "7") {
		n = "7" + n
	}
	if len(n) == 11 && !strings.HasPrefix(n, "7") {
		n = "7" + n
	}
	return "+" + n
}

// ValidPhoneNumber checks a normalised number, e.g. "+79991234567".
func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}
