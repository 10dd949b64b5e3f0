package services

import "github.com/yeremiapane/restaurant-booking/models"

// Actor is whoever triggers a booking operation. Handlers build it from the
// authenticated request; background jobs use SystemActor.
type Actor struct {
	UserID uint
	Role   string
}

// SystemActor acts on behalf of the application itself (e.g. the completion monitor).
var SystemActor = Actor{Role: models.RoleAdmin}

func (a Actor) IsStaff() bool { return models.IsStaffRole(a.Role) }

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func (a Actor) owns(b *models.Booking) bool {
	return a.UserID != 0 && a.UserID == b.UserID
}
