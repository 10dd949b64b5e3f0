package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestCanTransition(t *testing.T) {
	all := []models.BookingStatus{models.StatusPending, models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted}
	allowed := map[[2]models.BookingStatus]bool{
		{models.StatusPending, models.StatusConfirmed}:   true,
		{models.StatusPending, models.StatusCancelled}:   true,
		{models.StatusConfirmed, models.StatusCancelled}: true,
		{models.StatusConfirmed, models.StatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]models.BookingStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestSetStatusPermissions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	table := createTable(t, svc.DB, "1", 4, true)
	owner := createUser(t, svc.DB, "+79990000101", models.RoleCustomer)
	stranger := createUser(t, svc.DB, "+79990000102", models.RoleCustomer)
	staff := createUser(t, svc.DB, "+79990000103", models.RoleStaff)

	b := insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1800, models.StatusPending)

	_, err := svc.Confirm(ctx, customer(owner), b.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Cancel(ctx, customer(stranger), b.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	confirmed, err := svc.Confirm(ctx, customer(staff), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, confirmed.Status)

	cancelled, err := svc.Cancel(ctx, customer(owner), b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	var stored models.Booking
	require.NoError(t, svc.DB.First(&stored, b.ID).Error)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	assert.Nil(t, stored.ActiveSlot)
}

func TestSetStatusTerminalStates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	table := createTable(t, svc.DB, "1", 4, true)
	owner := createUser(t, svc.DB, "+79990000104", models.RoleCustomer)
	staff := createUser(t, svc.DB, "+79990000105", models.RoleStaff)

	cancelled := insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1200, models.StatusCancelled)
	for _, to := range []models.BookingStatus{models.StatusPending, models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled} {
		_, err := svc.SetStatus(ctx, customer(staff), cancelled.ID, to)
		assert.ErrorIs(t, err, ErrTransition, "cancelled -> %s", to)
	}

	_, err := svc.SetStatus(ctx, customer(staff), cancelled.ID, "seated")
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = svc.SetStatus(ctx, customer(staff), 777, models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusRespectsSlotTime(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	table := createTable(t, svc.DB, "1", 4, true)
	owner := createUser(t, svc.DB, "+79990000106", models.RoleCustomer)
	staff := createUser(t, svc.DB, "+79990000107", models.RoleStaff)
	admin := createUser(t, svc.DB, "+79990000108", models.RoleAdmin)

	upcoming := insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1800, models.StatusConfirmed)
	_, err := svc.SetStatus(ctx, customer(staff), upcoming.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrTransition)

	// 12:00-14:00 today ended before 15:30
	ended := insertBooking(t, svc.DB, owner.ID, table.ID, today, models.Slot1200, models.StatusConfirmed)
	done, err := svc.SetStatus(ctx, customer(staff), ended.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	stale := insertBooking(t, svc.DB, owner.ID, table.ID, past, models.Slot1800, models.StatusPending)
	_, err = svc.Confirm(ctx, customer(staff), stale.ID)
	assert.ErrorIs(t, err, ErrTransition)
	_, err = svc.Cancel(ctx, customer(owner), stale.ID)
	assert.ErrorIs(t, err, ErrTransition)
	_, err = svc.Confirm(ctx, customer(admin), stale.ID)
	assert.ErrorIs(t, err, ErrTransition)

	svc.Policy.AdminOverride = true
	_, err = svc.Confirm(ctx, customer(staff), stale.ID)
	assert.ErrorIs(t, err, ErrTransition)
	overridden, err := svc.Confirm(ctx, customer(admin), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, overridden.Status)
}

func TestCompletedBookingStillOccupiesSlot(t *testing.T) {
	svc := newTestService(t)
	table := createTable(t, svc.DB, "1", 4, true)
	owner := createUser(t, svc.DB, "+79990000109", models.RoleCustomer)
	insertBooking(t, svc.DB, owner.ID, table.ID, today, models.Slot1200, models.StatusCompleted)

	dup := models.Booking{UserID: owner.ID, TableID: table.ID, BookingDate: today, TimeSlot: models.Slot1200, GuestsCount: 2}
	err := svc.DB.Create(&dup).Error
	assert.True(t, isUniqueViolation(err))
}
