package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestGetBookingVisibility(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	table := createTable(t, svc.DB, "1", 4, true)
	owner := createUser(t, svc.DB, "+79990000201", models.RoleCustomer)
	stranger := createUser(t, svc.DB, "+79990000202", models.RoleCustomer)
	staff := createUser(t, svc.DB, "+79990000203", models.RoleStaff)
	b := insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1800, models.StatusPending)

	got, err := svc.GetBooking(ctx, customer(owner), b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, owner.PhoneNumber, got.User.PhoneNumber)

	_, err = svc.GetBooking(ctx, customer(staff), b.ID)
	assert.NoError(t, err)

	_, err = svc.GetBooking(ctx, customer(stranger), b.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.GetBooking(ctx, customer(owner), 5000)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStatsAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	table := createTable(t, svc.DB, "1", 4, true)
	owner := createUser(t, svc.DB, "+79990000204", models.RoleCustomer)
	insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1200, models.StatusPending)
	insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1400, models.StatusConfirmed)
	insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1600, models.StatusConfirmed)
	insertBooking(t, svc.DB, owner.ID, table.ID, tomorrow, models.Slot1800, models.StatusCancelled)

	stats, err := svc.UserStats(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, BookingStats{Total: 4, Confirmed: 2, Pending: 1}, stats)

	list, err := svc.ListUserBookings(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, models.Slot1800, list[0].TimeSlot)
	assert.NotNil(t, list[0].Table)
}

func TestListBookingsFiltersAndPages(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	t1 := createTable(t, svc.DB, "1", 4, true)
	t2 := createTable(t, svc.DB, "2", 4, true)
	u := createUser(t, svc.DB, "+79990000205", models.RoleCustomer)
	for _, slot := range models.AllTimeSlots() {
		insertBooking(t, svc.DB, u.ID, t1.ID, tomorrow, slot, models.StatusPending)
	}
	insertBooking(t, svc.DB, u.ID, t2.ID, "2025-06-12", models.Slot1800, models.StatusConfirmed)

	all, total, err := svc.ListBookings(ctx, BookingFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	assert.Len(t, all, 7)

	page, total, err := svc.ListBookings(ctx, BookingFilter{TableID: t1.ID, Page: Page{Number: 2, Size: 4}})
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Len(t, page, 2)

	confirmed, total, err := svc.ListBookings(ctx, BookingFilter{Status: models.StatusConfirmed})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, t2.ID, confirmed[0].TableID)

	ranged, _, err := svc.ListBookings(ctx, BookingFilter{DateFrom: "2025-06-12", DateTo: "2025-06-30"})
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	bySlot, _, err := svc.ListBookings(ctx, BookingFilter{Date: tomorrow, TimeSlot: models.Slot2200})
	require.NoError(t, err)
	assert.Len(t, bySlot, 1)

	_, _, err = svc.ListBookings(ctx, BookingFilter{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestGetDayGrid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	t10 := createTable(t, svc.DB, "10", 4, true)
	t2 := createTable(t, svc.DB, "2", 4, true)
	off := createTable(t, svc.DB, "1", 4, false)
	u := createUser(t, svc.DB, "+79990000206", models.RoleCustomer)
	held := insertBooking(t, svc.DB, u.ID, t10.ID, tomorrow, models.Slot2000, models.StatusConfirmed)
	insertBooking(t, svc.DB, u.ID, t2.ID, tomorrow, models.Slot2000, models.StatusCancelled)

	rows, err := svc.GetDayGrid(ctx, tomorrow)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, t2.ID, rows[0].Table.ID)
	assert.Equal(t, t10.ID, rows[1].Table.ID)
	assert.Equal(t, off.ID, rows[2].Table.ID)

	cell := rows[1].Cells[4]
	assert.Equal(t, models.Slot2000, cell.TimeSlot)
	require.NotNil(t, cell.Booking)
	assert.Equal(t, held.ID, cell.Booking.ID)
	assert.Nil(t, rows[0].Cells[4].Booking)

	_, err = svc.GetDayGrid(ctx, "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestDashboardStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	t1 := createTable(t, svc.DB, "1", 4, true)
	t2 := createTable(t, svc.DB, "2", 4, true)
	createTable(t, svc.DB, "3", 4, false)
	u := createUser(t, svc.DB, "+79990000207", models.RoleCustomer)
	insertBooking(t, svc.DB, u.ID, t1.ID, today, models.Slot1800, models.StatusConfirmed)
	insertBooking(t, svc.DB, u.ID, t2.ID, today, models.Slot1800, models.StatusPending)
	insertBooking(t, svc.DB, u.ID, t1.ID, today, models.Slot2000, models.StatusCancelled)

	stats, err := svc.DashboardStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, today, stats.Date)
	assert.EqualValues(t, 3, stats.TotalTables)
	assert.EqualValues(t, 2, stats.ActiveTables)
	assert.EqualValues(t, 1, stats.ByStatus[models.StatusConfirmed])
	assert.EqualValues(t, 1, stats.ByStatus[models.StatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[models.StatusCancelled])
	assert.EqualValues(t, 0, stats.ByStatus[models.StatusCompleted])

	require.Len(t, stats.Slots, 6)
	assert.EqualValues(t, 2, stats.Slots[3].Booked)
	assert.InDelta(t, 1.0, stats.Slots[3].Ratio, 0.001)
	assert.EqualValues(t, 0, stats.Slots[4].Booked)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 9))
	assert.Equal(t, 1, TotalPages(9, 9))
	assert.Equal(t, 2, TotalPages(10, 9))
	assert.Equal(t, 1, TotalPages(50, 0))
}
