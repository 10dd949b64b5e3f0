package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSlot(t *testing.T) {
	slot, err := ParseTimeSlot("18:00")
	require.NoError(t, err)
	assert.Equal(t, Slot1800, slot)

	slot, err = ParseTimeSlot("20:00:00")
	require.NoError(t, err)
	assert.Equal(t, Slot2000, slot)

	for _, bad := range []string{"", "19:00", "10:00", "18", "6pm", "18:00:99", "18:00xyz", "18:00:0"} {
		_, err := ParseTimeSlot(bad)
		assert.Error(t, err, bad)
	}
}

func TestTimeSlotBounds(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	day, err := ParseDate("2025-06-01", loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 1, 18, 0, 0, 0, loc), Slot1800.Start(day, loc))
	assert.Equal(t, time.Date(2025, 6, 1, 20, 0, 0, 0, loc), Slot1800.End(day, loc))
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), Slot2200.End(day, loc))

	assert.Equal(t, "12:00-14:00", Slot1200.Label())
	assert.Equal(t, "22:00-00:00", Slot2200.Label())
	assert.Len(t, AllTimeSlots(), 6)
}

func TestBookingIsPast(t *testing.T) {
	loc := time.UTC
	b := Booking{BookingDate: "2025-06-01", TimeSlot: Slot1800}

	assert.False(t, b.IsPast(time.Date(2025, 6, 1, 19, 59, 0, 0, loc), loc))
	assert.True(t, b.IsPast(time.Date(2025, 6, 1, 20, 0, 0, 0, loc), loc))

	start, err := b.SlotStart(loc)
	require.NoError(t, err)
	assert.Equal(t, 18, start.Hour())
}

func TestBookingBeforeSaveTracksActiveSlot(t *testing.T) {
	b := Booking{}
	require.NoError(t, b.BeforeSave(nil))
	assert.Equal(t, StatusPending, b.Status)
	require.NotNil(t, b.ActiveSlot)
	assert.True(t, *b.ActiveSlot)

	b.Status = StatusCancelled
	require.NoError(t, b.BeforeSave(nil))
	assert.Nil(t, b.ActiveSlot)

	b.Status = StatusCompleted
	require.NoError(t, b.BeforeSave(nil))
	assert.NotNil(t, b.ActiveSlot)
}
