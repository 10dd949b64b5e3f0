package broker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/models"
)

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	e := events.Event{
		Type: events.BookingConfirmed,
		Booking: models.Booking{
			ID:          8,
			UserID:      4,
			TableID:     2,
			BookingDate: "2025-06-12",
			TimeSlot:    models.Slot2000,
			GuestsCount: 3,
			Status:      models.StatusConfirmed,
		},
		ActorID: 1,
		At:      at,
	}

	body, err := EncodeEvent(e)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"event": "booking_confirmed",
		"booking_id": 8,
		"user_id": 4,
		"table_id": 2,
		"booking_date": "2025-06-12",
		"time_slot": "20:00",
		"guests_count": 3,
		"status": "confirmed",
		"actor_id": 1,
		"at": "2025-06-10T15:30:00Z"
	}`, string(body))
}

func TestEncodeEventWithoutActor(t *testing.T) {
	body, err := EncodeEvent(events.Event{Type: events.BookingCompleted, Booking: models.Booking{ID: 1}})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.NotContains(t, raw, "actor_id")
	assert.Equal(t, "booking_completed", raw["event"])
}

func TestNewPublisherRequiresURL(t *testing.T) {
	_, err := NewPublisher("", "bookings")
	assert.Error(t, err)
}
