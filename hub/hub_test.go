package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/models"
)

func serveHub(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Register(conn, "staff")
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					h.Unregister(conn)
					return
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNotifyReachesEveryClient(t *testing.T) {
	h := New()
	srv := serveHub(t, h)
	a := dial(t, srv)
	b := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 2 }, time.Second, 10*time.Millisecond)

	booking := models.Booking{ID: 11, TableID: 3, BookingDate: "2025-06-11", TimeSlot: models.Slot1800, Status: models.StatusPending}
	require.NoError(t, h.Notify(context.Background(), events.Event{Type: events.BookingCreated, Booking: booking}))

	for _, conn := range []*websocket.Conn{a, b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var got struct {
			Event string         `json:"event"`
			Data  models.Booking `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, events.BookingCreated, got.Event)
		assert.EqualValues(t, 11, got.Data.ID)
		assert.Equal(t, models.Slot1800, got.Data.TimeSlot)
	}
}

func TestClosedClientIsDropped(t *testing.T) {
	h := New()
	srv := serveHub(t, h)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		h.Broadcast(context.Background(), Message{Event: "ping"})
		return h.Clients() == 0
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "websocket", h.Name())
}

func TestStalledClientDoesNotBlockOthers(t *testing.T) {
	h := New()
	srv := serveHub(t, h)
	live := dial(t, srv)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	// a client whose writer never drains its queue
	stalled := &websocket.Conn{}
	h.mutex.Lock()
	h.clients[stalled] = &client{conn: stalled, role: "staff", send: make(chan []byte)}
	h.mutex.Unlock()

	start := time.Now()
	require.NoError(t, h.Broadcast(context.Background(), Message{Event: events.BookingCancelled}))
	assert.Less(t, time.Since(start), writeWait)
	assert.Equal(t, 1, h.Clients())

	live.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := live.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), events.BookingCancelled)
}
