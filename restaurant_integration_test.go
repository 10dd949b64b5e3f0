package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

const (
	adminPhone    = "+79990000001"
	adminPassword = "admin-pass"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error")
	utils.ConfigureJWT("integration-secret", time.Hour)
	os.Exit(m.Run())
}

type response struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func call(t *testing.T, h http.Handler, method, path, token string, body interface{}) (int, response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var res response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return w.Code, res
}

func setupApp(t *testing.T) *application {
	t.Helper()
	cfg := &config.Config{
		DBDriver:           "sqlite",
		DBDSN:              "file:integration?mode=memory&cache=shared",
		LogLevel:           "error",
		Location:           time.UTC,
		StaffAutoConfirm:   true,
		CompletionInterval: time.Minute,
	}
	db, err := config.InitDB(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedTables(db))
	require.NoError(t, database.SeedMenu(db))
	require.NoError(t, database.EnsureAdmin(db, adminPhone, adminPassword))

	app := newApplication(cfg, db)
	t.Cleanup(app.close)
	return app
}

// TestEndToEndBooking walks a customer booking from availability to completion:
// register, look up free tables, book, lose a race to the same slot, get confirmed by
// the administrator, read the inbox and finally have the booking completed.
func TestEndToEndBooking(t *testing.T) {
	app := setupApp(t)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	app.bookings.Now = func() time.Time { return now }
	const tomorrow = "2025-06-11"

	code, res := call(t, app.router, http.MethodPost, "/register", "", map[string]string{
		"phone_number": "+79991112233", "password": "guest-pass", "password_confirm": "guest-pass", "first_name": "Anna",
	})
	require.Equal(t, http.StatusCreated, code, res.Message)
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &reg))

	code, res = call(t, app.router, http.MethodPost, "/login", "", map[string]string{
		"phone_number": adminPhone, "password": adminPassword,
	})
	require.Equal(t, http.StatusOK, code, res.Message)
	var login struct {
		Token    string `json:"token"`
		UserRole string `json:"user_role"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &login))
	require.Equal(t, models.RoleAdmin, login.UserRole)

	code, res = call(t, app.router, http.MethodGet, "/bookings/availability?date="+tomorrow+"&min_guests=5", "", nil)
	require.Equal(t, http.StatusOK, code, res.Message)
	var avail struct {
		Tables []services.TableAvailability `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &avail))
	require.Len(t, avail.Tables, 4)
	var tableID uint
	for _, ta := range avail.Tables {
		assert.GreaterOrEqual(t, ta.Table.MaxGuests, 5)
		if ta.Table.Number == "3" {
			tableID = ta.Table.ID
		}
	}
	require.NotZero(t, tableID)

	booking := map[string]interface{}{
		"table_id": tableID, "booking_date": tomorrow, "time_slot": "18:00", "guests_count": 4,
		"special_requests": "Window seat",
	}
	code, res = call(t, app.router, http.MethodPost, "/bookings", reg.Token, booking)
	require.Equal(t, http.StatusCreated, code, res.Message)
	var created models.Booking
	require.NoError(t, json.Unmarshal(res.Data, &created))
	assert.Equal(t, models.StatusPending, created.Status)

	code, res = call(t, app.router, http.MethodPost, "/bookings", login.Token, booking)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "slot_conflict", res.Code)

	code, res = call(t, app.router, http.MethodPost, "/admin/bookings/"+itoa(created.ID)+"/confirm", login.Token, nil)
	require.Equal(t, http.StatusOK, code, res.Message)

	app.dispatcher.Wait()
	code, res = call(t, app.router, http.MethodGet, "/notifications", reg.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var inbox []models.Notification
	require.NoError(t, json.Unmarshal(res.Data, &inbox))
	require.Len(t, inbox, 2)
	titles := []string{inbox[0].Title, inbox[1].Title}
	assert.ElementsMatch(t, []string{"Booking received", "Booking confirmed"}, titles)

	// the evening after the booking
	now = time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, app.monitor.RunOnce(context.Background()))

	code, res = call(t, app.router, http.MethodGet, "/bookings/"+itoa(created.ID), reg.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var done models.Booking
	require.NoError(t, json.Unmarshal(res.Data, &done))
	assert.Equal(t, models.StatusCompleted, done.Status)
	app.dispatcher.Wait()
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
