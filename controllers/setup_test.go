package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	testNow  = time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	today    = "2025-06-10"
	tomorrow = "2025-06-11"
	dbSeq    int64
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.ConfigureJWT("controllers-secret", time.Hour)
	utils.InitLogger("error")
}

type testApp struct {
	t        *testing.T
	db       *gorm.DB
	bookings *services.BookingService
	hub      *hub.Hub
	router   *gin.Engine
}

func newApp(t *testing.T) *testApp {
	t.Helper()
	dsn := fmt.Sprintf("file:controllers_%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	clock := func() time.Time { return testNow }
	bookings := services.NewBookingService(db, nil, time.UTC, services.BookingPolicy{StaffAutoConfirm: true})
	bookings.Now = clock
	tables := services.NewTableService(db, time.UTC)
	tables.Now = clock

	h := hub.New()
	r := router.SetupRouter(router.Deps{
		DB:       db,
		Bookings: bookings,
		Tables:   tables,
		Hub:      h,
	})
	return &testApp{t: t, db: db, bookings: bookings, hub: h, router: r}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func (a *testApp) user(phone, role, password string) (models.User, string) {
	a.t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(a.t, err)
	u := models.User{PhoneNumber: phone, FirstName: "Test", Password: string(hashed), Role: role, IsActive: true}
	require.NoError(a.t, a.db.Create(&u).Error)
	token, err := utils.GenerateToken(u.ID, u.Role)
	require.NoError(a.t, err)
	return u, token
}

func (a *testApp) table(number string, maxGuests int) models.Table {
	a.t.Helper()
	tbl := models.Table{Number: number, MaxGuests: maxGuests, IsActive: true}
	require.NoError(a.t, a.db.Create(&tbl).Error)
	return tbl
}
