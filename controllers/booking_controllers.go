package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// DefaultBookingsPerPage is the staff booking list page size.
const DefaultBookingsPerPage = 20

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{Bookings: bookings}
}

// GetAvailability -> every active table seating at least min_guests with its slots for date
func (bc *BookingController) GetAvailability(c *gin.Context) {
	minGuests := services.DefaultMinGuests
	if raw := c.Query("min_guests"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, errors.New("min_guests must be a positive number"))
			return
		}
		minGuests = n
	}

	tables, err := bc.Bookings.GetAvailability(c.Request.Context(), c.Query("date"), minGuests)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table availability", gin.H{
		"date":       c.Query("date"),
		"min_guests": minGuests,
		"tables":     tables,
	})
}

// CreateBooking -> books a table for the logged-in user (staff may book for another user)
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var in services.BookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := bc.Bookings.CreateBooking(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Booking created", booking)
}

func (bc *BookingController) GetMyBookings(c *gin.Context) {
	actor := actorFrom(c)
	bookings, err := bc.Bookings.ListUserBookings(c.Request.Context(), actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My bookings", bookings)
}

func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.GetBooking(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var upd services.BookingUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := bc.Bookings.UpdateBooking(c.Request.Context(), actorFrom(c), id, upd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking updated", booking)
}

func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.Cancel(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", booking)
}

func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	booking, err := bc.Bookings.Confirm(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking confirmed", booking)
}

// SetStatus -> staff moves a booking to any status the status machine allows
func (bc *BookingController) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := bc.Bookings.SetStatus(c.Request.Context(), actorFrom(c), id, models.BookingStatus(body.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking status updated", booking)
}

func filterFrom(c *gin.Context) (services.BookingFilter, error) {
	f := services.BookingFilter{
		Status:   models.BookingStatus(c.Query("status")),
		Date:     c.Query("date"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		TimeSlot: models.TimeSlot(c.Query("time_slot")),
	}
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, errors.New("table_id must be a number")
		}
		f.TableID = uint(id)
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, errors.New("user_id must be a number")
		}
		f.UserID = uint(id)
	}
	return f, nil
}

// ListBookings -> staff booking list with filters, newest first
func (bc *BookingController) ListBookings(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	f.Page = pageFrom(c, DefaultBookingsPerPage)

	bookings, total, err := bc.Bookings.ListBookings(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bookings", paged(bookings, total, f.Page))
}

// GetDayGrid -> tables x slots board for one day
func (bc *BookingController) GetDayGrid(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = bc.today()
	}
	rows, err := bc.Bookings.GetDayGrid(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	slots := make([]gin.H, 0, len(models.AllTimeSlots()))
	for _, s := range models.AllTimeSlots() {
		slots = append(slots, gin.H{"time_slot": s, "label": s.Label()})
	}
	utils.RespondJSON(c, http.StatusOK, "Booking grid", gin.H{
		"date":  date,
		"slots": slots,
		"rows":  rows,
	})
}

func (bc *BookingController) today() string {
	loc := bc.Bookings.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if bc.Bookings.Now != nil {
		now = bc.Bookings.Now
	}
	return now().In(loc).Format(models.DateLayout)
}
