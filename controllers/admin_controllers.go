package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type AdminController struct {
	Bookings *services.BookingService
	Hub      *hub.Hub
}

func NewAdminController(bookings *services.BookingService, h *hub.Hub) *AdminController {
	return &AdminController{Bookings: bookings, Hub: h}
}

// GetDashboardStats -> per-status counts, table counts and slot occupancy for ?date= (default today)
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Bookings.DashboardStats(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	live := 0
	if ac.Hub != nil {
		live = ac.Hub.Clients()
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", gin.H{
		"stats":        stats,
		"live_clients": live,
	})
}
