package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"github.com/yeremiapane/restaurant-booking/models"
)

const exportSheet = "Bookings"

var exportHeader = []interface{}{
	"ID", "Date", "Time", "Table", "Guests", "Status", "Guest name", "Phone", "Special requests", "Created at",
}

// ExportBookings -> xlsx download of the bookings matching the list filters (no paging)
func (bc *BookingController) ExportBookings(c *gin.Context) {
	f, err := filterFrom(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	bookings, _, err := bc.Bookings.ListBookings(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	xl, err := BuildBookingsWorkbook(bookings)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer xl.Close()

	name := "bookings.xlsx"
	if f.DateFrom != "" || f.DateTo != "" {
		name = fmt.Sprintf("bookings_%s_%s.xlsx", f.DateFrom, f.DateTo)
	} else if f.Date != "" {
		name = fmt.Sprintf("bookings_%s.xlsx", f.Date)
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Status(http.StatusOK)
	c.Writer.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := xl.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// BuildBookingsWorkbook lays the bookings out one per row under a bold header.
func BuildBookingsWorkbook(bookings []models.Booking) (*excelize.File, error) {
	xl := excelize.NewFile()
	if err := xl.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := xl.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := xl.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		xl.SetRowStyle(exportSheet, 1, 1, bold)
	}

	for i, b := range bookings {
		table, guest, phone := "", "", ""
		if b.Table != nil {
			table = b.Table.Number
		}
		if b.User != nil {
			guest = b.User.FullName()
			phone = b.User.PhoneNumber
		}
		row := []interface{}{
			b.ID,
			b.BookingDate,
			b.TimeSlot.Label(),
			table,
			b.GuestsCount,
			string(b.Status),
			guest,
			phone,
			b.SpecialRequests,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write booking %d: %w", b.ID, err)
		}
	}

	xl.SetColWidth(exportSheet, "A", "A", 8)
	xl.SetColWidth(exportSheet, "B", "C", 14)
	xl.SetColWidth(exportSheet, "G", "I", 24)
	return xl, nil
}
