package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-booking/models"
	"gorm.io/gorm"
)

// GetBooking returns a booking with its table and user. Only the owner and staff may see it.
func (s *BookingService) GetBooking(ctx context.Context, actor Actor, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.WithContext(ctx).Preload("Table").Preload("User").First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "booking", "booking %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if !actor.IsStaff() && !actor.owns(&booking) {
		return nil, newError(ErrPermissionDenied, "booking", "you can only view your own bookings")
	}
	return &booking, nil
}

// ListUserBookings returns the user's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.DB.WithContext(ctx).Preload("Table").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

type BookingStats struct {
	Total     int64 `json:"bookings_count"`
	Confirmed int64 `json:"active_bookings_count"`
	Pending   int64 `json:"pending_bookings_count"`
}

func (s *BookingService) UserStats(ctx context.Context, userID uint) (BookingStats, error) {
	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}
	err := s.DB.WithContext(ctx).Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return BookingStats{}, fmt.Errorf("booking stats: %w", err)
	}

	var stats BookingStats
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Status {
		case models.StatusConfirmed:
			stats.Confirmed = r.Count
		case models.StatusPending:
			stats.Pending = r.Count
		}
	}
	return stats, nil
}

// BookingFilter narrows the staff booking list. Zero values do not filter.
type BookingFilter struct {
	Status   models.BookingStatus
	Date     string
	DateFrom string
	DateTo   string
	TimeSlot models.TimeSlot
	TableID  uint
	UserID   uint
	Page     Page
}

func (f BookingFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Date != "" {
		db = db.Where("booking_date = ?", f.Date)
	}
	if f.DateFrom != "" {
		db = db.Where("booking_date >= ?", f.DateFrom)
	}
	if f.DateTo != "" {
		db = db.Where("booking_date <= ?", f.DateTo)
	}
	if f.TimeSlot != "" {
		db = db.Where("time_slot = ?", f.TimeSlot)
	}
	if f.TableID != 0 {
		db = db.Where("table_id = ?", f.TableID)
	}
	if f.UserID != 0 {
		db = db.Where("user_id = ?", f.UserID)
	}
	return db
}

// ListBookings returns one page of bookings matching f, newest first, and the total match count.
func (s *BookingService) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, newError(ErrInvalidField, "status", "unknown status %q", f.Status)
	}
	if f.TimeSlot != "" && !f.TimeSlot.Valid() {
		return nil, 0, newError(ErrInvalidField, "time_slot", "time slot %q is not offered", f.TimeSlot)
	}

	db := s.DB.WithContext(ctx)

	var total int64
	if err := f.apply(db.Model(&models.Booking{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	var bookings []models.Booking
	err := f.apply(db.Preload("Table").Preload("User")).
		Scopes(Paginate(f.Page)).
		Order("created_at DESC").Order("id DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, total, nil
}

type GridCell struct {
	TimeSlot models.TimeSlot `json:"time_slot"`
	Label    string          `json:"label"`
	Booking  *models.Booking `json:"booking"`
}

type GridRow struct {
	Table models.Table `json:"table"`
	Cells []GridCell   `json:"cells"`
}

// GetDayGrid lays out every table against every slot of date with the booking holding it.
// Active tables come first.
func (s *BookingService) GetDayGrid(ctx context.Context, date string) ([]GridRow, error) {
	if date == "" {
		return nil, newError(ErrMissingField, "date", "date is required")
	}
	if _, err := models.ParseDate(date, s.location()); err != nil {
		return nil, newError(ErrInvalidField, "date", "date must be in YYYY-MM-DD format")
	}

	db := s.DB.WithContext(ctx)

	var tables []models.Table
	if err := db.Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	SortTablesByNumber(tables)
	active := make([]models.Table, 0, len(tables))
	inactive := make([]models.Table, 0)
	for _, t := range tables {
		if t.IsActive {
			active = append(active, t)
		} else {
			inactive = append(inactive, t)
		}
	}
	tables = append(active, inactive...)

	var bookings []models.Booking
	err := db.Preload("User").
		Where("booking_date = ? AND status <> ?", date, models.StatusCancelled).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	held := make(map[uint]map[models.TimeSlot]*models.Booking)
	for i := range bookings {
		b := &bookings[i]
		if held[b.TableID] == nil {
			held[b.TableID] = make(map[models.TimeSlot]*models.Booking)
		}
		held[b.TableID][b.TimeSlot] = b
	}

	rows := make([]GridRow, 0, len(tables))
	for _, t := range tables {
		row := GridRow{Table: t}
		for _, slot := range models.AllTimeSlots() {
			row.Cells = append(row.Cells, GridCell{
				TimeSlot: slot,
				Label:    slot.Label(),
				Booking:  held[t.ID][slot],
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type SlotOccupancy struct {
	TimeSlot models.TimeSlot `json:"time_slot"`
	Label    string          `json:"label"`
	Booked   int64           `json:"booked"`
	Ratio    float64         `json:"ratio"`
}

type DashboardStats struct {
	Date         string                         `json:"date"`
	ByStatus     map[models.BookingStatus]int64 `json:"by_status"`
	ActiveTables int64                          `json:"active_tables"`
	TotalTables  int64                          `json:"total_tables"`
	Slots        []SlotOccupancy                `json:"slots"`
}

// DashboardStats summarises one day for the staff dashboard.
func (s *BookingService) DashboardStats(ctx context.Context, date string) (*DashboardStats, error) {
	if date == "" {
		date = s.now().Format(models.DateLayout)
	}
	if _, err := models.ParseDate(date, s.location()); err != nil {
		return nil, newError(ErrInvalidField, "date", "date must be in YYYY-MM-DD format")
	}

	db := s.DB.WithContext(ctx)
	stats := &DashboardStats{Date: date, ByStatus: make(map[models.BookingStatus]int64)}

	if err := db.Model(&models.Table{}).Count(&stats.TotalTables).Error; err != nil {
		return nil, fmt.Errorf("count tables: %w", err)
	}
	if err := db.Model(&models.Table{}).Where("is_active = ?", true).Count(&stats.ActiveTables).Error; err != nil {
		return nil, fmt.Errorf("count active tables: %w", err)
	}

	var byStatus []struct {
		Status models.BookingStatus
		Count  int64
	}
	err := db.Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").
		Where("booking_date = ?", date).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return nil, fmt.Errorf("count bookings by status: %w", err)
	}
	for _, st := range []models.BookingStatus{models.StatusPending, models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted} {
		stats.ByStatus[st] = 0
	}
	for _, r := range byStatus {
		stats.ByStatus[r.Status] = r.Count
	}

	var bySlot []struct {
		TimeSlot models.TimeSlot
		Count    int64
	}
	err = db.Model(&models.Booking{}).
		Select("time_slot, COUNT(*) AS count").
		Where("booking_date = ? AND status <> ?", date, models.StatusCancelled).
		Group("time_slot").
		Scan(&bySlot).Error
	if err != nil {
		return nil, fmt.Errorf("count bookings by slot: %w", err)
	}
	counts := make(map[models.TimeSlot]int64, len(bySlot))
	for _, r := range bySlot {
		counts[r.TimeSlot] = r.Count
	}
	for _, slot := range models.AllTimeSlots() {
		occ := SlotOccupancy{TimeSlot: slot, Label: slot.Label(), Booked: counts[slot]}
		if stats.ActiveTables > 0 {
			occ.Ratio = float64(occ.Booked) / float64(stats.ActiveTables)
		}
		stats.Slots = append(stats.Slots, occ)
	}
	return stats, nil
}

// DueForCompletion lists confirmed bookings whose slot has already ended.
func (s *BookingService) DueForCompletion(ctx context.Context) ([]models.Booking, error) {
	now := s.now()
	var candidates []models.Booking
	err := s.DB.WithContext(ctx).
		Where("status = ? AND booking_date <= ?", models.StatusConfirmed, now.Format(models.DateLayout)).
		Order("booking_date ASC").Order("time_slot ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("load confirmed bookings: %w", err)
	}

	due := candidates[:0]
	for _, b := range candidates {
		if b.IsPast(now, s.location()) {
			due = append(due, b)
		}
	}
	return due, nil
}
