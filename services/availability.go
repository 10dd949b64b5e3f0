package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yeremiapane/restaurant-booking/models"
)

// DefaultMinGuests is used when availability is requested without a party size.
const DefaultMinGuests = 2

const (
	SlotAvailable   = "available"
	SlotUnavailable = "unavailable"
)

type SlotAvailability struct {
	TimeSlot  models.TimeSlot `json:"time_slot"`
	Label     string          `json:"label"`
	Available bool            `json:"available"`
	Status    string          `json:"status"`
}

type TableAvailability struct {
	Table models.Table       `json:"table"`
	Slots []SlotAvailability `json:"slots"`
}

// GetAvailability lists every active table that seats at least minGuests, smallest first,
// with each slot of date marked available or unavailable.
//
// A slot is unavailable when an occupying booking holds it, when date is today and the slot
// has already started, or when date is before today.
func (s *BookingService) GetAvailability(ctx context.Context, date string, minGuests int) ([]TableAvailability, error) {
	if date == "" {
		return nil, newError(ErrMissingField, "date", "date is required")
	}
	day, err := models.ParseDate(date, s.location())
	if err != nil {
		return nil, newError(ErrInvalidField, "date", "date must be in YYYY-MM-DD format")
	}
	if minGuests <= 0 {
		minGuests = DefaultMinGuests
	}

	db := s.DB.WithContext(ctx)

	var tables []models.Table
	if err := db.Where("is_active = ? AND max_guests >= ?", true, minGuests).Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	SortTablesByCapacity(tables)

	occupied := make(map[uint]map[models.TimeSlot]bool, len(tables))
	if len(tables) > 0 {
		ids := make([]uint, 0, len(tables))
		for _, t := range tables {
			ids = append(ids, t.ID)
		}

		var taken []models.Booking
		err := db.Select("table_id", "time_slot").
			Where("booking_date = ? AND status <> ? AND table_id IN ?", date, models.StatusCancelled, ids).
			Find(&taken).Error
		if err != nil {
			return nil, fmt.Errorf("load bookings: %w", err)
		}
		for _, b := range taken {
			if occupied[b.TableID] == nil {
				occupied[b.TableID] = make(map[models.TimeSlot]bool)
			}
			occupied[b.TableID][b.TimeSlot] = true
		}
	}

	now := s.now()
	today := now.Format(models.DateLayout)

	result := make([]TableAvailability, 0, len(tables))
	for _, t := range tables {
		row := TableAvailability{Table: t}
		for _, slot := range models.AllTimeSlots() {
			available := !occupied[t.ID][slot]
			switch {
			case date < today:
				available = false
			case date == today && !slot.Start(day, s.location()).After(now):
				available = false
			}
			status := SlotAvailable
			if !available {
				status = SlotUnavailable
			}
			row.Slots = append(row.Slots, SlotAvailability{
				TimeSlot:  slot,
				Label:     slot.Label(),
				Available: available,
				Status:    status,
			})
		}
		result = append(result, row)
	}
	return result, nil
}

// SortTablesByCapacity orders tables by capacity, then by number.
func SortTablesByCapacity(tables []models.Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].MaxGuests != tables[j].MaxGuests {
			return tables[i].MaxGuests < tables[j].MaxGuests
		}
		return CompareTableNumbers(tables[i].Number, tables[j].Number) < 0
	})
}

// SortTablesByNumber orders tables by number only.
func SortTablesByNumber(tables []models.Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		return CompareTableNumbers(tables[i].Number, tables[j].Number) < 0
	})
}

// CompareTableNumbers compares numerically when both labels are integers, so "2" sorts before "10".
// Numeric labels come before non-numeric ones.
func CompareTableNumbers(a, b string) int {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}
