package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

// DefaultTablesPerPage matches the management grid of three by three cards.
const DefaultTablesPerPage = 9

type TableService struct {
	DB       *gorm.DB
	Location *time.Location
	Now      func() time.Time
}

func NewTableService(db *gorm.DB, loc *time.Location) *TableService {
	return &TableService{DB: db, Location: loc, Now: time.Now}
}

type TableInput struct {
	Number      string `json:"number"`
	MaxGuests   int    `json:"max_guests"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (s *TableService) today() string {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().In(loc).Format(models.DateLayout)
}

func validateTable(in *TableInput) error {
	in.Number = strings.TrimSpace(in.Number)
	in.Description = strings.TrimSpace(in.Description)
	if in.Number == "" {
		return newError(ErrMissingField, "number", "table number is required")
	}
	if len(in.Number) > 20 {
		return newError(ErrInvalidField, "number", "table number must be at most 20 characters")
	}
	if in.MaxGuests < 1 || in.MaxGuests > models.MaxTableCapacity {
		return newError(ErrInvalidField, "max_guests", "max guests must be between 1 and %d", models.MaxTableCapacity)
	}
	return nil
}

// List returns tables ordered by number. activeOnly hides deactivated tables.
func (s *TableService) List(ctx context.Context, activeOnly bool, page Page) ([]models.Table, int64, error) {
	db := s.DB.WithContext(ctx).Model(&models.Table{})
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}

	var all []models.Table
	if err := db.Find(&all).Error; err != nil {
		return nil, 0, fmt.Errorf("list tables: %w", err)
	}
	SortTablesByNumber(all)

	total := int64(len(all))
	if page.Size <= 0 {
		return all, total, nil
	}
	n := page.Number
	if n < 1 {
		n = 1
	}
	start := (n - 1) * page.Size
	if start >= len(all) {
		return []models.Table{}, total, nil
	}
	end := start + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	err := s.DB.WithContext(ctx).First(&table, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "table", "table %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	return &table, nil
}

func (s *TableService) Create(ctx context.Context, in TableInput) (*models.Table, error) {
	if err := validateTable(&in); err != nil {
		return nil, err
	}
	if err := s.checkNumberFree(ctx, in.Number, 0); err != nil {
		return nil, err
	}

	table := models.Table{
		Number:      in.Number,
		MaxGuests:   in.MaxGuests,
		Description: in.Description,
		IsActive:    true,
	}
	if in.IsActive != nil {
		table.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Create(&table).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateTable(in.Number)
		}
		return nil, fmt.Errorf("create table: %w", err)
	}
	// gorm skips false for a column with a default on insert
	if in.IsActive != nil && !*in.IsActive {
		if err := s.DB.WithContext(ctx).Model(&table).Update("is_active", false).Error; err != nil {
			return nil, fmt.Errorf("deactivate table: %w", err)
		}
		table.IsActive = false
	}

	utils.InfoLogger.Printf("Table %s created (max_guests=%d, active=%t)", table.Number, table.MaxGuests, table.IsActive)
	return &table, nil
}

func (s *TableService) Update(ctx context.Context, id uint, in TableInput) (*models.Table, error) {
	table, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateTable(&in); err != nil {
		return nil, err
	}
	if err := s.checkNumberFree(ctx, in.Number, id); err != nil {
		return nil, err
	}

	table.Number = in.Number
	table.MaxGuests = in.MaxGuests
	table.Description = in.Description
	if in.IsActive != nil {
		table.IsActive = *in.IsActive
	}
	if err := s.DB.WithContext(ctx).Save(table).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, duplicateTable(in.Number)
		}
		return nil, fmt.Errorf("update table: %w", err)
	}

	utils.InfoLogger.Printf("Table %d updated: number=%s max_guests=%d active=%t", table.ID, table.Number, table.MaxGuests, table.IsActive)
	return table, nil
}

// SetActive switches a table in or out of availability without touching its bookings.
func (s *TableService) SetActive(ctx context.Context, id uint, active bool) (*models.Table, error) {
	table, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(table).Update("is_active", active).Error; err != nil {
		return nil, fmt.Errorf("set table active: %w", err)
	}
	table.IsActive = active
	utils.InfoLogger.Printf("Table %s active=%t", table.Number, active)
	return table, nil
}

// Delete removes a table together with all of its bookings.
func (s *TableService) Delete(ctx context.Context, id uint) (*models.Table, error) {
	table, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("table_id = ?", id).Delete(&models.Booking{}).Error; err != nil {
			return fmt.Errorf("delete table bookings: %w", err)
		}
		if err := tx.Delete(&models.Table{}, id).Error; err != nil {
			return fmt.Errorf("delete table: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Table %s deleted", table.Number)
	return table, nil
}

type TableBookingCounts struct {
	Today  int64 `json:"today"`
	Future int64 `json:"future"`
}

// BookingCounts counts occupying bookings of a table for today and from today on.
func (s *TableService) BookingCounts(ctx context.Context, id uint) (TableBookingCounts, error) {
	var counts TableBookingCounts
	today := s.today()
	db := s.DB.WithContext(ctx).Model(&models.Booking{})

	err := db.Where("table_id = ? AND booking_date = ? AND status IN ?", id, today,
		[]models.BookingStatus{models.StatusPending, models.StatusConfirmed}).
		Count(&counts.Today).Error
	if err != nil {
		return counts, fmt.Errorf("count today bookings: %w", err)
	}
	err = s.DB.WithContext(ctx).Model(&models.Booking{}).
		Where("table_id = ? AND booking_date >= ? AND status IN ?", id, today,
			[]models.BookingStatus{models.StatusPending, models.StatusConfirmed}).
		Count(&counts.Future).Error
	if err != nil {
		return counts, fmt.Errorf("count future bookings: %w", err)
	}
	return counts, nil
}

func (s *TableService) checkNumberFree(ctx context.Context, number string, exceptID uint) error {
	q := s.DB.WithContext(ctx).Model(&models.Table{}).Where("number = ?", number)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check table number: %w", err)
	}
	if n > 0 {
		return duplicateTable(number)
	}
	return nil
}

func duplicateTable(number string) error {
	return newError(ErrDuplicateTable, "number", "table with number %s already exists", number)
}
