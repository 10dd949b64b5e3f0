package services

import "gorm.io/gorm"

// Page describes a requested page; a zero Size means no limit.
type Page struct {
	Number int
	Size   int
}

// Paginate is a gorm scope applying limit/offset for p.
func Paginate(p Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Size <= 0 {
			return db
		}
		n := p.Number
		if n < 1 {
			n = 1
		}
		return db.Offset((n - 1) * p.Size).Limit(p.Size)
	}
}

// TotalPages -> number of pages needed for total rows at size per page.
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages == 0 {
		return 1
	}
	return pages
}
