package models

import "time"

const (
	DishFood  = "food"
	DishDrink = "drink"
)

type MenuCategory struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	SortOrder int        `gorm:"not null;default:0" json:"sort_order"`
	Items     []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

type MenuItem struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CategoryID  uint          `gorm:"not null;index" json:"category_id"`
	Category    *MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name        string        `gorm:"type:varchar(200);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	DishType    string        `gorm:"type:varchar(10);not null;default:'food'" json:"dish_type"`
	Price       float64       `gorm:"type:decimal(8,2);not null" json:"price"`
	Weight      *int          `json:"weight,omitempty"`
	Volume      *int          `json:"volume,omitempty"`
	Ingredients string        `gorm:"type:text" json:"ingredients,omitempty"`
	IsAvailable bool          `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func ValidDishType(t string) bool {
	return t == DishFood || t == DishDrink
}
