package database

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedTables = []models.Table{
	{Number: "1", MaxGuests: 2, Description: "Cosy table by the window overlooking the park"},
	{Number: "2", MaxGuests: 4, Description: "Comfortable table in the centre of the hall"},
	{Number: "3", MaxGuests: 6, Description: "Spacious table for a group of friends"},
	{Number: "4", MaxGuests: 8, Description: "Large family table with soft sofas"},
	{Number: "5", MaxGuests: 10, Description: "Banquet table for celebrations"},
	{Number: "6", MaxGuests: 2, Description: "Romantic table in a quiet corner"},
	{Number: "7", MaxGuests: 4, Description: "Table by the fireplace"},
	{Number: "8", MaxGuests: 6, Description: "Terrace table with a view of the city"},
}

func intPtr(v int) *int { return &v }

type seedCategory struct {
	name  string
	order int
	items []models.MenuItem
}

var seedMenu = []seedCategory{
	{"Cold starters", 1, []models.MenuItem{
		{Name: "Tomato bruschetta", DishType: models.DishFood, Price: 350, Weight: intPtr(150), Ingredients: "Bread, tomatoes, basil, garlic, olive oil"},
		{Name: "Cheese plate", DishType: models.DishFood, Price: 580, Weight: intPtr(200), Ingredients: "Dor blue, gouda, brie, walnuts, honey"},
	}},
	{"Salads", 2, []models.MenuItem{
		{Name: "Greek salad", DishType: models.DishFood, Price: 420, Weight: intPtr(300), Ingredients: "Tomatoes, cucumbers, pepper, onion, feta, olives"},
		{Name: "Caesar with chicken", DishType: models.DishFood, Price: 480, Weight: intPtr(350), Ingredients: "Iceberg, chicken fillet, parmesan, croutons, caesar dressing"},
	}},
	{"Desserts", 6, []models.MenuItem{
		{Name: "Tiramisu", DishType: models.DishFood, Price: 380, Weight: intPtr(150)},
		{Name: "New York cheesecake", DishType: models.DishFood, Price: 420, Weight: intPtr(180)},
	}},
	{"Hot drinks", 7, []models.MenuItem{
		{Name: "Espresso", DishType: models.DishDrink, Price: 180, Volume: intPtr(30)},
		{Name: "Cappuccino", DishType: models.DishDrink, Price: 240, Volume: intPtr(200)},
		{Name: "English breakfast tea", DishType: models.DishDrink, Price: 150, Volume: intPtr(300)},
	}},
	{"Cold drinks", 8, []models.MenuItem{
		{Name: "Fresh orange juice", DishType: models.DishDrink, Price: 320, Volume: intPtr(250)},
		{Name: "Virgin mojito", DishType: models.DishDrink, Price: 280, Volume: intPtr(400)},
	}},
}

// SeedTables creates the default tables or refreshes them when the number already exists.
func SeedTables(db *gorm.DB) error {
	created, updated := 0, 0
	for _, data := range seedTables {
		var table models.Table
		err := db.Where("number = ?", data.Number).First(&table).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			t := data
			t.IsActive = true
			if err := db.Create(&t).Error; err != nil {
				return fmt.Errorf("seed table %s: %w", data.Number, err)
			}
			created++
		case err != nil:
			return fmt.Errorf("load table %s: %w", data.Number, err)
		default:
			err := db.Model(&table).Updates(map[string]interface{}{
				"max_guests":  data.MaxGuests,
				"description": data.Description,
				"is_active":   true,
			}).Error
			if err != nil {
				return fmt.Errorf("refresh table %s: %w", data.Number, err)
			}
			updated++
		}
	}
	utils.InfoLogger.Printf("Seeded tables: %d created, %d updated", created, updated)
	return nil
}

// SeedMenu adds the sample categories and items that do not exist yet.
func SeedMenu(db *gorm.DB) error {
	for _, sc := range seedMenu {
		category := models.MenuCategory{Name: sc.name}
		if err := db.Where("name = ?", sc.name).Attrs(models.MenuCategory{SortOrder: sc.order}).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", sc.name, err)
		}
		for _, item := range sc.items {
			item.CategoryID = category.ID
			item.IsAvailable = true
			var existing models.MenuItem
			if err := db.Where("name = ?", item.Name).Attrs(item).FirstOrCreate(&existing).Error; err != nil {
				return fmt.Errorf("seed menu item %s: %w", item.Name, err)
			}
		}
	}
	utils.InfoLogger.Println("Seeded sample menu")
	return nil
}

// EnsureAdmin creates an administrator with the given phone unless one exists.
func EnsureAdmin(db *gorm.DB, phone, password string) error {
	if phone == "" || password == "" {
		return nil
	}
	phone = models.NormalizePhoneNumber(phone)
	if !models.ValidPhoneNumber(phone) {
		return fmt.Errorf("invalid admin phone number %q", phone)
	}

	var count int64
	if err := db.Model(&models.User{}).Where("phone_number = ?", phone).Count(&count).Error; err != nil {
		return fmt.Errorf("look up admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		PhoneNumber: phone,
		FirstName:   "Admin",
		Password:    string(hashed),
		Role:        models.RoleAdmin,
		IsActive:    true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	utils.InfoLogger.Printf("Administrator %s created", phone)
	return nil
}
