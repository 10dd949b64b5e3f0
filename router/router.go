package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/controllers"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/services"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps are the shared objects the HTTP layer needs.
type Deps struct {
	DB          *gorm.DB
	Bookings    *services.BookingService
	Tables      *services.TableService
	Hub         *hub.Hub
	CORSOrigins []string
	// RatePerSec limits requests per client IP; zero disables the general limiter.
	RatePerSec float64
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	r.Use(middlewares.SecurityHeaders())
	if d.RatePerSec > 0 {
		burst := int(d.RatePerSec * 2)
		if burst < 1 {
			burst = 1
		}
		r.Use(middlewares.NewRateLimiter(rate.Limit(d.RatePerSec), burst).RateLimit())
	}

	userController := controllers.NewUserController(d.DB, d.Bookings)
	bookingController := controllers.NewBookingController(d.Bookings)
	tableController := controllers.NewTableController(d.Tables)
	menuCategoryController := controllers.NewMenuCategoryController(d.DB)
	menuItemController := controllers.NewMenuItemController(d.DB)
	adminController := controllers.NewAdminController(d.Bookings, d.Hub)
	hubController := controllers.NewHubController(d.Hub, d.CORSOrigins)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "time": time.Now().Format(time.RFC3339)})
	})

	// Public
	strict := middlewares.NewStrictRateLimiter()
	r.POST("/register", strict.RateLimit(), userController.Register)
	r.POST("/login", strict.RateLimit(), userController.Login)
	r.GET("/menu", menuCategoryController.GetMenu)
	r.GET("/tables", tableController.GetActiveTables)
	r.GET("/bookings/availability", bookingController.GetAvailability)

	// Live board; browsers pass the token in the query string
	r.GET("/ws/bookings", middlewares.WebSocketAuthMiddleware(), hubController.BookingBoard)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userController.Logout)
		auth.GET("/profile", userController.GetProfile)
		auth.PATCH("/profile", userController.UpdateProfile)
		auth.GET("/notifications", userController.GetNotifications)

		bookings := auth.Group("/bookings")
		{
			bookings.POST("", bookingController.CreateBooking)
			bookings.GET("/mine", bookingController.GetMyBookings)
			bookings.GET("/:id", bookingController.GetBooking)
			bookings.PATCH("/:id", bookingController.UpdateBooking)
			bookings.POST("/:id/cancel", bookingController.CancelBooking)
		}
	}

	// Staff and admin
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireStaff())
	{
		admin.GET("/dashboard", adminController.GetDashboardStats)

		admin.GET("/bookings", bookingController.ListBookings)
		admin.GET("/bookings/grid", bookingController.GetDayGrid)
		admin.GET("/bookings/export", bookingController.ExportBookings)
		admin.POST("/bookings/:id/status", bookingController.SetStatus)
		admin.POST("/bookings/:id/confirm", bookingController.ConfirmBooking)

		admin.GET("/tables", tableController.GetAllTables)
		admin.POST("/tables", tableController.CreateTable)
		admin.GET("/tables/:id", tableController.GetTable)
		admin.PUT("/tables/:id", tableController.UpdateTable)
		admin.PATCH("/tables/:id/active", tableController.SetTableActive)
		admin.DELETE("/tables/:id", tableController.DeleteTable)

		admin.GET("/users", userController.GetAllUsers)
		admin.POST("/users", userController.CreateUser)
		admin.PUT("/users/:id", userController.UpdateUser)
		admin.DELETE("/users/:id", userController.DeleteUser)

		admin.POST("/menu/categories", menuCategoryController.CreateCategory)
		admin.PUT("/menu/categories/:id", menuCategoryController.UpdateCategory)
		admin.DELETE("/menu/categories/:id", menuCategoryController.DeleteCategory)
		admin.POST("/menu/items", menuItemController.CreateItem)
		admin.PUT("/menu/items/:id", menuItemController.UpdateItem)
		admin.DELETE("/menu/items/:id", menuItemController.DeleteItem)
	}

	return r
}
