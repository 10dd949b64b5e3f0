package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/broker"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/events"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/mailer"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate database: %v", err)
	}
	if cfg.SeedData {
		if err := database.SeedTables(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed tables: %v", err)
		}
		if err := database.SeedMenu(db); err != nil {
			utils.ErrorLogger.Fatalf("Failed to seed menu: %v", err)
		}
	}
	if err := database.EnsureAdmin(db, cfg.AdminPhone, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to create administrator: %v", err)
	}

	app := newApplication(cfg, db)
	defer app.close()
	app.monitor.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Printf("Server shutdown: %v", err)
	}
	app.monitor.Stop()
	app.dispatcher.Wait()
}

// application is everything main wires together around the database.
type application struct {
	dispatcher *events.Dispatcher
	bookings   *services.BookingService
	monitor    *services.CompletionMonitor
	hub        *hub.Hub
	router     *gin.Engine
	closers    []func() error
}

func newApplication(cfg *config.Config, db *gorm.DB) *application {
	app := &application{hub: hub.New()}

	// Notifications go out after the booking change is stored.
	app.dispatcher = events.NewDispatcher(utils.ErrorLogger, 10*time.Second, app.hub, services.NewInboxNotifier(db))
	if cfg.RabbitMQURL != "" {
		publisher, err := broker.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			utils.ErrorLogger.Printf("RabbitMQ disabled: %v", err)
		} else {
			app.closers = append(app.closers, publisher.Close)
			app.dispatcher.Add(publisher)
			utils.InfoLogger.Printf("Publishing booking events to exchange %s", cfg.RabbitMQExchange)
		}
	}
	if cfg.MailerSendAPIKey != "" && cfg.MailFromEmail != "" {
		app.dispatcher.Add(mailer.NewService(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail, db))
		utils.InfoLogger.Println("E-mail notifications enabled")
	}

	app.bookings = services.NewBookingService(db, app.dispatcher, cfg.Location, services.BookingPolicy{
		StaffAutoConfirm: cfg.StaffAutoConfirm,
		AdminOverride:    cfg.AdminOverride,
	})
	tables := services.NewTableService(db, cfg.Location)
	app.monitor = services.NewCompletionMonitor(app.bookings, cfg.CompletionInterval)

	app.router = router.SetupRouter(router.Deps{
		DB:          db,
		Bookings:    app.bookings,
		Tables:      tables,
		Hub:         app.hub,
		CORSOrigins: cfg.CORSOrigins,
		RatePerSec:  cfg.RatePerSec,
	})
	return app
}

func (a *application) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			utils.ErrorLogger.Printf("Close: %v", err)
		}
	}
}
