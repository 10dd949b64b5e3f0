package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-booking/utils"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	Location    *time.Location
	CORSOrigins []string
	RatePerSec  float64

	StaffAutoConfirm   bool
	AdminOverride      bool
	CompletionInterval time.Duration

	RabbitMQURL      string
	RabbitMQExchange string

	MailerSendAPIKey string
	MailFromEmail    string
	MailFromName     string

	SeedData      bool
	AdminPhone    string
	AdminPassword string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug("No .env file loaded")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver: strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:    getEnv("DB_DSN", "restaurant.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		RatePerSec:  getFloat("RATE_LIMIT_PER_SECOND", 20),

		StaffAutoConfirm:   getBool("BOOKING_STAFF_AUTOCONFIRM", true),
		AdminOverride:      getBool("BOOKING_ADMIN_OVERRIDE", false),
		CompletionInterval: getDuration("BOOKING_COMPLETION_INTERVAL", 5*time.Minute),

		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "bookings"),

		MailerSendAPIKey: os.Getenv("MAILERSEND_API_KEY"),
		MailFromEmail:    os.Getenv("MAILERSEND_FROM_EMAIL"),
		MailFromName:     getEnv("MAILERSEND_FROM_NAME", "Restaurant"),

		SeedData:      getBool("SEED_DATA", false),
		AdminPhone:    os.Getenv("ADMIN_PHONE"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	tz := getEnv("RESTAURANT_TZ", "Local")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		utils.ErrorLogger.Printf("Unknown RESTAURANT_TZ %q, using local time: %v", tz, err)
		loc = time.Local
	}
	cfg.Location = loc

	if cfg.JWTSecret == "" {
		utils.ErrorLogger.Println("Warning: JWT_SECRET is not set, using the development secret")
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		utils.ErrorLogger.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
