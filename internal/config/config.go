package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	CORS      CORSConfig
	Log       LogConfig
	Stock     StockConfig
	Geo       GeoConfig
	Sweeper   SweeperConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Driver      string // mysql or sqlite
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	DSN         string // overrides the fields above when set
	AutoMigrate bool
}

type ServerConfig struct {
	Port           string
	GinMode        string
	RequestTimeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string // json or console
}

type StockConfig struct {
	LowStockThreshold int
	ExpiryWarningDays int
	MaxQuantity       int
}

type GeoConfig struct {
	DefaultRadiusKm float64
	MinRadiusKm     float64
	MaxRadiusKm     float64
	ResultLimit     int
}

type SweeperConfig struct {
	Interval time.Duration // zero disables the sweeper
}

type RateLimitConfig struct {
	ReportsPerSecond float64
	Burst            int
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "mysql"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "3306"),
			User:        getEnv("DB_USER", "root"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "snaktox"),
			DSN:         getEnv("DB_DSN", ""),
			AutoMigrate: parseBool(getEnv("DB_AUTO_MIGRATE", "true"), true),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			GinMode:        getEnv("GIN_MODE", "debug"),
			RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "10s"), 10*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Stock: StockConfig{
			LowStockThreshold: parseInt(getEnv("STOCK_LOW_THRESHOLD", "10"), 10),
			ExpiryWarningDays: parseInt(getEnv("STOCK_EXPIRY_WARNING_DAYS", "30"), 30),
			MaxQuantity:       parseInt(getEnv("STOCK_MAX_QUANTITY", "1000"), 1000),
		},
		Geo: GeoConfig{
			DefaultRadiusKm: parseFloat(getEnv("GEO_DEFAULT_RADIUS_KM", "50"), 50),
			MinRadiusKm:     parseFloat(getEnv("GEO_MIN_RADIUS_KM", "1"), 1),
			MaxRadiusKm:     parseFloat(getEnv("GEO_MAX_RADIUS_KM", "500"), 500),
			ResultLimit:     parseInt(getEnv("GEO_RESULT_LIMIT", "20"), 20),
		},
		Sweeper: SweeperConfig{
			Interval: parseDuration(getEnv("STOCK_SWEEP_INTERVAL", "0"), 0),
		},
		RateLimit: RateLimitConfig{
			ReportsPerSecond: parseFloat(getEnv("STOCK_REPORTS_PER_SECOND", "5"), 5),
			Burst:            parseInt(getEnv("STOCK_REPORTS_BURST", "10"), 10),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "0" {
		return 0
	}
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default %s\n", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Printf("Warning: Invalid integer '%s', using default %d\n", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Printf("Warning: Invalid number '%s', using default %v\n", s, fallback)
		return fallback
	}
	return f
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		fmt.Printf("Warning: Invalid boolean '%s', using default %t\n", s, fallback)
		return fallback
	}
	return b
}

func parseOrigins(s string) []string {
	origins := []string{}
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
