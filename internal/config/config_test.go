package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, 10, cfg.Stock.LowStockThreshold)
	assert.Equal(t, 30, cfg.Stock.ExpiryWarningDays)
	assert.Equal(t, 1000, cfg.Stock.MaxQuantity)
	assert.Equal(t, 50.0, cfg.Geo.DefaultRadiusKm)
	assert.Equal(t, 20, cfg.Geo.ResultLimit)
	assert.Equal(t, time.Duration(0), cfg.Sweeper.Interval)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file::memory:")
	t.Setenv("STOCK_LOW_THRESHOLD", "15")
	t.Setenv("STOCK_SWEEP_INTERVAL", "5m")
	t.Setenv("GEO_MAX_RADIUS_KM", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, 15, cfg.Stock.LowStockThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.Interval)
	assert.Equal(t, 500.0, cfg.Geo.MaxRadiusKm)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
