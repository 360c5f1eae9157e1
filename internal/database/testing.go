package database

import (
	"testing"

	"github.com/MauriceOS/snaktox-sub001/internal/config"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated, private in-memory SQLite database for t
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:      DriverSQLite,
			DSN:         "file:" + uuid.NewString() + "?mode=memory",
			AutoMigrate: true,
		},
		Server: config.ServerConfig{GinMode: "test"},
	}

	db, err := Connect(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
