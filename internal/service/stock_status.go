package service

import (
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/models"
)

// StockPolicy holds the thresholds behind status derivation and input bounds
type StockPolicy struct {
	LowStockThreshold int
	ExpiryWarning     time.Duration
	MaxQuantity       int
}

// DefaultStockPolicy: LOW_STOCK below 10 units, EXPIRED within 30 days of expiry, at most 1000 units
func DefaultStockPolicy() StockPolicy {
	return StockPolicy{
		LowStockThreshold: 10,
		ExpiryWarning:     30 * 24 * time.Hour,
		MaxQuantity:       1000,
	}
}

// Derive computes status from quantity and expiry alone.
// Stock expiring within the warning window already counts as EXPIRED.
// It never yields RECALLED.
func (p StockPolicy) Derive(quantity int, expiry, now time.Time) models.StockStatus {
	switch {
	case !expiry.After(now.Add(p.ExpiryWarning)):
		return models.StockStatusExpired
	case quantity == 0:
		return models.StockStatusOutOfStock
	case quantity < p.LowStockThreshold:
		return models.StockStatusLowStock
	default:
		return models.StockStatusAvailable
	}
}

// Resolve picks the status a record should carry after a write.
// An explicit forced status always wins. Otherwise RECALLED is sticky and
// everything else is re-derived.
func (p StockPolicy) Resolve(current models.StockStatus, quantity int, expiry, now time.Time, forced *models.StockStatus) models.StockStatus {
	if forced != nil {
		return *forced
	}
	if current == models.StockStatusRecalled {
		return models.StockStatusRecalled
	}
	return p.Derive(quantity, expiry, now)
}
