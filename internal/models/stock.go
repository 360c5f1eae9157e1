package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockStatus is the availability state of a stock record
type StockStatus string

const (
	StockStatusAvailable  StockStatus = "AVAILABLE"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StockStatusExpired    StockStatus = "EXPIRED"
	StockStatusRecalled   StockStatus = "RECALLED"
)

// StockStatuses lists every status in display order
var StockStatuses = []StockStatus{
	StockStatusAvailable,
	StockStatusLowStock,
	StockStatusOutOfStock,
	StockStatusExpired,
	StockStatusRecalled,
}

// Valid reports whether s is a known status
func (s StockStatus) Valid() bool {
	for _, known := range StockStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// StockRecord is the antivenom inventory of one product batch at one hospital.
// Records are never deleted; their lifecycle is carried by Status.
type StockRecord struct {
	ID            string      `gorm:"primaryKey;size:36" json:"id"`
	HospitalID    string      `gorm:"size:36;not null;uniqueIndex:idx_stock_key,priority:1" json:"hospital_id"`
	AntivenomType string      `gorm:"size:255;not null;uniqueIndex:idx_stock_key,priority:2;index" json:"antivenom_type"`
	BatchNumber   string      `gorm:"size:100;not null;default:'';uniqueIndex:idx_stock_key,priority:3" json:"batch_number,omitempty"`
	Supplier      string      `gorm:"size:255" json:"supplier,omitempty"`
	Quantity      int         `gorm:"not null" json:"quantity"`
	ExpiryDate    time.Time   `gorm:"not null;index" json:"expiry_date"`
	Status        StockStatus `gorm:"size:20;not null;index" json:"status"`
	LastUpdated   time.Time   `gorm:"not null;index" json:"last_updated"`
	CreatedAt     time.Time   `json:"created_at"`

	// Relationships
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"hospital,omitempty"`
}

// TableName specifies the table name for StockRecord model
func (StockRecord) TableName() string {
	return "stock_records"
}

// BeforeCreate assigns an opaque id when the caller did not set one
func (s *StockRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StockKey identifies the record a report applies to
type StockKey struct {
	HospitalID    string
	AntivenomType string
	BatchNumber   string
}

// String renders the key for lock tables and log fields
func (k StockKey) String() string {
	return k.HospitalID + "|" + k.AntivenomType + "|" + k.BatchNumber
}

// Key returns the identity a record is reported under
func (s *StockRecord) Key() StockKey {
	return StockKey{
		HospitalID:    s.HospitalID,
		AntivenomType: s.AntivenomType,
		BatchNumber:   s.BatchNumber,
	}
}
