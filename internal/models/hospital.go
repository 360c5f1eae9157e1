package models

import (
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/geo"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VerifiedStatus tracks whether a hospital listing passed external verification
type VerifiedStatus string

const (
	VerifiedStatusPending  VerifiedStatus = "PENDING"
	VerifiedStatusVerified VerifiedStatus = "VERIFIED"
)

// WarningNoEmergencyServices flags listings that cannot take emergency admissions
const WarningNoEmergencyServices = "NO_EMERGENCY_SERVICES"

// ContactInfo is embedded into the hospitals table with a contact_ prefix
type ContactInfo struct {
	Phone     string `gorm:"size:50;not null" json:"phone"`
	Emergency string `gorm:"size:50;not null" json:"emergency"`
	Email     string `gorm:"size:255" json:"email,omitempty"`
	Website   string `gorm:"size:255" json:"website,omitempty"`
}

// OperatingHours is embedded into the hospitals table with an hours_ prefix
type OperatingHours struct {
	Emergency string `gorm:"size:100" json:"emergency"`
	General   string `gorm:"size:100" json:"general"`
}

// Hospital represents a facility able to treat snakebite emergencies
type Hospital struct {
	ID                string                      `gorm:"primaryKey;size:36" json:"id"`
	Name              string                      `gorm:"size:255;not null;index" json:"name"`
	Location          string                      `gorm:"type:text;not null" json:"location"`
	Country           string                      `gorm:"size:2;not null;index" json:"country"`
	Latitude          float64                     `gorm:"not null;index:idx_hospitals_coordinates,priority:1" json:"latitude"`
	Longitude         float64                     `gorm:"not null;index:idx_hospitals_coordinates,priority:2" json:"longitude"`
	ContactInfo       ContactInfo                 `gorm:"embedded;embeddedPrefix:contact_" json:"contact_info"`
	Specialties       datatypes.JSONSlice[string] `json:"specialties"`
	OperatingHours    OperatingHours              `gorm:"embedded;embeddedPrefix:hours_" json:"operating_hours"`
	EmergencyServices bool                        `gorm:"not null" json:"emergency_services"`
	VerifiedStatus    VerifiedStatus              `gorm:"size:20;not null;index" json:"verified_status"`
	Source            string                      `gorm:"size:255;not null" json:"source"`
	IsActive          bool                        `gorm:"not null;index" json:"is_active"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`

	// Warnings is computed on read and never persisted
	Warnings []string `gorm:"-" json:"warnings,omitempty"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}

// BeforeCreate assigns an opaque id when the caller did not set one
func (h *Hospital) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// IsVerified reports whether the hospital is eligible for emergency routing
func (h *Hospital) IsVerified() bool {
	return h.VerifiedStatus == VerifiedStatusVerified
}

// Annotate fills the computed Warnings field
func (h *Hospital) Annotate() {
	h.Warnings = nil
	if !h.EmergencyServices {
		h.Warnings = append(h.Warnings, WarningNoEmergencyServices)
	}
}

// GeoID implements geo.Locatable
func (h *Hospital) GeoID() string {
	return h.ID
}

// GeoPoint implements geo.Locatable
func (h *Hospital) GeoPoint() geo.Point {
	return geo.Point{Lat: h.Latitude, Lng: h.Longitude}
}
