package models

import "time"

// EducationMaterial is owned by the content service; only aggregated here
type EducationMaterial struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Category  string    `gorm:"size:100;not null;index" json:"category"`
	Language  string    `gorm:"size:10;not null;index" json:"language"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for EducationMaterial model
func (EducationMaterial) TableName() string {
	return "education_materials"
}

// SOSReport is an emergency request raised by the public; only aggregated here
type SOSReport struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	HospitalID *string   `gorm:"size:36;index" json:"hospital_id,omitempty"`
	Status     string    `gorm:"size:20;not null;index" json:"status"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for SOSReport model
func (SOSReport) TableName() string {
	return "sos_reports"
}
