package models

import "time"

// Stock audit actions
const (
	AuditActionReport = "report"
	AuditActionUpdate = "update"
	AuditActionSweep  = "sweep"
)

// StockAuditLog represents the stock_audit_logs table.
// One row is appended per stock mutation, inside the mutation's transaction.
type StockAuditLog struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	RecordID         string      `gorm:"size:36;not null;index" json:"record_id"`
	HospitalID       string      `gorm:"size:36;not null;index" json:"hospital_id"`
	Action           string      `gorm:"size:20;not null" json:"action"`
	PreviousStatus   StockStatus `gorm:"size:20" json:"previous_status,omitempty"`
	NewStatus        StockStatus `gorm:"size:20;not null" json:"new_status"`
	PreviousQuantity *int        `json:"previous_quantity,omitempty"`
	NewQuantity      int         `gorm:"not null" json:"new_quantity"`
	Details          string      `gorm:"type:text" json:"details,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// TableName specifies the table name for StockAuditLog model
func (StockAuditLog) TableName() string {
	return "stock_audit_logs"
}
