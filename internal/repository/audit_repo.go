package repository

import (
	"context"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends a stock audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *models.StockAuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.Infrastructure("audit.create", err)
	}
	return nil
}

// ListByRecord retrieves the audit trail of a stock record, oldest first
func (r *AuditRepository) ListByRecord(ctx context.Context, recordID string) ([]models.StockAuditLog, error) {
	var entries []models.StockAuditLog
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, apperr.Infrastructure("audit.list", err)
	}
	return entries, nil
}
