package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/internal/database"
	"github.com/MauriceOS/snaktox-sub001/internal/models"

	"gorm.io/gorm"
)

// StatusTypeCount is one (status, antivenom type) bucket of stock records
type StatusTypeCount struct {
	Status        models.StockStatus `json:"status"`
	AntivenomType string             `json:"antivenom_type"`
	Records       int64              `json:"records"`
	Quantity      int64              `json:"quantity"`
}

// LabelCount is a count grouped by a single label column
type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// StatsRepository runs the read-only queries behind network statistics
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepo(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Snapshot runs fn with a repository bound to a single read transaction
func (r *StatsRepository) Snapshot(ctx context.Context, fn func(stats *StatsRepository) error) error {
	err := database.ReadSnapshot(ctx, r.db, func(tx *gorm.DB) error {
		return fn(NewStatsRepo(tx))
	})
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Infrastructure("stats.snapshot", err)
}

// CountHospitals counts active hospitals, optionally restricted to verified or non-emergency listings
func (r *StatsRepository) CountHospitals(verifiedOnly, withoutEmergencyOnly bool) (int64, error) {
	var count int64
	q := r.db.Model(&models.Hospital{}).Where("is_active = ?", true)
	if verifiedOnly {
		q = q.Where("verified_status = ?", models.VerifiedStatusVerified)
	}
	if withoutEmergencyOnly {
		q = q.Where("emergency_services = ?", false)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, apperr.Infrastructure("stats.count_hospitals", err)
	}
	return count, nil
}

// StockByStatusAndType groups stock records by status and antivenom type
func (r *StatsRepository) StockByStatusAndType() ([]StatusTypeCount, error) {
	var rows []StatusTypeCount
	err := r.db.Model(&models.StockRecord{}).
		Select("status, antivenom_type, COUNT(*) AS records, COALESCE(SUM(quantity), 0) AS quantity").
		Group("status, antivenom_type").
		Order("status ASC, antivenom_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Infrastructure("stats.stock_by_status", err)
	}
	return rows, nil
}

// CountBelowThreshold counts usable records (AVAILABLE or LOW_STOCK) holding fewer than threshold units
func (r *StatsRepository) CountBelowThreshold(threshold int) (int64, error) {
	var count int64
	err := r.db.Model(&models.StockRecord{}).
		Where("status IN ? AND quantity < ?",
			[]models.StockStatus{models.StockStatusAvailable, models.StockStatusLowStock}, threshold).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Infrastructure("stats.count_below_threshold", err)
	}
	return count, nil
}

// CountAvailablePastExpiry counts AVAILABLE records whose expiry date is before now
func (r *StatsRepository) CountAvailablePastExpiry(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.StockRecord{}).
		Where("status = ? AND expiry_date < ?", models.StockStatusAvailable, now).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Infrastructure("stats.count_past_expiry", err)
	}
	return count, nil
}

// MaterialsBy groups active education materials by column ("category" or "language")
func (r *StatsRepository) MaterialsBy(column string) ([]LabelCount, error) {
	if column != "category" && column != "language" {
		return nil, apperr.Validation("stats.materials_by", "column", "must be category or language")
	}
	var rows []LabelCount
	err := r.db.Model(&models.EducationMaterial{}).
		Select(column+" AS label, COUNT(*) AS count").
		Where("is_active = ?", true).
		Group(column).
		Order(column + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Infrastructure("stats.materials_by", err)
	}
	return rows, nil
}

// SOSByStatus groups SOS reports by status
func (r *StatsRepository) SOSByStatus() ([]LabelCount, error) {
	var rows []LabelCount
	err := r.db.Model(&models.SOSReport{}).
		Select("status AS label, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Infrastructure("stats.sos_by_status", err)
	}
	return rows, nil
}

// CountSOSSince counts SOS reports created at or after since
func (r *StatsRepository) CountSOSSince(since time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&models.SOSReport{}).Where("created_at >= ?", since).Count(&count).Error; err != nil {
		return 0, apperr.Infrastructure("stats.count_sos_since", err)
	}
	return count, nil
}
