package repository

import (
	"context"
	"errors"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/internal/geo"
	"github.com/MauriceOS/snaktox-sub001/internal/models"

	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// List retrieves active hospitals matching filter, ordered by name
func (r *HospitalRepository) List(ctx context.Context, filter models.HospitalFilter) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if filter.VerifiedOnly {
		q = q.Where("verified_status = ?", models.VerifiedStatusVerified)
	}
	if filter.Country != "" {
		q = q.Where("country = ?", filter.Country)
	}
	if filter.Source != "" {
		q = q.Where("source = ?", filter.Source)
	}
	if err := q.Order("name ASC, id ASC").Find(&hospitals).Error; err != nil {
		return nil, apperr.Infrastructure("hospital.list", err)
	}
	return hospitals, nil
}

// GetByID retrieves an active hospital by ID
func (r *HospitalRepository) GetByID(ctx context.Context, id string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("hospital.get", "hospital", id)
		}
		return nil, apperr.Infrastructure("hospital.get", err)
	}
	return &hospital, nil
}

// Exists reports whether an active hospital with id exists
func (r *HospitalRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Hospital{}).
		Where("id = ? AND is_active = ?", id, true).
		Count(&count).Error
	if err != nil {
		return false, apperr.Infrastructure("hospital.exists", err)
	}
	return count > 0, nil
}

// FindInBounds retrieves verified, active hospitals inside box.
// The box is a coarse prefilter served by idx_hospitals_coordinates; callers refine by distance.
func (r *HospitalRepository) FindInBounds(ctx context.Context, box geo.Bounds) ([]*models.Hospital, error) {
	var hospitals []*models.Hospital
	q := r.db.WithContext(ctx).
		Where("is_active = ? AND verified_status = ?", true, models.VerifiedStatusVerified).
		Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.FullLongitude {
		q = q.Where("longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}
	if err := q.Find(&hospitals).Error; err != nil {
		return nil, apperr.Infrastructure("hospital.find_in_bounds", err)
	}
	return hospitals, nil
}

// CreateWithStock creates a hospital and its seed stock records in one transaction
func (r *HospitalRepository) CreateWithStock(ctx context.Context, hospital *models.Hospital, records []models.StockRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(hospital).Error; err != nil {
			return err
		}

		audit := NewAuditRepo(tx)
		for i := range records {
			records[i].HospitalID = hospital.ID
			if err := tx.Create(&records[i]).Error; err != nil {
				return err
			}
			if err := audit.Create(ctx, &models.StockAuditLog{
				RecordID:    records[i].ID,
				HospitalID:  hospital.ID,
				Action:      models.AuditActionReport,
				NewStatus:   records[i].Status,
				NewQuantity: records[i].Quantity,
				Details:     "seeded with hospital listing",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Validation("hospital.create", "antivenom_stock", "duplicate antivenom type and batch in seed stock")
		}
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Infrastructure("hospital.create", err)
	}
	return nil
}
