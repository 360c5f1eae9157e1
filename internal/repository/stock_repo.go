package repository

import (
	"context"
	"errors"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/internal/models"

	"gorm.io/gorm"
)

type StockRepository struct {
	db *gorm.DB
}

func NewStockRepo(db *gorm.DB) *StockRepository {
	return &StockRepository{db: db}
}

// WithinTransaction runs fn with stock and audit repositories bound to one transaction.
// Any error returned by fn rolls the transaction back.
func (r *StockRepository) WithinTransaction(ctx context.Context, fn func(stock *StockRepository, audit *AuditRepository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStockRepo(tx), NewAuditRepo(tx))
	})
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Infrastructure("stock.transaction", err)
}

// GetByID retrieves a stock record by ID
func (r *StockRepository) GetByID(ctx context.Context, id string) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("stock.get", "stock record", id)
		}
		return nil, apperr.Infrastructure("stock.get", err)
	}
	return &record, nil
}

// GetByKey retrieves the stock record reported under key
func (r *StockRepository) GetByKey(ctx context.Context, key models.StockKey) (*models.StockRecord, error) {
	var record models.StockRecord
	err := r.db.WithContext(ctx).
		Where("hospital_id = ? AND antivenom_type = ? AND batch_number = ?", key.HospitalID, key.AntivenomType, key.BatchNumber).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("stock.get_by_key", "stock record", key.String())
		}
		return nil, apperr.Infrastructure("stock.get_by_key", err)
	}
	return &record, nil
}

// Create inserts a new stock record
func (r *StockRepository) Create(ctx context.Context, record *models.StockRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("stock.create", record.Key().String(), "stock record already exists for this key")
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperr.NotFound("stock.create", "hospital", record.HospitalID)
		}
		return apperr.Infrastructure("stock.create", err)
	}
	return nil
}

// Save writes every column of an existing stock record
func (r *StockRepository) Save(ctx context.Context, record *models.StockRecord) error {
	if err := r.db.WithContext(ctx).Omit("Hospital").Save(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Conflict("stock.save", record.Key().String(), "another stock record already uses this key")
		}
		return apperr.Infrastructure("stock.save", err)
	}
	return nil
}

// List retrieves stock records matching filter, most recently updated first
func (r *StockRepository) List(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error) {
	var records []models.StockRecord
	q := r.db.WithContext(ctx)
	if filter.HospitalID != "" {
		q = q.Where("hospital_id = ?", filter.HospitalID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AntivenomType != "" {
		q = q.Where("antivenom_type = ?", filter.AntivenomType)
	}
	if err := q.Order("last_updated DESC, id ASC").Find(&records).Error; err != nil {
		return nil, apperr.Infrastructure("stock.list", err)
	}
	return records, nil
}

// FindLowStock retrieves AVAILABLE records with quantity below threshold, smallest first
func (r *StockRepository) FindLowStock(ctx context.Context, threshold int) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND quantity < ?", models.StockStatusAvailable, threshold).
		Order("quantity ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, apperr.Infrastructure("stock.find_low_stock", err)
	}
	return records, nil
}

// FindExpired retrieves AVAILABLE records whose expiry date is before now, earliest first
func (r *StockRepository) FindExpired(ctx context.Context, now time.Time) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date < ?", models.StockStatusAvailable, now).
		Order("expiry_date ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, apperr.Infrastructure("stock.find_expired", err)
	}
	return records, nil
}

// FindExpiringUnflagged retrieves records expiring at or before cutoff that are
// neither EXPIRED nor RECALLED yet
func (r *StockRepository) FindExpiringUnflagged(ctx context.Context, cutoff time.Time, limit int) ([]models.StockRecord, error) {
	var records []models.StockRecord
	err := r.db.WithContext(ctx).
		Where("expiry_date <= ? AND status NOT IN ?", cutoff,
			[]models.StockStatus{models.StockStatusExpired, models.StockStatusRecalled}).
		Order("expiry_date ASC, id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, apperr.Infrastructure("stock.find_expiring", err)
	}
	return records, nil
}
