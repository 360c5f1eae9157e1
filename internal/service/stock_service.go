package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/internal/logger"
	"github.com/MauriceOS/snaktox-sub001/internal/models"
	"github.com/MauriceOS/snaktox-sub001/internal/repository"
	"github.com/MauriceOS/snaktox-sub001/pkg/keylock"

	"go.uber.org/zap"
)

// sweepBatchSize bounds how many records one sweep pass refreshes
const sweepBatchSize = 500

// ReportStockInput is a hospital's report of one antivenom batch
type ReportStockInput struct {
	HospitalID    string      `json:"hospital_id" validate:"required,max=36"`
	AntivenomType string      `json:"antivenom_type" validate:"required,max=255"`
	Quantity      *int        `json:"quantity" validate:"required,gte=0"`
	ExpiryDate    models.Date `json:"expiry_date"`
	BatchNumber   string      `json:"batch_number" validate:"max=100"`
	Supplier      string      `json:"supplier" validate:"max=255"`
}

// StockSeedInput is initial stock submitted together with a new hospital listing
type StockSeedInput struct {
	AntivenomType string      `json:"antivenom_type" validate:"required,max=255"`
	Quantity      *int        `json:"quantity" validate:"required,gte=0"`
	ExpiryDate    models.Date `json:"expiry_date"`
	BatchNumber   string      `json:"batch_number" validate:"max=100"`
	Supplier      string      `json:"supplier" validate:"max=255"`
}

// UpdateStockInput is a partial update; nil fields are left unchanged.
// Status forces the resulting status. ClearRecall lifts a recall so the
// status is derived again.
type UpdateStockInput struct {
	Status      *models.StockStatus `json:"status"`
	Quantity    *int                `json:"quantity" validate:"omitempty,gte=0"`
	ExpiryDate  *models.Date        `json:"expiry_date"`
	BatchNumber *string             `json:"batch_number" validate:"omitempty,max=100"`
	Supplier    *string             `json:"supplier" validate:"omitempty,max=255"`
	ClearRecall bool                `json:"clear_recall"`
}

// StockService is the stock ledger: it owns every stock record write and the
// status rules applied to them. Writes to one (hospital, antivenom, batch) key
// are serialized; different keys proceed in parallel.
type StockService struct {
	stockRepo    *repository.StockRepository
	hospitalRepo *repository.HospitalRepository
	auditRepo    *repository.AuditRepository
	policy       StockPolicy
	locks        *keylock.Locker
	clock        func() time.Time
	logger       *zap.Logger
	recorder     Recorder
}

func NewStockService(
	stockRepo *repository.StockRepository,
	hospitalRepo *repository.HospitalRepository,
	auditRepo *repository.AuditRepository,
	policy StockPolicy,
	log *zap.Logger,
) *StockService {
	return &StockService{
		stockRepo:    stockRepo,
		hospitalRepo: hospitalRepo,
		auditRepo:    auditRepo,
		policy:       policy,
		locks:        keylock.New(),
		clock:        func() time.Time { return time.Now().UTC() },
		logger:       logger.OrNop(log),
		recorder:     nopRecorder{},
	}
}

// SetRecorder installs a metrics recorder
func (s *StockService) SetRecorder(r Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// SetClock replaces the time source
func (s *StockService) SetClock(clock func() time.Time) {
	s.clock = func() time.Time { return clock().UTC() }
}

// Policy returns the thresholds in force
func (s *StockService) Policy() StockPolicy {
	return s.policy
}

// Report creates or refreshes the record for (hospital, antivenom type, batch).
// Validation and the hospital lookup honour ctx; once they pass the write runs to completion.
func (s *StockService) Report(ctx context.Context, in ReportStockInput) (*models.StockRecord, error) {
	const op = "stock.report"

	in.HospitalID = strings.TrimSpace(in.HospitalID)
	in.AntivenomType = strings.TrimSpace(in.AntivenomType)
	in.BatchNumber = strings.TrimSpace(in.BatchNumber)
	in.Supplier = strings.TrimSpace(in.Supplier)

	if err := validateStruct(op, in); err != nil {
		return nil, err
	}
	if err := s.checkQuantity(op, "quantity", *in.Quantity); err != nil {
		return nil, err
	}
	if err := checkFutureExpiry(op, "expiry_date", in.ExpiryDate.Time, s.clock()); err != nil {
		return nil, err
	}

	exists, err := s.hospitalRepo.Exists(ctx, in.HospitalID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound(op, "hospital", in.HospitalID)
	}

	wctx := context.WithoutCancel(ctx)
	key := models.StockKey{HospitalID: in.HospitalID, AntivenomType: in.AntivenomType, BatchNumber: in.BatchNumber}

	unlock := s.locks.Lock(key.String())
	defer unlock()

	// a conflict means another process created the key between our read and insert; the retry updates it
	var record *models.StockRecord
	for attempt := 0; attempt < 2; attempt++ {
		record, err = s.applyReport(wctx, key, in)
		if !errors.Is(err, apperr.ErrConflict) {
			break
		}
	}
	if err != nil {
		s.logger.Error("stock report failed", zap.String("key", key.String()), zap.Error(err))
		return nil, err
	}

	s.recorder.StockReported(record.Status)
	s.logger.Info("stock reported",
		zap.String("record_id", record.ID),
		zap.String("hospital_id", record.HospitalID),
		zap.String("antivenom_type", record.AntivenomType),
		zap.String("batch_number", record.BatchNumber),
		zap.Int("quantity", record.Quantity),
		zap.String("status", string(record.Status)),
	)
	return record, nil
}

func (s *StockService) applyReport(ctx context.Context, key models.StockKey, in ReportStockInput) (*models.StockRecord, error) {
	var result *models.StockRecord

	err := s.stockRepo.WithinTransaction(ctx, func(stock *repository.StockRepository, audit *repository.AuditRepository) error {
		now := s.clock()
		expiry := in.ExpiryDate.UTC()

		existing, err := stock.GetByKey(ctx, key)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}

		if existing == nil {
			record := &models.StockRecord{
				HospitalID:    key.HospitalID,
				AntivenomType: key.AntivenomType,
				BatchNumber:   key.BatchNumber,
				Supplier:      in.Supplier,
				Quantity:      *in.Quantity,
				ExpiryDate:    expiry,
				Status:        s.policy.Resolve("", *in.Quantity, expiry, now, nil),
				LastUpdated:   now,
			}
			if err := stock.Create(ctx, record); err != nil {
				return err
			}
			result = record
			return audit.Create(ctx, auditEntry(record, models.AuditActionReport, "", nil, "first report"))
		}

		prevStatus, prevQty := existing.Status, existing.Quantity
		existing.Quantity = *in.Quantity
		existing.ExpiryDate = expiry
		if in.Supplier != "" {
			existing.Supplier = in.Supplier
		}
		existing.Status = s.policy.Resolve(existing.Status, existing.Quantity, expiry, now, nil)
		existing.LastUpdated = now

		if err := stock.Save(ctx, existing); err != nil {
			return err
		}
		result = existing
		return audit.Create(ctx, auditEntry(existing, models.AuditActionReport, prevStatus, &prevQty, ""))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update applies a partial change to an existing record.
func (s *StockService) Update(ctx context.Context, id string, in UpdateStockInput) (*models.StockRecord, error) {
	const op = "stock.update"

	if in.BatchNumber != nil {
		trimmed := strings.TrimSpace(*in.BatchNumber)
		in.BatchNumber = &trimmed
	}
	if in.Supplier != nil {
		trimmed := strings.TrimSpace(*in.Supplier)
		in.Supplier = &trimmed
	}

	if err := validateStruct(op, in); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, apperr.Validation(op, "status", fmt.Sprintf("unknown status %q", *in.Status))
	}
	if in.Quantity != nil {
		if err := s.checkQuantity(op, "quantity", *in.Quantity); err != nil {
			return nil, err
		}
	}
	if in.ExpiryDate != nil && in.ExpiryDate.IsZero() {
		return nil, apperr.Validation(op, "expiry_date", "must be a valid date")
	}
	if in.ClearRecall && in.Status != nil && *in.Status == models.StockStatusRecalled {
		return nil, apperr.Validation(op, "clear_recall", "cannot clear a recall while setting status RECALLED")
	}

	current, err := s.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wctx := context.WithoutCancel(ctx)
	keys := []string{current.Key().String()}
	if in.BatchNumber != nil {
		moved := current.Key()
		moved.BatchNumber = *in.BatchNumber
		keys = append(keys, moved.String())
	}

	unlock := s.locks.LockMany(keys...)
	defer unlock()

	var result *models.StockRecord
	err = s.stockRepo.WithinTransaction(wctx, func(stock *repository.StockRepository, audit *repository.AuditRepository) error {
		record, err := stock.GetByID(wctx, id)
		if err != nil {
			return err
		}
		if record.Key() != current.Key() {
			return apperr.Conflict(op, id, "batch number changed concurrently, retry")
		}

		now := s.clock()
		prevStatus, prevQty := record.Status, record.Quantity

		if in.Quantity != nil {
			record.Quantity = *in.Quantity
		}
		if in.ExpiryDate != nil {
			record.ExpiryDate = in.ExpiryDate.UTC()
		}
		if in.BatchNumber != nil {
			record.BatchNumber = *in.BatchNumber
		}
		if in.Supplier != nil {
			record.Supplier = *in.Supplier
		}

		base := record.Status
		details := ""
		if in.ClearRecall && base == models.StockStatusRecalled {
			base = ""
			details = "recall cleared"
		}
		if in.Status != nil {
			details = "status forced to " + string(*in.Status)
		}
		record.Status = s.policy.Resolve(base, record.Quantity, record.ExpiryDate, now, in.Status)
		record.LastUpdated = now

		if err := stock.Save(wctx, record); err != nil {
			return err
		}
		result = record
		return audit.Create(wctx, auditEntry(record, models.AuditActionUpdate, prevStatus, &prevQty, details))
	})
	if err != nil {
		s.logger.Error("stock update failed", zap.String("record_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("stock updated",
		zap.String("record_id", result.ID),
		zap.String("hospital_id", result.HospitalID),
		zap.Int("quantity", result.Quantity),
		zap.String("status", string(result.Status)),
	)
	return result, nil
}

// Get retrieves one stock record
func (s *StockService) Get(ctx context.Context, id string) (*models.StockRecord, error) {
	return s.stockRepo.GetByID(ctx, id)
}

// List retrieves records matching filter, most recently updated first
func (s *StockService) List(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperr.Validation("stock.list", "status", fmt.Sprintf("unknown status %q", filter.Status))
	}
	return s.stockRepo.List(ctx, filter)
}

// ByHospital lists a hospital's records; unknown hospitals are NotFound
func (s *StockService) ByHospital(ctx context.Context, hospitalID string, filter models.StockFilter) ([]models.StockRecord, error) {
	exists, err := s.hospitalRepo.Exists(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("stock.by_hospital", "hospital", hospitalID)
	}
	filter.HospitalID = hospitalID
	return s.List(ctx, filter)
}

// CurrentStock lists a hospital's AVAILABLE records, most recently updated first
func (s *StockService) CurrentStock(ctx context.Context, hospitalID string) ([]models.StockRecord, error) {
	return s.stockRepo.List(ctx, models.StockFilter{HospitalID: hospitalID, Status: models.StockStatusAvailable})
}

// FindLowStock lists AVAILABLE records holding fewer than threshold units, smallest first
func (s *StockService) FindLowStock(ctx context.Context, threshold int) ([]models.StockRecord, error) {
	if threshold < 1 || threshold > s.policy.MaxQuantity+1 {
		return nil, apperr.Validation("stock.find_low_stock", "threshold",
			fmt.Sprintf("must be between 1 and %d", s.policy.MaxQuantity+1))
	}
	return s.stockRepo.FindLowStock(ctx, threshold)
}

// FindExpired lists AVAILABLE records already past their expiry date, earliest first.
// This is the strict read-time rule; the write-time warning window does not apply here.
func (s *StockService) FindExpired(ctx context.Context) ([]models.StockRecord, error) {
	return s.stockRepo.FindExpired(ctx, s.clock())
}

// History returns the audit trail of a record, oldest first
func (s *StockService) History(ctx context.Context, id string) ([]models.StockAuditLog, error) {
	if _, err := s.stockRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByRecord(ctx, id)
}

// BuildSeedRecords validates seed stock and derives each record's status.
// The records are not persisted.
func (s *StockService) BuildSeedRecords(op string, seeds []StockSeedInput) ([]models.StockRecord, error) {
	now := s.clock()
	seen := make(map[string]bool, len(seeds))
	records := make([]models.StockRecord, 0, len(seeds))

	for i, seed := range seeds {
		field := fmt.Sprintf("antivenom_stock[%d]", i)
		seed.AntivenomType = strings.TrimSpace(seed.AntivenomType)
		seed.BatchNumber = strings.TrimSpace(seed.BatchNumber)
		seed.Supplier = strings.TrimSpace(seed.Supplier)

		if err := validateStruct(op, seed); err != nil {
			var appErr *apperr.Error
			if errors.As(err, &appErr) {
				appErr.Field = field + "." + appErr.Field
			}
			return nil, err
		}
		if err := s.checkQuantity(op, field+".quantity", *seed.Quantity); err != nil {
			return nil, err
		}
		if err := checkFutureExpiry(op, field+".expiry_date", seed.ExpiryDate.Time, now); err != nil {
			return nil, err
		}

		dedup := seed.AntivenomType + "|" + seed.BatchNumber
		if seen[dedup] {
			return nil, apperr.Validation(op, field, "duplicate antivenom type and batch number")
		}
		seen[dedup] = true

		expiry := seed.ExpiryDate.UTC()
		records = append(records, models.StockRecord{
			AntivenomType: seed.AntivenomType,
			BatchNumber:   seed.BatchNumber,
			Supplier:      seed.Supplier,
			Quantity:      *seed.Quantity,
			ExpiryDate:    expiry,
			Status:        s.policy.Derive(*seed.Quantity, expiry, now),
			LastUpdated:   now,
		})
	}
	return records, nil
}

// SweepExpiring eagerly re-derives records that entered the expiry warning window
// without a write. RECALLED records are untouched. It returns how many records changed.
func (s *StockService) SweepExpiring(ctx context.Context) (int, error) {
	cutoff := s.clock().Add(s.policy.ExpiryWarning)
	candidates, err := s.stockRepo.FindExpiringUnflagged(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		ok, err := s.refresh(ctx, c)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

// refresh re-derives a single record under its key lock
func (s *StockService) refresh(ctx context.Context, candidate models.StockRecord) (bool, error) {
	unlock := s.locks.Lock(candidate.Key().String())
	defer unlock()

	wctx := context.WithoutCancel(ctx)
	changed := false
	err := s.stockRepo.WithinTransaction(wctx, func(stock *repository.StockRepository, audit *repository.AuditRepository) error {
		record, err := stock.GetByID(wctx, candidate.ID)
		if err != nil {
			return err
		}
		// moved to another batch since listing; the next sweep sees it under its live key
		if record.Key() != candidate.Key() {
			return nil
		}

		now := s.clock()
		next := s.policy.Resolve(record.Status, record.Quantity, record.ExpiryDate, now, nil)
		if next == record.Status {
			return nil
		}

		prevStatus, prevQty := record.Status, record.Quantity
		record.Status = next
		record.LastUpdated = now
		if err := stock.Save(wctx, record); err != nil {
			return err
		}
		changed = true
		return audit.Create(wctx, auditEntry(record, models.AuditActionSweep, prevStatus, &prevQty, "expiry window reached"))
	})
	return changed, err
}

func (s *StockService) checkQuantity(op, field string, quantity int) error {
	if quantity < 0 || quantity > s.policy.MaxQuantity {
		return apperr.Validation(op, field, fmt.Sprintf("must be between 0 and %d", s.policy.MaxQuantity))
	}
	return nil
}

func checkFutureExpiry(op, field string, expiry, now time.Time) error {
	if expiry.IsZero() {
		return apperr.Validation(op, field, "is required")
	}
	if !expiry.After(now) {
		return apperr.Validation(op, field, "must be in the future")
	}
	return nil
}

func auditEntry(record *models.StockRecord, action string, prevStatus models.StockStatus, prevQty *int, details string) *models.StockAuditLog {
	return &models.StockAuditLog{
		RecordID:         record.ID,
		HospitalID:       record.HospitalID,
		Action:           action,
		PreviousStatus:   prevStatus,
		NewStatus:        record.Status,
		PreviousQuantity: prevQty,
		NewQuantity:      record.Quantity,
		Details:          details,
	}
}
