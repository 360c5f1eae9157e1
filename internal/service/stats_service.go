package service

import (
	"context"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/models"
	"github.com/MauriceOS/snaktox-sub001/internal/repository"
)

type HospitalStats struct {
	Active                   int64 `json:"active"`
	Verified                 int64 `json:"verified"`
	WithoutEmergencyServices int64 `json:"without_emergency_services"`
}

type StockStats struct {
	ByStatusAndType        []repository.StatusTypeCount `json:"by_status_and_type"`
	ByStatus               map[models.StockStatus]int64 `json:"by_status"`
	TotalRecords           int64                        `json:"total_records"`
	TotalAvailableQuantity int64                        `json:"total_available_quantity"`
	LowStockThreshold      int                          `json:"low_stock_threshold"`
	BelowLowStockThreshold int64                        `json:"below_low_stock_threshold"`
	Expired                int64                        `json:"expired"`
	// AvailablePastExpiry counts AVAILABLE records already past expiry that no write has refreshed yet
	AvailablePastExpiry int64 `json:"available_past_expiry"`
}

type EducationStats struct {
	ByCategory []repository.LabelCount `json:"by_category"`
	ByLanguage []repository.LabelCount `json:"by_language"`
}

type SOSStats struct {
	ByStatus []repository.LabelCount `json:"by_status"`
	Last24h  int64                   `json:"last_24h"`
	Last7d   int64                   `json:"last_7d"`
}

// Statistics is a network summary computed from one read snapshot
type Statistics struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Hospitals   HospitalStats  `json:"hospitals"`
	Stock       StockStats     `json:"stock"`
	Education   EducationStats `json:"education"`
	SOS         SOSStats       `json:"sos"`
}

// StatsService computes Statistics. It never writes.
type StatsService struct {
	statsRepo *repository.StatsRepository
	policy    StockPolicy
	clock     func() time.Time
}

func NewStatsService(statsRepo *repository.StatsRepository, policy StockPolicy) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		policy:    policy,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (s *StatsService) SetClock(clock func() time.Time) {
	s.clock = func() time.Time { return clock().UTC() }
}

// Summarize folds hospital, stock, education and SOS state into Statistics.
// All counts are read inside a single transaction so they describe the same instant.
func (s *StatsService) Summarize(ctx context.Context) (*Statistics, error) {
	now := s.clock()
	stats := &Statistics{
		GeneratedAt: now,
		Stock: StockStats{
			ByStatus:          make(map[models.StockStatus]int64, len(models.StockStatuses)),
			LowStockThreshold: s.policy.LowStockThreshold,
		},
	}

	err := s.statsRepo.Snapshot(ctx, func(repo *repository.StatsRepository) error {
		var err error
		if stats.Hospitals.Active, err = repo.CountHospitals(false, false); err != nil {
			return err
		}
		if stats.Hospitals.Verified, err = repo.CountHospitals(true, false); err != nil {
			return err
		}
		if stats.Hospitals.WithoutEmergencyServices, err = repo.CountHospitals(false, true); err != nil {
			return err
		}

		if stats.Stock.ByStatusAndType, err = repo.StockByStatusAndType(); err != nil {
			return err
		}
		if stats.Stock.BelowLowStockThreshold, err = repo.CountBelowThreshold(s.policy.LowStockThreshold); err != nil {
			return err
		}
		if stats.Stock.AvailablePastExpiry, err = repo.CountAvailablePastExpiry(now); err != nil {
			return err
		}

		if stats.Education.ByCategory, err = repo.MaterialsBy("category"); err != nil {
			return err
		}
		if stats.Education.ByLanguage, err = repo.MaterialsBy("language"); err != nil {
			return err
		}

		if stats.SOS.ByStatus, err = repo.SOSByStatus(); err != nil {
			return err
		}
		if stats.SOS.Last24h, err = repo.CountSOSSince(now.Add(-24 * time.Hour)); err != nil {
			return err
		}
		stats.SOS.Last7d, err = repo.CountSOSSince(now.Add(-7 * 24 * time.Hour))
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, status := range models.StockStatuses {
		stats.Stock.ByStatus[status] = 0
	}
	for _, row := range stats.Stock.ByStatusAndType {
		stats.Stock.ByStatus[row.Status] += row.Records
		stats.Stock.TotalRecords += row.Records
		if row.Status == models.StockStatusAvailable {
			stats.Stock.TotalAvailableQuantity += row.Quantity
		}
	}
	stats.Stock.Expired = stats.Stock.ByStatus[models.StockStatusExpired]

	return stats, nil
}
