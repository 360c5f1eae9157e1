package service

import (
	"sync"
	"testing"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/database"
	"github.com/MauriceOS/snaktox-sub001/internal/geo"
	"github.com/MauriceOS/snaktox-sub001/internal/models"
	"github.com/MauriceOS/snaktox-sub001/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const day = 24 * time.Hour

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	db        *gorm.DB
	clock     *testClock
	stock     *StockService
	hospitals *HospitalService
	stats     *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := database.NewTestDB(t)
	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	hospitalRepo := repository.NewHospitalRepo(db)
	stock := NewStockService(
		repository.NewStockRepo(db),
		hospitalRepo,
		repository.NewAuditRepo(db),
		DefaultStockPolicy(),
		zap.NewNop(),
	)
	stock.SetClock(clock.Now)

	stats := NewStatsService(repository.NewStatsRepo(db), DefaultStockPolicy())
	stats.SetClock(clock.Now)

	return &fixture{
		db:        db,
		clock:     clock,
		stock:     stock,
		hospitals: NewHospitalService(hospitalRepo, stock, geo.DefaultOptions(), zap.NewNop()),
		stats:     stats,
	}
}

func hospitalInput(name string, lat, lng float64) CreateHospitalInput {
	return CreateHospitalInput{
		Name:           name,
		Location:       name + " district",
		Country:        "ke",
		Coordinates:    &CoordinatesInput{Lat: &lat, Lng: &lng},
		ContactInfo:    &ContactInfoInput{Phone: "+254700000000", Emergency: "+254711111111"},
		AntivenomStock: []StockSeedInput{},
		Specialties:    []string{"toxicology", "emergency"},
		OperatingHours: &OperatingHoursInput{Emergency: "24/7", General: "08:00-17:00"},
		Source:         "ministry-of-health",
	}
}

// createHospital stores a listing and optionally marks it verified the way the external verifier would
func (f *fixture) createHospital(t *testing.T, name string, lat, lng float64, verified bool) *models.Hospital {
	t.Helper()
	h, _, err := f.hospitals.Create(t.Context(), hospitalInput(name, lat, lng))
	require.NoError(t, err)
	if verified {
		require.NoError(t, f.db.Model(&models.Hospital{}).
			Where("id = ?", h.ID).
			Update("verified_status", models.VerifiedStatusVerified).Error)
		h.VerifiedStatus = models.VerifiedStatusVerified
	}
	return h
}

func (f *fixture) report(t *testing.T, hospitalID, antivenom, batch string, qty int, expiresIn time.Duration) *models.StockRecord {
	t.Helper()
	rec, err := f.stock.Report(t.Context(), ReportStockInput{
		HospitalID:    hospitalID,
		AntivenomType: antivenom,
		Quantity:      &qty,
		ExpiryDate:    models.Date{Time: f.clock.Now().Add(expiresIn)},
		BatchNumber:   batch,
	})
	require.NoError(t, err)
	return rec
}

func intPtr(v int) *int { return &v }

func statusPtr(s models.StockStatus) *models.StockStatus { return &s }
