package service

import (
	"context"
	"strings"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/internal/geo"
	"github.com/MauriceOS/snaktox-sub001/internal/logger"
	"github.com/MauriceOS/snaktox-sub001/internal/models"
	"github.com/MauriceOS/snaktox-sub001/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type CoordinatesInput struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

type ContactInfoInput struct {
	Phone     string `json:"phone" validate:"required,max=50"`
	Emergency string `json:"emergency" validate:"required,max=50"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Website   string `json:"website" validate:"omitempty,url,max=255"`
}

type OperatingHoursInput struct {
	Emergency string `json:"emergency" validate:"required,max=100"`
	General   string `json:"general" validate:"required,max=100"`
}

// CreateHospitalInput is a new listing. EmergencyServices defaults to true when omitted.
type CreateHospitalInput struct {
	Name              string               `json:"name" validate:"required,max=255"`
	Location          string               `json:"location" validate:"required"`
	Country           string               `json:"country" validate:"required,iso3166_1_alpha2"`
	Coordinates       *CoordinatesInput    `json:"coordinates" validate:"required"`
	ContactInfo       *ContactInfoInput    `json:"contact_info" validate:"required"`
	AntivenomStock    []StockSeedInput     `json:"antivenom_stock" validate:"required"`
	Specialties       []string             `json:"specialties" validate:"required,min=1,dive,required,max=100"`
	OperatingHours    *OperatingHoursInput `json:"operating_hours" validate:"required"`
	EmergencyServices *bool                `json:"emergency_services"`
	Source            string               `json:"source" validate:"required,max=255"`
}

// ReadPolicy narrows which hospitals a read may return
type ReadPolicy struct {
	VerifiedOnly bool
}

// NearbyHospital is one radius search hit
type NearbyHospital struct {
	Hospital   *models.Hospital `json:"hospital"`
	DistanceKm float64          `json:"distance_km"`
}

// HospitalService is the hospital directory. It composes verification with
// radius search and exposes each hospital's current stock.
type HospitalService struct {
	hospitalRepo *repository.HospitalRepository
	stock        *StockService
	geoOpts      geo.Options
	logger       *zap.Logger
	recorder     Recorder
}

func NewHospitalService(
	hospitalRepo *repository.HospitalRepository,
	stock *StockService,
	geoOpts geo.Options,
	log *zap.Logger,
) *HospitalService {
	return &HospitalService{
		hospitalRepo: hospitalRepo,
		stock:        stock,
		geoOpts:      geoOpts,
		logger:       logger.OrNop(log),
		recorder:     nopRecorder{},
	}
}

// SetRecorder installs a metrics recorder
func (s *HospitalService) SetRecorder(r Recorder) {
	if r != nil {
		s.recorder = r
	}
}

// Create stores a new PENDING hospital together with its seed stock
func (s *HospitalService) Create(ctx context.Context, in CreateHospitalInput) (*models.Hospital, []models.StockRecord, error) {
	const op = "hospital.create"

	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Country = strings.ToUpper(strings.TrimSpace(in.Country))
	in.Source = strings.TrimSpace(in.Source)
	for i := range in.Specialties {
		in.Specialties[i] = strings.TrimSpace(in.Specialties[i])
	}

	if err := validateStruct(op, in); err != nil {
		return nil, nil, err
	}

	records, err := s.stock.BuildSeedRecords(op, in.AntivenomStock)
	if err != nil {
		return nil, nil, err
	}

	emergency := true
	if in.EmergencyServices != nil {
		emergency = *in.EmergencyServices
	}

	hospital := &models.Hospital{
		Name:      in.Name,
		Location:  in.Location,
		Country:   in.Country,
		Latitude:  *in.Coordinates.Lat,
		Longitude: *in.Coordinates.Lng,
		ContactInfo: models.ContactInfo{
			Phone:     strings.TrimSpace(in.ContactInfo.Phone),
			Emergency: strings.TrimSpace(in.ContactInfo.Emergency),
			Email:     strings.TrimSpace(in.ContactInfo.Email),
			Website:   strings.TrimSpace(in.ContactInfo.Website),
		},
		Specialties: datatypes.JSONSlice[string](uniqueStrings(in.Specialties)),
		OperatingHours: models.OperatingHours{
			Emergency: strings.TrimSpace(in.OperatingHours.Emergency),
			General:   strings.TrimSpace(in.OperatingHours.General),
		},
		EmergencyServices: emergency,
		VerifiedStatus:    models.VerifiedStatusPending,
		Source:            in.Source,
		IsActive:          true,
	}

	if err := s.hospitalRepo.CreateWithStock(ctx, hospital, records); err != nil {
		s.logger.Error("hospital create failed", zap.String("name", hospital.Name), zap.Error(err))
		return nil, nil, err
	}

	hospital.Annotate()
	s.logger.Info("hospital created",
		zap.String("hospital_id", hospital.ID),
		zap.String("name", hospital.Name),
		zap.String("country", hospital.Country),
		zap.Int("seed_records", len(records)),
	)
	return hospital, records, nil
}

// Get retrieves a hospital; under a verified-only policy PENDING listings are NotFound
func (s *HospitalService) Get(ctx context.Context, id string, policy ReadPolicy) (*models.Hospital, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if policy.VerifiedOnly && !hospital.IsVerified() {
		return nil, apperr.NotFound("hospital.get", "hospital", id)
	}
	hospital.Annotate()
	return hospital, nil
}

// List retrieves hospitals matching filter ordered by name
func (s *HospitalService) List(ctx context.Context, filter models.HospitalFilter) ([]models.Hospital, error) {
	filter.Country = strings.ToUpper(strings.TrimSpace(filter.Country))
	hospitals, err := s.hospitalRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range hospitals {
		hospitals[i].Annotate()
	}
	return hospitals, nil
}

// Nearby returns verified hospitals within radiusKm of center, nearest first
func (s *HospitalService) Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]NearbyHospital, error) {
	const op = "hospital.nearby"
	start := time.Now()

	if err := geo.ValidateQuery(op, center, radiusKm, s.geoOpts); err != nil {
		return nil, err
	}

	candidates, err := s.hospitalRepo.FindInBounds(ctx, geo.BoundingBox(center, radiusKm))
	if err != nil {
		return nil, err
	}

	matches, err := geo.FindWithinRadius(ctx, center, radiusKm, candidates, s.geoOpts)
	if err != nil {
		return nil, err
	}

	results := make([]NearbyHospital, 0, len(matches))
	for _, m := range matches {
		m.Item.Annotate()
		results = append(results, NearbyHospital{Hospital: m.Item, DistanceKm: m.DistanceKm})
	}

	s.recorder.NearbyQuery(time.Since(start), len(results))
	s.logger.Debug("nearby query",
		zap.Float64("lat", center.Lat),
		zap.Float64("lng", center.Lng),
		zap.Float64("radius_km", radiusKm),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// CurrentStock returns the hospital's AVAILABLE stock, most recently updated first
func (s *HospitalService) CurrentStock(ctx context.Context, hospitalID string) ([]models.StockRecord, error) {
	exists, err := s.hospitalRepo.Exists(ctx, hospitalID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("hospital.current_stock", "hospital", hospitalID)
	}
	return s.stock.CurrentStock(ctx, hospitalID)
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
