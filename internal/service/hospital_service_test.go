package service

import (
	"cmp"
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/apperr"
	"github.com/MauriceOS/snaktox-sub001/internal/geo"
	"github.com/MauriceOS/snaktox-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHospitalStartsPending(t *testing.T) {
	f := newFixture(t)

	in := hospitalInput("Kenyatta National", -1.3009, 36.8066)
	in.Specialties = []string{" toxicology ", "toxicology", "icu"}
	h, records, err := f.hospitals.Create(t.Context(), in)
	require.NoError(t, err)

	assert.NotEmpty(t, h.ID)
	assert.Equal(t, models.VerifiedStatusPending, h.VerifiedStatus)
	assert.Equal(t, "KE", h.Country)
	assert.True(t, h.EmergencyServices)
	assert.True(t, h.IsActive)
	assert.Empty(t, h.Warnings)
	assert.Equal(t, []string{"toxicology", "icu"}, []string(h.Specialties))
	assert.Empty(t, records)

	stored, err := f.hospitals.Get(t.Context(), h.ID, ReadPolicy{})
	require.NoError(t, err)
	assert.Equal(t, h.Name, stored.Name)
	assert.Equal(t, "+254711111111", stored.ContactInfo.Emergency)
	assert.Equal(t, "24/7", stored.OperatingHours.Emergency)
}

func TestCreateHospitalFlagsMissingEmergencyServices(t *testing.T) {
	f := newFixture(t)

	in := hospitalInput("Day Clinic", -1.28, 36.82)
	in.EmergencyServices = new(bool)
	h, _, err := f.hospitals.Create(t.Context(), in)
	require.NoError(t, err)
	assert.False(t, h.EmergencyServices)
	assert.Equal(t, []string{models.WarningNoEmergencyServices}, h.Warnings)

	listed, err := f.hospitals.List(t.Context(), models.HospitalFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, []string{models.WarningNoEmergencyServices}, listed[0].Warnings)
}

func TestCreateHospitalSeedsStock(t *testing.T) {
	f := newFixture(t)

	in := hospitalInput("Coast General", -4.0547, 39.6636)
	in.AntivenomStock = []StockSeedInput{
		{AntivenomType: "SAIMR polyvalent", Quantity: intPtr(40), ExpiryDate: models.Date{Time: f.clock.Now().Add(200 * day)}},
		{AntivenomType: "EchiTAb-Plus", Quantity: intPtr(4), ExpiryDate: models.Date{Time: f.clock.Now().Add(200 * day)}},
	}
	h, records, err := f.hospitals.Create(t.Context(), in)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.StockStatusAvailable, records[0].Status)
	assert.Equal(t, models.StockStatusLowStock, records[1].Status)

	current, err := f.hospitals.CurrentStock(t.Context(), h.ID)
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, "SAIMR polyvalent", current[0].AntivenomType)

	history, err := f.stock.History(t.Context(), records[0].ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCreateHospitalValidation(t *testing.T) {
	f := newFixture(t)
	past := models.Date{Time: f.clock.Now().Add(-day)}
	future := models.Date{Time: f.clock.Now().Add(100 * day)}

	tests := []struct {
		name   string
		mutate func(in *CreateHospitalInput)
		field  string
	}{
		{"missing name", func(in *CreateHospitalInput) { in.Name = " " }, "name"},
		{"unknown country", func(in *CreateHospitalInput) { in.Country = "XX" }, "country"},
		{"missing coordinates", func(in *CreateHospitalInput) { in.Coordinates = nil }, "coordinates"},
		{"latitude out of range", func(in *CreateHospitalInput) { lat := 91.0; in.Coordinates.Lat = &lat }, "coordinates.lat"},
		{"longitude out of range", func(in *CreateHospitalInput) { lng := -180.5; in.Coordinates.Lng = &lng }, "coordinates.lng"},
		{"missing phone", func(in *CreateHospitalInput) { in.ContactInfo.Phone = "" }, "contact_info.phone"},
		{"bad email", func(in *CreateHospitalInput) { in.ContactInfo.Email = "not-an-email" }, "contact_info.email"},
		{"missing stock seed", func(in *CreateHospitalInput) { in.AntivenomStock = nil }, "antivenom_stock"},
		{"no specialties", func(in *CreateHospitalInput) { in.Specialties = []string{} }, "specialties"},
		{"missing hours", func(in *CreateHospitalInput) { in.OperatingHours = nil }, "operating_hours"},
		{"missing source", func(in *CreateHospitalInput) { in.Source = "" }, "source"},
		{"past seed expiry", func(in *CreateHospitalInput) {
			in.AntivenomStock = []StockSeedInput{{AntivenomType: "x", Quantity: intPtr(1), ExpiryDate: past}}
		}, "antivenom_stock[0].expiry_date"},
		{"seed missing quantity", func(in *CreateHospitalInput) {
			in.AntivenomStock = []StockSeedInput{{AntivenomType: "x", ExpiryDate: future}}
		}, "antivenom_stock[0].quantity"},
		{"duplicate seed", func(in *CreateHospitalInput) {
			in.AntivenomStock = []StockSeedInput{
				{AntivenomType: "x", Quantity: intPtr(1), ExpiryDate: future},
				{AntivenomType: "x", Quantity: intPtr(2), ExpiryDate: future},
			}
		}, "antivenom_stock[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := hospitalInput("Valid", -1.0, 36.0)
			tt.mutate(&in)
			_, _, err := f.hospitals.Create(t.Context(), in)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}

	listed, err := f.hospitals.List(t.Context(), models.HospitalFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestGetHonoursReadPolicy(t *testing.T) {
	f := newFixture(t)
	pending := f.createHospital(t, "Pending", -1.0, 36.0, false)
	verified := f.createHospital(t, "Verified", -1.1, 36.1, true)

	_, err := f.hospitals.Get(t.Context(), pending.ID, ReadPolicy{VerifiedOnly: true})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := f.hospitals.Get(t.Context(), pending.ID, ReadPolicy{})
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)

	got, err = f.hospitals.Get(t.Context(), verified.ID, ReadPolicy{VerifiedOnly: true})
	require.NoError(t, err)
	assert.True(t, got.IsVerified())

	_, err = f.hospitals.Get(t.Context(), "missing", ReadPolicy{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListOrderedByName(t *testing.T) {
	f := newFixture(t)
	f.createHospital(t, "Mombasa", -4.05, 39.66, true)
	f.createHospital(t, "Eldoret", 0.51, 35.27, false)
	f.createHospital(t, "Athi River", -1.45, 36.97, true)

	all, err := f.hospitals.List(t.Context(), models.HospitalFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Athi River", "Eldoret", "Mombasa"}, []string{all[0].Name, all[1].Name, all[2].Name})

	verified, err := f.hospitals.List(t.Context(), models.HospitalFilter{VerifiedOnly: true})
	require.NoError(t, err)
	require.Len(t, verified, 2)
	assert.Equal(t, "Athi River", verified[0].Name)

	byCountry, err := f.hospitals.List(t.Context(), models.HospitalFilter{Country: "ke"})
	require.NoError(t, err)
	assert.Len(t, byCountry, 3)
}

func TestNearbyNairobiScenario(t *testing.T) {
	f := newFixture(t)
	h := f.createHospital(t, "Nairobi Hospital", -1.3048, 36.8156, true)

	results, err := f.hospitals.Nearby(t.Context(), geo.Point{Lat: -1.3000, Lng: 36.8200}, 50)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, h.ID, results[0].Hospital.ID)
	assert.InDelta(t, 0.8, results[0].DistanceKm, 0.1)
}

func TestNearbyNeverReturnsPendingHospitals(t *testing.T) {
	f := newFixture(t)
	f.createHospital(t, "Pending Close", -1.3001, 36.8201, false)
	verified := f.createHospital(t, "Verified Far", -1.40, 36.90, true)

	results, err := f.hospitals.Nearby(t.Context(), geo.Point{Lat: -1.3, Lng: 36.82}, 50)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, verified.ID, results[0].Hospital.ID)
	for _, r := range results {
		assert.Equal(t, models.VerifiedStatusVerified, r.Hospital.VerifiedStatus)
	}
}

func TestNearbyReturnsTwentyClosest(t *testing.T) {
	f := newFixture(t)
	center := geo.Point{Lat: -1.2921, Lng: 36.8219}
	rng := rand.New(rand.NewSource(7))

	var created []*models.Hospital
	for i := 0; i < 35; i++ {
		lat := center.Lat + (rng.Float64()-0.5)*0.6
		lng := center.Lng + (rng.Float64()-0.5)*0.6
		created = append(created, f.createHospital(t, fmt.Sprintf("H-%02d", i), lat, lng, i%7 != 0))
	}

	results, err := f.hospitals.Nearby(t.Context(), center, 100)
	require.NoError(t, err)
	require.Len(t, results, geo.DefaultResultLimit)

	type ref struct {
		id string
		d  float64
	}
	var want []ref
	for _, h := range created {
		if !h.IsVerified() {
			continue
		}
		want = append(want, ref{h.ID, geo.Distance(center, h.GeoPoint())})
	}
	slices.SortFunc(want, func(a, b ref) int {
		if c := cmp.Compare(a.d, b.d); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	for i, r := range results {
		assert.Equal(t, want[i].id, r.Hospital.ID, "rank %d", i)
		assert.InDelta(t, want[i].d, r.DistanceKm, 1e-9)
		assert.LessOrEqual(t, r.DistanceKm, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, r.DistanceKm, results[i-1].DistanceKm)
		}
	}
}

func TestNearbyValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		center geo.Point
		radius float64
		field  string
	}{
		{"radius below minimum", geo.Point{Lat: 0, Lng: 0}, 0.5, "radius_km"},
		{"radius above maximum", geo.Point{Lat: 0, Lng: 0}, 501, "radius_km"},
		{"latitude out of range", geo.Point{Lat: 90.5, Lng: 0}, 10, "lat"},
		{"longitude out of range", geo.Point{Lat: 0, Lng: 181}, 10, "lng"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.hospitals.Nearby(t.Context(), tt.center, tt.radius)
			require.ErrorIs(t, err, apperr.ErrValidation)
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestCurrentStockOrdersByLastUpdated(t *testing.T) {
	f := newFixture(t)
	h := f.createHospital(t, "Kitale", 1.0157, 35.0062, true)

	older := f.report(t, h.ID, "older", "", 50, 200*day)
	f.clock.Advance(time.Hour)
	newer := f.report(t, h.ID, "newer", "", 50, 200*day)
	f.report(t, h.ID, "low", "", 3, 200*day)

	current, err := f.hospitals.CurrentStock(t.Context(), h.ID)
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, newer.ID, current[0].ID)
	assert.Equal(t, older.ID, current[1].ID)

	_, err = f.hospitals.CurrentStock(t.Context(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
