package handler

import (
	"github.com/MauriceOS/snaktox-sub001/internal/geo"
	"github.com/MauriceOS/snaktox-sub001/internal/models"
	"github.com/MauriceOS/snaktox-sub001/internal/service"
	"github.com/MauriceOS/snaktox-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	hospitalService *service.HospitalService
	defaultRadiusKm float64
}

func NewHospitalHandler(hospitalService *service.HospitalService, defaultRadiusKm float64) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// ListHospitals lists active hospitals ordered by name
// Query: verified, country, source
func (h *HospitalHandler) ListHospitals(c *gin.Context) {
	const op = "hospital.list"
	if err := checkQueryKeys(c, op, "verified", "country", "source"); err != nil {
		respondError(c, err)
		return
	}
	verified, err := queryBool(c, op, "verified")
	if err != nil {
		respondError(c, err)
		return
	}

	hospitals, err := h.hospitalService.List(c.Request.Context(), models.HospitalFilter{
		VerifiedOnly: verified,
		Country:      c.Query("country"),
		Source:       c.Query("source"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	})
}

// GetHospital retrieves a hospital by ID; verified=true hides PENDING listings
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	const op = "hospital.get"
	if err := checkQueryKeys(c, op, "verified"); err != nil {
		respondError(c, err)
		return
	}
	verified, err := queryBool(c, op, "verified")
	if err != nil {
		respondError(c, err)
		return
	}

	hospital, err := h.hospitalService.Get(c.Request.Context(), c.Param("id"), service.ReadPolicy{VerifiedOnly: verified})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, hospital)
}

// CreateHospital registers a new PENDING listing with its seed stock
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var in service.CreateHospitalInput
	if err := bindJSON(c, &in); err != nil {
		respondBindError(c, err)
		return
	}

	hospital, records, err := h.hospitalService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"hospital":        hospital,
		"antivenom_stock": records,
	})
}

// NearbyHospitals returns verified hospitals within radius_km of (lat, lng), nearest first
func (h *HospitalHandler) NearbyHospitals(c *gin.Context) {
	const op = "hospital.nearby"
	if err := checkQueryKeys(c, op, "lat", "lng", "radius_km"); err != nil {
		respondError(c, err)
		return
	}

	lat, err := queryFloat(c, op, "lat", 0, true)
	if err != nil {
		respondError(c, err)
		return
	}
	lng, err := queryFloat(c, op, "lng", 0, true)
	if err != nil {
		respondError(c, err)
		return
	}
	radius, err := queryFloat(c, op, "radius_km", h.defaultRadiusKm, false)
	if err != nil {
		respondError(c, err)
		return
	}

	results, err := h.hospitalService.Nearby(c.Request.Context(), geo.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"hospitals": results,
		"count":     len(results),
		"radius_km": radius,
	})
}

// GetHospitalStock returns the hospital's AVAILABLE stock, most recently updated first
func (h *HospitalHandler) GetHospitalStock(c *gin.Context) {
	if err := checkQueryKeys(c, "hospital.current_stock"); err != nil {
		respondError(c, err)
		return
	}

	records, err := h.hospitalService.CurrentStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stock": records,
		"count": len(records),
	})
}
