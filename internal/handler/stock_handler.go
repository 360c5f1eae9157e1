package handler

import (
	"strings"

	"github.com/MauriceOS/snaktox-sub001/internal/models"
	"github.com/MauriceOS/snaktox-sub001/internal/service"
	"github.com/MauriceOS/snaktox-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	stockService *service.StockService
	statsService *service.StatsService
}

func NewStockHandler(stockService *service.StockService, statsService *service.StatsService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		statsService: statsService,
	}
}

func stockFilter(c *gin.Context) models.StockFilter {
	return models.StockFilter{
		HospitalID:    c.Query("hospital_id"),
		Status:        models.StockStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		AntivenomType: c.Query("antivenom_type"),
	}
}

// ListStock lists stock records, most recently updated first
// Query: status, antivenom_type, hospital_id
func (h *StockHandler) ListStock(c *gin.Context) {
	if err := checkQueryKeys(c, "stock.list", "status", "antivenom_type", "hospital_id"); err != nil {
		respondError(c, err)
		return
	}

	records, err := h.stockService.List(c.Request.Context(), stockFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stock": records,
		"count": len(records),
	})
}

// ListHospitalStock lists one hospital's stock records
// Query: status, antivenom_type
func (h *StockHandler) ListHospitalStock(c *gin.Context) {
	if err := checkQueryKeys(c, "stock.by_hospital", "status", "antivenom_type"); err != nil {
		respondError(c, err)
		return
	}

	records, err := h.stockService.ByHospital(c.Request.Context(), c.Param("hospitalId"), stockFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stock": records,
		"count": len(records),
	})
}

// LowStock lists AVAILABLE records below threshold (default: the low-stock threshold), smallest first
func (h *StockHandler) LowStock(c *gin.Context) {
	const op = "stock.find_low_stock"
	if err := checkQueryKeys(c, op, "threshold"); err != nil {
		respondError(c, err)
		return
	}
	threshold, err := queryInt(c, op, "threshold", h.stockService.Policy().LowStockThreshold)
	if err != nil {
		respondError(c, err)
		return
	}

	records, err := h.stockService.FindLowStock(c.Request.Context(), threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stock":     records,
		"count":     len(records),
		"threshold": threshold,
	})
}

// ExpiredStock lists AVAILABLE records already past expiry, earliest first
func (h *StockHandler) ExpiredStock(c *gin.Context) {
	if err := checkQueryKeys(c, "stock.find_expired"); err != nil {
		respondError(c, err)
		return
	}

	records, err := h.stockService.FindExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stock": records,
		"count": len(records),
	})
}

// Summary returns network statistics
func (h *StockHandler) Summary(c *gin.Context) {
	if err := checkQueryKeys(c, "stats.summarize"); err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.statsService.Summarize(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GetStock retrieves one stock record
func (h *StockHandler) GetStock(c *gin.Context) {
	record, err := h.stockService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, record)
}

// StockHistory returns the audit trail of one stock record
func (h *StockHandler) StockHistory(c *gin.Context) {
	entries, err := h.stockService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"history": entries,
		"count":   len(entries),
	})
}

// ReportStock creates or refreshes a stock record
func (h *StockHandler) ReportStock(c *gin.Context) {
	var in service.ReportStockInput
	if err := bindJSON(c, &in); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.stockService.Report(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, record)
}

// UpdateStock applies a partial update to a stock record
func (h *StockHandler) UpdateStock(c *gin.Context) {
	var in service.UpdateStockInput
	if err := bindJSON(c, &in); err != nil {
		respondBindError(c, err)
		return
	}
	if in.Status != nil {
		normalized := models.StockStatus(strings.ToUpper(strings.TrimSpace(string(*in.Status))))
		in.Status = &normalized
	}

	record, err := h.stockService.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, record)
}
