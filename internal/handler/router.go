package handler

import (
	"github.com/MauriceOS/snaktox-sub001/internal/config"
	"github.com/MauriceOS/snaktox-sub001/internal/metrics"
	"github.com/MauriceOS/snaktox-sub001/internal/middleware"
	"github.com/MauriceOS/snaktox-sub001/internal/service"
	"github.com/MauriceOS/snaktox-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the router dispatches to
type Services struct {
	Hospitals *service.HospitalService
	Stock     *service.StockService
	Stats     *service.StatsService
}

// NewRouter builds the gin engine with middleware and every route registered
func NewRouter(cfg *config.Config, svc Services, m *metrics.Metrics, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg))

	hospitalHandler := NewHospitalHandler(svc.Hospitals, cfg.Geo.DefaultRadiusKm)
	stockHandler := NewStockHandler(svc.Stock, svc.Stats)
	writeLimit := middleware.NewRateLimiter(cfg.RateLimit.ReportsPerSecond, cfg.RateLimit.Burst).Middleware()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "snaktox",
		})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	hospitals := api.Group("/hospitals")
	{
		hospitals.GET("", hospitalHandler.ListHospitals)
		hospitals.POST("", hospitalHandler.CreateHospital)
		hospitals.GET("/nearby", hospitalHandler.NearbyHospitals)
		hospitals.GET("/:id", hospitalHandler.GetHospital)
		hospitals.GET("/:id/stock", hospitalHandler.GetHospitalStock)
	}

	stock := api.Group("/stock")
	{
		stock.GET("", stockHandler.ListStock)
		stock.POST("", writeLimit, stockHandler.ReportStock)
		stock.GET("/summary", stockHandler.Summary)
		stock.GET("/low-stock", stockHandler.LowStock)
		stock.GET("/expired", stockHandler.ExpiredStock)
		stock.GET("/hospital/:hospitalId", stockHandler.ListHospitalStock)
		stock.GET("/:id", stockHandler.GetStock)
		stock.PATCH("/:id", writeLimit, stockHandler.UpdateStock)
		stock.GET("/:id/history", stockHandler.StockHistory)
	}

	return r
}
