package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MauriceOS/snaktox-sub001/internal/config"
	"github.com/MauriceOS/snaktox-sub001/internal/database"
	"github.com/MauriceOS/snaktox-sub001/internal/geo"
	"github.com/MauriceOS/snaktox-sub001/internal/handler"
	"github.com/MauriceOS/snaktox-sub001/internal/logger"
	"github.com/MauriceOS/snaktox-sub001/internal/metrics"
	"github.com/MauriceOS/snaktox-sub001/internal/repository"
	"github.com/MauriceOS/snaktox-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load configuration
	cfg := config.LoadConfig()

	// 2. Initialize logger
	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck
	zlog.Info("configuration loaded",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("port", cfg.Server.Port),
		zap.Duration("sweep_interval", cfg.Sweeper.Interval),
	)

	// 3. Initialize database connection
	db, err := database.Connect(cfg)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("database connected")

	// 4. Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// 5. Initialize repositories
	hospitalRepo := repository.NewHospitalRepo(db)
	stockRepo := repository.NewStockRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	// 6. Initialize services
	policy := stockPolicy(cfg.Stock)
	stockService := service.NewStockService(stockRepo, hospitalRepo, auditRepo, policy, zlog.Named("stock"))
	stockService.SetRecorder(m)
	hospitalService := service.NewHospitalService(hospitalRepo, stockService, geoOptions(cfg.Geo), zlog.Named("hospitals"))
	hospitalService.SetRecorder(m)
	statsService := service.NewStatsService(statsRepo, policy)
	workerService := service.NewWorkerService(stockService, cfg.Sweeper.Interval, zlog.Named("sweeper"))

	// 7. Start background worker in goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go workerService.Start(ctx)

	// 8. Setup Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := handler.NewRouter(cfg, handler.Services{
		Hospitals: hospitalService,
		Stock:     stockService,
		Stats:     statsService,
	}, m, zlog.Named("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 9. Setup graceful shutdown
	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	// Cancel background worker context
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("server exited")
}

func stockPolicy(cfg config.StockConfig) service.StockPolicy {
	policy := service.DefaultStockPolicy()
	if cfg.LowStockThreshold > 0 {
		policy.LowStockThreshold = cfg.LowStockThreshold
	}
	if cfg.ExpiryWarningDays >= 0 {
		policy.ExpiryWarning = time.Duration(cfg.ExpiryWarningDays) * 24 * time.Hour
	}
	if cfg.MaxQuantity > 0 {
		policy.MaxQuantity = cfg.MaxQuantity
	}
	return policy
}

func geoOptions(cfg config.GeoConfig) geo.Options {
	opts := geo.DefaultOptions()
	if cfg.MinRadiusKm > 0 {
		opts.MinRadiusKm = cfg.MinRadiusKm
	}
	if cfg.MaxRadiusKm >= opts.MinRadiusKm {
		opts.MaxRadiusKm = cfg.MaxRadiusKm
	}
	if cfg.ResultLimit > 0 {
		opts.Limit = cfg.ResultLimit
	}
	return opts
}
