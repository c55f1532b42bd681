package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/dorm-adp-api/api/swagger"
	"github.com/noah-isme/dorm-adp-api/internal/handler"
	"github.com/noah-isme/dorm-adp-api/internal/repository"
	"github.com/noah-isme/dorm-adp-api/internal/router"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	"github.com/noah-isme/dorm-adp-api/pkg/cache"
	"github.com/noah-isme/dorm-adp-api/pkg/config"
	"github.com/noah-isme/dorm-adp-api/pkg/database"
	"github.com/noah-isme/dorm-adp-api/pkg/export"
	"github.com/noah-isme/dorm-adp-api/pkg/logger"
)

// @title Dormitory Admin API
// @version 1.0.0
// @description Back-office API for dormitory rooms, residents, utilities and billing
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database, logr)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis, logr)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	buildingRepo := repository.NewBuildingRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	readingRepo := repository.NewUtilityReadingRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "dorm", logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	buildingSvc := service.NewBuildingService(buildingRepo, validate, metrics, logr)
	roomSvc := service.NewRoomService(roomRepo, buildingRepo, validate, metrics, logr)
	studentSvc := service.NewStudentService(studentRepo, roomRepo, validate, metrics, logr)
	readingSvc := service.NewUtilityReadingService(readingRepo, roomRepo, validate, metrics, logr)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, studentRepo, validate, metrics, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, invoiceRepo, validate, metrics, logr)
	transferSvc := service.NewTransferService(transferRepo, studentRepo, roomRepo, validate, metrics, logr)
	vehicleSvc := service.NewVehicleService(vehicleRepo, studentRepo, validate, metrics, logr)
	maintenanceSvc := service.NewMaintenanceService(maintenanceRepo, roomRepo, validate, metrics, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, metrics, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(readingRepo, invoiceRepo, export.NewRegistry(), service.ExportConfig{MaxRows: cfg.Export.MaxRows}, metrics, logr)

	list := handler.ListSupport{
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
		Metrics:      metrics,
		Logger:       logr,
	}
	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	engine := router.New(router.Options{
		Config:    cfg,
		Logger:    logr,
		Metrics:   metrics,
		Dashboard: dashboardSvc,
	}, router.Handlers{
		Buildings:       handler.NewBuildingHandler(buildingSvc, list),
		Rooms:           handler.NewRoomHandler(roomSvc, list),
		Students:        handler.NewStudentHandler(studentSvc, list),
		UtilityReadings: handler.NewUtilityReadingHandler(readingSvc, exportSvc, list),
		Invoices:        handler.NewInvoiceHandler(invoiceSvc, exportSvc, list),
		Payments:        handler.NewPaymentHandler(paymentSvc, list),
		Transfers:       handler.NewTransferHandler(transferSvc, list),
		Vehicles:        handler.NewVehicleHandler(vehicleSvc, list),
		Maintenance:     handler.NewMaintenanceHandler(maintenanceSvc, list),
		Dashboard:       handler.NewDashboardHandler(dashboardSvc),
		Metrics:         handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
