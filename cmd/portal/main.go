package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/frenillazo/acainfo-portal-api/api/swagger"
	"github.com/frenillazo/acainfo-portal-api/internal/cache"
	"github.com/frenillazo/acainfo-portal-api/internal/handler"
	"github.com/frenillazo/acainfo-portal-api/internal/middleware"
	"github.com/frenillazo/acainfo-portal-api/internal/models"
	"github.com/frenillazo/acainfo-portal-api/internal/service"
	"github.com/frenillazo/acainfo-portal-api/internal/upstream"
	rediscache "github.com/frenillazo/acainfo-portal-api/pkg/cache"
	"github.com/frenillazo/acainfo-portal-api/pkg/config"
	"github.com/frenillazo/acainfo-portal-api/pkg/logger"
	corsmiddleware "github.com/frenillazo/acainfo-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/frenillazo/acainfo-portal-api/pkg/middleware/requestid"
	"github.com/frenillazo/acainfo-portal-api/pkg/storage"
)

// @title Acainfo Portal API
// @version 1.0.0
// @description Student portal backend for session reservations, attendance and weekly schedules
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	var store *cache.Store
	if cfg.Cache.Enabled {
		redisClient, err := rediscache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, read cache disabled", "error", err)
		} else {
			store = cache.NewStore(redisClient, logr)
			defer store.Close() //nolint:errcheck
		}
	}
	cacheSvc := service.NewCacheService(store, metricsSvc, logr)
	invalidator := cache.NewInvalidator(store, logr)

	upstreamClient := upstream.NewClient(cfg.Upstream, logr, metricsSvc.ObserveUpstreamRequest)
	sessionClient := upstream.NewSessionClient(upstreamClient)
	enrollmentClient := upstream.NewEnrollmentClient(upstreamClient)
	reservationClient := upstream.NewReservationClient(upstreamClient)

	guard := service.NewInflightGuard()
	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)
	reservationSvc := service.NewReservationService(
		reservationClient, sessionClient, enrollmentClient,
		invalidator, cacheSvc, guard,
		cfg.Reservations, cfg.Cache.SessionTTL, logr,
	)
	attendanceSvc := service.NewAttendanceService(
		reservationClient, sessionClient,
		invalidator, cacheSvc, cfg.Cache, logr,
	)
	scheduleSvc := service.NewScheduleService(
		sessionClient, enrollmentClient, reservationClient,
		cacheSvc, cfg.Grid, cfg.Cache.SessionTTL, logr,
	)

	var dashboardSvc *service.DashboardService
	if cfg.Dashboard.Enabled {
		dashboardSvc = service.NewDashboardService(
			reservationClient, sessionClient, enrollmentClient,
			cacheSvc, cfg.Dashboard, logr,
		)
	}

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		localStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(scheduleSvc, attendanceSvc, localStore, signer, cfg.Exports, logr)
		go exportSvc.CleanupLoop(context.Background())
	}

	reservationHandler := handler.NewReservationHandler(reservationSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.UpstreamContext())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))

	reservations := api.Group("/reservations")
	{
		reservations.GET("", reservationHandler.ListMine)
		reservations.POST("", middleware.RequireRoles(models.RoleStudent), reservationHandler.Create)
		reservations.POST("/:id/cancel", reservationHandler.Cancel)
		reservations.GET("/:id/switch-candidates", reservationHandler.SwitchCandidates)
		reservations.POST("/:id/switch", reservationHandler.Switch)
		reservations.POST("/:id/online-request", middleware.RequireRoles(models.RoleStudent), reservationHandler.RequestOnline)
		reservations.POST("/:id/online-request/decision", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), reservationHandler.ProcessOnlineRequest)
	}

	sessions := api.Group("/sessions")
	{
		sessions.GET("/:id/attendance", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), attendanceHandler.Roster)
		sessions.POST("/:id/attendance", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), attendanceHandler.BulkRecord)
		sessions.POST("/:id/attendance/close", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), attendanceHandler.MarkRemainingAbsent)
	}
	api.POST("/attendance/:id", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), attendanceHandler.Record)

	students := api.Group("/students")
	{
		students.GET("/:id/schedule", middleware.RBAC("TEACHER", "ADMIN", "SELF"), scheduleHandler.Week)
		if dashboardSvc != nil {
			dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
			students.GET("/:id/overview", middleware.RBAC("TEACHER", "ADMIN", "SELF"), dashboardHandler.Overview)
		}
	}

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		students.POST("/:id/schedule/export", middleware.RBAC("TEACHER", "ADMIN", "SELF"), exportHandler.SchedulePDF)
		sessions.POST("/:id/attendance/export", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), exportHandler.RosterCSV)
		// Download authorization lives in the signed token itself.
		r.GET("/exports/download", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "upstream", cfg.Upstream.BaseURL)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
