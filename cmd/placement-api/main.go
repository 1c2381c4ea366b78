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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/AkshithaKulal/placementpro/api/swagger"
	"github.com/AkshithaKulal/placementpro/internal/handler"
	"github.com/AkshithaKulal/placementpro/internal/middleware"
	"github.com/AkshithaKulal/placementpro/internal/models"
	"github.com/AkshithaKulal/placementpro/internal/repository"
	"github.com/AkshithaKulal/placementpro/internal/service"
	"github.com/AkshithaKulal/placementpro/pkg/cache"
	"github.com/AkshithaKulal/placementpro/pkg/config"
	"github.com/AkshithaKulal/placementpro/pkg/database"
	"github.com/AkshithaKulal/placementpro/pkg/export"
	"github.com/AkshithaKulal/placementpro/pkg/logger"
	corsmiddleware "github.com/AkshithaKulal/placementpro/pkg/middleware/cors"
	reqidmiddleware "github.com/AkshithaKulal/placementpro/pkg/middleware/requestid"
)

// @title PlacementPro API
// @version 1.0.0
// @description Campus placement portal: drives, eligibility, interview scheduling
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Eligibility.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, eligibility cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	driveRepo := repository.NewDriveRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	alumniRepo := repository.NewAlumniRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "placementpro",
	})

	// A typed-nil pointer stored in the interface would defeat the service's
	// nil checks, so the concrete repository is passed only when it exists.
	var eligibilitySvc *service.EligibilityService
	if cacheRepo != nil {
		eligibilitySvc = service.NewEligibilityService(driveRepo, studentRepo, cacheRepo, cfg.Eligibility.CacheTTL, logr)
	} else {
		eligibilitySvc = service.NewEligibilityService(driveRepo, studentRepo, nil, cfg.Eligibility.CacheTTL, logr)
	}

	scheduleSvc := service.NewScheduleService(slotRepo, driveRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)

	var notificationSvc *service.NotificationService
	if cfg.Notifications.Enabled {
		notificationSvc = service.NewNotificationService(
			notificationRepo, eligibilitySvc, driveRepo, logr,
			cfg.Notifications.WorkerConcurrency, cfg.Notifications.WorkerRetries,
		)
	}

	var driveSvc *service.DriveService
	if notificationSvc != nil {
		driveSvc = service.NewDriveService(driveRepo, eligibilitySvc, notificationSvc, validate, logr)
	} else {
		driveSvc = service.NewDriveService(driveRepo, eligibilitySvc, nil, validate, logr)
	}

	applicationSvc := service.NewApplicationService(applicationRepo, driveRepo, studentRepo, eligibilitySvc, validate, logr)
	alumniSvc := service.NewAlumniService(alumniRepo, userRepo, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(driveRepo, eligibilitySvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	}

	metricsSvc := service.NewMetricsService()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if notificationSvc != nil {
		notificationSvc.Start(ctx)
		defer notificationSvc.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	driveHandler := handler.NewDriveHandler(driveSvc, eligibilitySvc, exportSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	alumniHandler := handler.NewAlumniHandler(alumniSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	{
		drives := secured.Group("/drives")
		{
			drives.GET("", driveHandler.List)
			drives.GET("/:id", driveHandler.Get)
			drives.POST("", middleware.RequireRoles(models.RoleTPO), driveHandler.Create)
			drives.PUT("/:id", middleware.RequireRoles(models.RoleTPO), driveHandler.Update)
			drives.PATCH("/:id/status", middleware.RequireRoles(models.RoleTPO), driveHandler.UpdateStatus)

			drives.GET("/:id/eligible-students", middleware.RequireRoles(models.RoleTPO), driveHandler.EligibleStudents)
			drives.GET("/:id/eligible-count", driveHandler.EligibleCount)
			drives.GET("/:id/eligible-students/export", middleware.RequireRoles(models.RoleTPO), driveHandler.ExportEligibleStudents)

			drives.GET("/:id/slots", scheduleHandler.ListSlots)
			drives.POST("/:id/slots", middleware.RequireRoles(models.RoleTPO), scheduleHandler.CreateSlot)
		}

		assignments := secured.Group("/assignments")
		assignments.Use(middleware.RequireRoles(models.RoleTPO))
		{
			assignments.POST("", scheduleHandler.Assign)
			assignments.DELETE("/:id", scheduleHandler.Unassign)
		}

		students := secured.Group("/students")
		{
			students.GET("", middleware.RequireRoles(models.RoleTPO), studentHandler.List)
			students.GET("/me", middleware.RequireRoles(models.RoleStudent), studentHandler.Me)
			students.PUT("/me", middleware.RequireRoles(models.RoleStudent), studentHandler.UpdateMe)
			students.GET("/:id", middleware.RequireRoles(models.RoleTPO), studentHandler.Get)
			students.POST("", middleware.RequireRoles(models.RoleTPO), studentHandler.Create)
			students.PUT("/:id", middleware.RequireRoles(models.RoleTPO), studentHandler.Update)
		}

		applications := secured.Group("/applications")
		{
			applications.GET("", middleware.RequireRoles(models.RoleTPO), applicationHandler.List)
			applications.POST("", middleware.RequireRoles(models.RoleStudent), applicationHandler.Apply)
			applications.PATCH("/:id/status", middleware.RequireRoles(models.RoleTPO), applicationHandler.UpdateStatus)
		}

		alumni := secured.Group("/alumni")
		alumni.Use(middleware.RequireRoles(models.RoleAlumni))
		{
			alumni.GET("/profile", alumniHandler.Profile)
			alumni.GET("/referrals", alumniHandler.ListReferrals)
			alumni.POST("/referrals", alumniHandler.CreateReferral)
			alumni.GET("/referrals/:id", alumniHandler.GetReferral)
			alumni.PATCH("/referrals/:id", alumniHandler.UpdateReferral)
			alumni.GET("/mentorship", alumniHandler.ListMentorshipSlots)
			alumni.POST("/mentorship", alumniHandler.CreateMentorshipSlot)
			alumni.GET("/stats", alumniHandler.Stats)
		}

		if notificationSvc != nil {
			notificationHandler := handler.NewNotificationHandler(notificationSvc)
			notifications := secured.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.POST("/:id/read", notificationHandler.MarkRead)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
