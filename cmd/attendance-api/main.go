package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/techmkce/attendance-engine-api/api/swagger"
	"github.com/techmkce/attendance-engine-api/internal/handler"
	"github.com/techmkce/attendance-engine-api/internal/middleware"
	"github.com/techmkce/attendance-engine-api/internal/repository"
	"github.com/techmkce/attendance-engine-api/internal/service"
	"github.com/techmkce/attendance-engine-api/pkg/cache"
	"github.com/techmkce/attendance-engine-api/pkg/config"
	"github.com/techmkce/attendance-engine-api/pkg/database"
	"github.com/techmkce/attendance-engine-api/pkg/logger"
	corsmiddleware "github.com/techmkce/attendance-engine-api/pkg/middleware/cors"
	reqidmiddleware "github.com/techmkce/attendance-engine-api/pkg/middleware/requestid"
	"github.com/techmkce/attendance-engine-api/pkg/storage"
)

// @title Attendance Engine API
// @version 1.0.0
// @description Attendance consolidation and reporting service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo *repository.CacheRepository
	if cfg.Roster.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, roster cache disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	rosterRepo := repository.NewRosterRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	var rosterSvc *service.RosterService
	if cacheRepo != nil {
		rosterSvc = service.NewRosterService(rosterRepo, cacheRepo, metricsSvc, cfg.Roster.CacheTTL, logr)
	} else {
		rosterSvc = service.NewRosterService(rosterRepo, nil, metricsSvc, cfg.Roster.CacheTTL, logr)
	}
	querySvc := service.NewAttendanceQueryService(attendanceRepo, validate, metricsSvc, logr)
	filterSvc := service.NewFilterService(rosterSvc, logr)
	dispatcher := service.NewQueryDispatcher(filterSvc, querySvc, metricsSvc, logr)
	reportSvc := service.NewReportService(store, signer, service.ReportConfig{
		APIPrefix:            cfg.APIPrefix,
		ResultTTL:            cfg.Reports.SignedURLTTL,
		MinAcceptablePercent: cfg.Reports.MinAcceptablePercent,
		WorkerConcurrency:    cfg.Reports.WorkerConcurrency,
		WorkerRetries:        cfg.Reports.WorkerRetries,
	}, logr, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	reportSvc.Start(ctx)
	defer reportSvc.Stop()

	go func() {
		ticker := time.NewTicker(cfg.Reports.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reportSvc.Cleanup()
			}
		}
	}()

	rosterHandler := handler.NewRosterHandler(rosterSvc)
	attendanceHandler := handler.NewAttendanceHandler(querySvc)
	filterHandler := handler.NewFilterHandler(filterSvc, dispatcher)
	reportHandler := handler.NewReportHandler(reportSvc, querySvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(cfg.APIPrefix)
	{
		roster := v1.Group("/roster")
		{
			roster.GET("/:facultyId/courses", rosterHandler.Courses)
			roster.GET("/:facultyId/courses/:courseId/students", rosterHandler.Roster)
			roster.DELETE("/:facultyId/cache", rosterHandler.InvalidateCache)
		}

		attendance := v1.Group("/attendance")
		{
			attendance.GET("/day", attendanceHandler.Day)
			attendance.GET("/range", attendanceHandler.Range)
		}

		filters := v1.Group("/filters")
		{
			filters.GET("/:facultyId/:mode", filterHandler.Get)
			filters.DELETE("/:facultyId/:mode", filterHandler.Reset)
			filters.POST("/:facultyId/:mode/course", filterHandler.SelectCourse)
			filters.POST("/:facultyId/:mode/fields", filterHandler.SelectFilters)
			filters.GET("/:facultyId/:mode/report", filterHandler.Report)
		}

		reports := v1.Group("/reports")
		{
			reports.POST("/export", reportHandler.Export)
			reports.GET("/jobs/:id", reportHandler.JobStatus)
			reports.GET("/download", reportHandler.Download)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
