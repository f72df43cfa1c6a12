package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/novatorsmobile/studentvoice-api/api/swagger"
	"github.com/novatorsmobile/studentvoice-api/internal/handler"
	"github.com/novatorsmobile/studentvoice-api/internal/middleware"
	"github.com/novatorsmobile/studentvoice-api/internal/models"
	"github.com/novatorsmobile/studentvoice-api/internal/repository"
	"github.com/novatorsmobile/studentvoice-api/internal/service"
	"github.com/novatorsmobile/studentvoice-api/pkg/cache"
	"github.com/novatorsmobile/studentvoice-api/pkg/config"
	"github.com/novatorsmobile/studentvoice-api/pkg/database"
	"github.com/novatorsmobile/studentvoice-api/pkg/forms"
	"github.com/novatorsmobile/studentvoice-api/pkg/jobs"
	"github.com/novatorsmobile/studentvoice-api/pkg/logger"
	corsmiddleware "github.com/novatorsmobile/studentvoice-api/pkg/middleware/cors"
	reqidmiddleware "github.com/novatorsmobile/studentvoice-api/pkg/middleware/requestid"
	"github.com/novatorsmobile/studentvoice-api/pkg/storage"
)

// @title StudentVoice API
// @version 1.0.0
// @description Lecture feedback and rating aggregation service
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Statistics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics caching disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Statistics.CacheTTL, logr, true)
		}
	}

	universityRepo := repository.NewUniversityRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	pollRepo := repository.NewPollRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	formRepo := repository.NewFormRepository(db)
	userRepo := repository.NewUserRepository(db)

	var formEnqueuer service.FormEnqueuer
	if cfg.Forms.Enabled {
		client, err := forms.NewClient(context.Background(), cfg.Forms.CredentialsFile)
		if err != nil {
			logr.Warn("forms integration unavailable", zap.Error(err))
		} else {
			provisioner := service.NewFormProvisioner(client, formRepo, logr, jobs.QueueConfig{Workers: 2})
			provisioner.Start(context.Background())
			defer provisioner.Stop()
			formEnqueuer = provisioner
		}
	}

	var reportStore *storage.ReportStore
	var reportSigner *storage.SignedURLSigner
	if cfg.Exports.Enabled {
		reportStore, err = storage.NewReportStore(cfg.Exports.Dir)
		if err != nil {
			logr.Fatal("failed to prepare report store", zap.Error(err))
		}
		reportSigner = storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.LinkTTL)
		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for range ticker.C {
				if removed, err := reportStore.CleanupOlderThan(cfg.Exports.LinkTTL); err != nil {
					logr.Warn("report cleanup failed", zap.Error(err))
				} else if len(removed) > 0 {
					logr.Info("expired reports removed", zap.Int("count", len(removed)))
				}
			}
		}()
	}

	authService := service.NewAuthService(userRepo, nil, logr, cfg.JWT)
	universityService := service.NewUniversityService(universityRepo, nil, logr)
	subjectService := service.NewSubjectService(subjectRepo, universityRepo, nil, logr)
	teacherService := service.NewTeacherService(teacherRepo, universityRepo, nil, logr)
	meetingService := service.NewMeetingService(meetingRepo, subjectRepo, teacherRepo, formRepo, formEnqueuer, nil, logr, cacheService)
	pollService := service.NewPollService(pollRepo, nil, logr, metricsService, cfg.Polls)
	ratingService := service.NewRatingService(ratingRepo, pollRepo, subjectRepo, teacherRepo, universityRepo, logr)
	statisticsService := service.NewStatisticsService(ratingRepo, universityRepo, cacheService, cfg.Statistics.CacheTTL, logr)
	exportService := service.NewExportService(ratingService, subjectRepo, teacherRepo, reportStore, reportSigner, logr)

	authHandler := handler.NewAuthHandler(authService)
	universityHandler := handler.NewUniversityHandler(universityService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	teacherHandler := handler.NewTeacherHandler(teacherService)
	meetingHandler := handler.NewMeetingHandler(meetingService)
	pollHandler := handler.NewPollHandler(pollService)
	ratingHandler := handler.NewRatingHandler(ratingService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
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
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)
	auth.GET("/me", middleware.JWT(authService), authHandler.Me)

	adminOnly := []gin.HandlerFunc{middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin)}
	staff := []gin.HandlerFunc{middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)}

	universities := api.Group("/universities")
	universities.GET("", universityHandler.List)
	universities.GET("/:id", universityHandler.Get)
	universities.POST("", append(adminOnly, universityHandler.Create)...)
	universities.PATCH("/:id", append(adminOnly, universityHandler.Update)...)
	universities.DELETE("/:id", append(adminOnly, universityHandler.Delete)...)
	universities.GET("/:id/statistics/monthly", statisticsHandler.Monthly)
	universities.GET("/:id/statistics/weekly", statisticsHandler.Weekly)
	universities.GET("/:id/export", append(staff, exportHandler.UniversityRatings)...)

	// the signed token is the credential here
	api.GET("/exports/download", exportHandler.Download)

	subjects := api.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.GET("/:id", subjectHandler.Get)
	subjects.POST("", append(adminOnly, subjectHandler.Create)...)
	subjects.PATCH("/:id", append(adminOnly, subjectHandler.Update)...)
	subjects.DELETE("/:id", append(adminOnly, subjectHandler.Delete)...)

	teachers := api.Group("/teachers")
	teachers.GET("", teacherHandler.List)
	teachers.GET("/:id", teacherHandler.Get)
	teachers.POST("", append(adminOnly, teacherHandler.Create)...)
	teachers.PATCH("/:id", append(adminOnly, teacherHandler.Update)...)
	teachers.DELETE("/:id", append(adminOnly, teacherHandler.Delete)...)

	meetings := api.Group("/meetings")
	meetings.GET("", meetingHandler.List)
	meetings.GET("/:id", meetingHandler.Get)
	meetings.GET("/:id/form", meetingHandler.Form)
	meetings.POST("", append(staff, meetingHandler.Create)...)
	meetings.PATCH("/:id", append(staff, meetingHandler.Update)...)
	meetings.DELETE("/:id", append(staff, meetingHandler.Delete)...)

	polls := api.Group("/polls")
	polls.GET("", pollHandler.List)
	polls.GET("/:id", pollHandler.Get)
	polls.GET("/:id/results", append(staff, pollHandler.Results)...)
	// result submission stays anonymous, no token required
	polls.POST("/:id/results", pollHandler.Submit)

	ratings := api.Group("/ratings")
	ratings.GET("/meetings/:id", ratingHandler.Meeting)
	ratings.GET("/subjects/:id", ratingHandler.Subject)
	ratings.GET("/teachers/:id", ratingHandler.Teacher)
	ratings.GET("/universities/:id", ratingHandler.University)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
