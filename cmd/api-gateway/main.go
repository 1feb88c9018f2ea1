package main

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"

	"github.com/unirp/records-api/internal/handler"
	"github.com/unirp/records-api/internal/repository"
	"github.com/unirp/records-api/internal/router"
	"github.com/unirp/records-api/internal/service"
	"github.com/unirp/records-api/pkg/cache"
	"github.com/unirp/records-api/pkg/config"
	"github.com/unirp/records-api/pkg/database"
	"github.com/unirp/records-api/pkg/logger"
)

// @title University Records API
// @version 1.0.0
// @description Course-enrollment grading and verification core
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, cacheSvc, validate, logr)
	verificationSvc := service.NewVerificationService(enrollmentRepo, cacheSvc, validate, logr)

	verificationHandler := handler.NewVerificationHandler(verificationSvc, nil)
	if cfg.Exports.Enabled {
		exportSvc := service.NewExportService(enrollmentRepo, nil, nil, logr)
		verificationHandler = handler.NewVerificationHandler(verificationSvc, exportSvc)
	}

	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc),
		Course:       handler.NewCourseHandler(courseSvc),
		Enrollment:   handler.NewEnrollmentHandler(enrollmentSvc),
		Verification: verificationHandler,
		Metrics:      handler.NewMetricsHandler(metrics),
	}

	r := router.Setup(cfg, logr, authSvc, metrics, handlers)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
