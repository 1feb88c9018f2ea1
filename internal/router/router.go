package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/unirp/records-api/api/swagger"
	"github.com/unirp/records-api/internal/handler"
	"github.com/unirp/records-api/internal/middleware"
	"github.com/unirp/records-api/internal/models"
	"github.com/unirp/records-api/internal/service"
	"github.com/unirp/records-api/pkg/config"
	"github.com/unirp/records-api/pkg/logger"
	corsmiddleware "github.com/unirp/records-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unirp/records-api/pkg/middleware/requestid"
)

// Handlers groups the handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Course       *handler.CourseHandler
	Enrollment   *handler.EnrollmentHandler
	Verification *handler.VerificationHandler
	Metrics      *handler.MetricsHandler
}

// Setup configures the Gin engine, middlewares, and all route groups.
func Setup(cfg *config.Config, logr *zap.Logger, auth *service.AuthService, metrics *service.MetricsService, handlers *Handlers) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", handlers.Metrics.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", handlers.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(auth))

	courses := secured.Group("/courses")
	courses.GET("", handlers.Course.List)
	courses.GET("/:id", handlers.Course.Get)
	courses.POST("", middleware.RequireRoles(models.RoleAdmin), handlers.Course.Create)
	courses.PUT("/:id/boundaries", middleware.RequireRoles(models.RoleAdmin), handlers.Course.UpdateBoundaries)

	enrollments := secured.Group("/enrollments")
	enrollments.Use(middleware.RequireRoles(models.RoleStudent))
	enrollments.GET("", handlers.Enrollment.ListOwn)
	enrollments.POST("", handlers.Enrollment.Create)
	enrollments.PATCH("/:id", handlers.Enrollment.Update)
	enrollments.DELETE("/:id", handlers.Enrollment.Delete)

	verifications := secured.Group("/verifications")
	verifications.Use(middleware.RequireRoles(models.RoleTutor, models.RoleAdmin))
	verifications.GET("/pending", handlers.Verification.ListPending)
	verifications.GET("/export", handlers.Verification.Export)
	verifications.POST("/:id", handlers.Verification.Verify)

	return r
}
