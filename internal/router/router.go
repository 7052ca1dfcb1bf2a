package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Delmat237/XCCM1-BACKEND/internal/handler"
	"github.com/Delmat237/XCCM1-BACKEND/internal/middleware"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/config"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/logger"
	corsmiddleware "github.com/Delmat237/XCCM1-BACKEND/pkg/middleware/cors"
	reqidmiddleware "github.com/Delmat237/XCCM1-BACKEND/pkg/middleware/requestid"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth        *handler.AuthHandler
	Courses     *handler.CourseHandler
	Enrollments *handler.EnrollmentHandler
	Exports     *handler.ExportHandler
	Metrics     *handler.MetricsHandler
}

// Dependencies carries everything the router needs besides handlers.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Tokens   middleware.TokenValidator
	Observer middleware.RequestObserver
	// Ready reports whether backing stores are reachable.
	Ready func(*gin.Context) error
}

// New builds the gin engine with the full route table.
func New(deps Dependencies, h Handlers) *gin.Engine {
	cfg := deps.Config
	r := gin.New()
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(logger.Recovery(deps.Logger))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Observer))

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(deps.Tokens)
	teacher := middleware.RBAC(models.RoleTeacher)
	student := middleware.RBAC(models.RoleStudent)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.GET("/me", auth, h.Auth.Me)

	api.GET("/courses", h.Courses.List)
	api.GET("/courses/:id", h.Courses.Get)
	api.GET("/courses/:id/document", h.Exports.CourseDocument)
	api.GET("/authors/:authorId/courses", h.Courses.ListByAuthor)

	courses := api.Group("/courses", auth, teacher)
	courses.POST("", h.Courses.Create)
	courses.PUT("/:id", h.Courses.Update)
	courses.PATCH("/:id/status", h.Courses.ChangeStatus)
	courses.DELETE("/:id", h.Courses.Delete)

	enrollments := api.Group("/enrollments", auth)
	enrollments.POST("/courses/:courseId", student, h.Enrollments.Enroll)
	enrollments.GET("/courses/:courseId", student, h.Enrollments.ForCourse)
	enrollments.GET("/my-courses", student, h.Enrollments.Mine)
	enrollments.GET("/pending", teacher, h.Enrollments.Pending)
	enrollments.GET("/pending/export", teacher, h.Exports.PendingRoster)
	enrollments.GET("/:id", h.Enrollments.Get)
	enrollments.PUT("/:id/progress", student, h.Enrollments.UpdateProgress)
	enrollments.POST("/:id/complete", student, h.Enrollments.Complete)
	enrollments.PUT("/:id/validate", teacher, h.Enrollments.Validate)

	api.GET("/admin/metrics", auth, middleware.RBAC(models.RoleAdmin), h.Metrics.Snapshot)

	return r
}
