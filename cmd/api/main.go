package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/Delmat237/XCCM1-BACKEND/api/swagger"
	"github.com/Delmat237/XCCM1-BACKEND/internal/handler"
	"github.com/Delmat237/XCCM1-BACKEND/internal/repository"
	"github.com/Delmat237/XCCM1-BACKEND/internal/router"
	"github.com/Delmat237/XCCM1-BACKEND/internal/service"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/cache"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/config"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/database"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/logger"
)

// @title XCCM API
// @version 1.0.0
// @description Course catalog and enrollment backend
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
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	codec, err := cache.NewCodec(cfg.Cache.Codec)
	if err != nil {
		logr.Fatal("invalid cache codec", zap.Error(err))
	}
	cacheBackend, closeCache := newCacheBackend(cfg, logr)
	defer closeCache()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheBackend, codec, cache.RegionsFromConfig(cfg.Cache), metricsSvc, logr, service.CacheConfig{
		Enabled:          cfg.Cache.Enabled,
		OperationTimeout: cfg.Cache.OperationTimeout,
	})

	validate := validator.New()
	userRepo := repository.NewUserRepository(db, cfg.Database.QueryTimeout)
	courseRepo := repository.NewCourseRepository(db, cfg.Database.QueryTimeout)
	enrollmentRepo := repository.NewEnrollmentRepository(db, cfg.Database.QueryTimeout)

	authSvc := service.NewAuthService(userRepo, cacheSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, userRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, cacheSvc, logr)
	accessSvc := service.NewAccessService(courseRepo, enrollmentRepo)
	exportSvc := service.NewExportService(courseSvc, enrollmentSvc, logr)

	engine := router.New(router.Dependencies{
		Config:   cfg,
		Logger:   logr,
		Tokens:   authSvc,
		Observer: metricsSvc,
		Ready:    readiness(db, cfg.Database.QueryTimeout),
	}, router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Courses:     handler.NewCourseHandler(courseSvc, accessSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc, accessSvc),
		Exports:     handler.NewExportHandler(exportSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, cacheSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.Bool("cache_enabled", cacheSvc.Enabled()),
			zap.String("cache_codec", codec.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logr.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}

// newCacheBackend picks the configured cache store. An unreachable Redis
// degrades to the in-process store rather than failing start-up.
func newCacheBackend(cfg *config.Config, logr *zap.Logger) (service.CacheRepository, func()) {
	if !cfg.Cache.Enabled {
		return nil, func() {}
	}

	if cfg.Cache.Backend == config.CacheBackendRedis {
		client, err := cache.NewRedis(cfg.Redis, cfg.Cache.OperationTimeout)
		if err == nil {
			repo := repository.NewCacheRepository(client)
			return repo, closer(logr, repo)
		}
		logr.Warn("redis unavailable, using in-memory cache", zap.Error(err))
	}

	store, err := cache.NewMemoryStore(cache.MemoryConfig{MaxCost: cfg.Cache.MemoryMaxCost})
	if err != nil {
		logr.Warn("in-memory cache unavailable, caching disabled", zap.Error(err))
		return nil, func() {}
	}
	return store, closer(logr, store)
}

func closer(logr *zap.Logger, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logr.Warn("cache close failed", zap.Error(err))
		}
	}
}

func readiness(db *sqlx.DB, timeout time.Duration) func(*gin.Context) error {
	return func(c *gin.Context) error {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		return db.PingContext(ctx)
	}
}
