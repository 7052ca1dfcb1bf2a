package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Delmat237/XCCM1-BACKEND/internal/handler"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	"github.com/Delmat237/XCCM1-BACKEND/internal/service"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/config"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

type tokenStub map[string]*models.JWTClaims

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := s[token]
	if !ok {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *service.MetricsService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	tokens := tokenStub{
		"student": {UserID: 1, Role: models.RoleStudent},
		"teacher": {UserID: 2, Role: models.RoleTeacher},
	}
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	engine := New(Dependencies{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Tokens:   tokens,
		Observer: metrics,
	}, Handlers{
		Auth:        handler.NewAuthHandler(nil),
		Courses:     handler.NewCourseHandler(nil, nil),
		Enrollments: handler.NewEnrollmentHandler(nil, nil),
		Exports:     handler.NewExportHandler(nil),
		Metrics:     handler.NewMetricsHandler(metrics, nil),
	})
	return engine, metrics
}

func serve(engine *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterHealthAndReady(t *testing.T) {
	engine, metrics := newTestEngine(t)

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/ready", "").Code)
	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}

func TestRouterDocsHiddenInProduction(t *testing.T) {
	engine, _ := newTestEngine(t)

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/docs/index.html", "").Code)
}

func TestRouterProtectsWrites(t *testing.T) {
	engine, _ := newTestEngine(t)

	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodPost, "/api/v1/courses", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPost, "/api/v1/courses", "student").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPost, "/api/v1/enrollments/courses/3", "teacher").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodPut, "/api/v1/enrollments/4/validate", "student").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/v1/admin/metrics", "teacher").Code)
	assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/api/v1/enrollments/pending/export", "student").Code)
}

func TestRouterRejectsMalformedIDsBeforeServices(t *testing.T) {
	engine, _ := newTestEngine(t)

	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodGet, "/api/v1/courses/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodGet, "/api/v1/enrollments/courses/0", "student").Code)
}
