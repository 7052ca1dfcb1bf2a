package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Delmat237/XCCM1-BACKEND/internal/dto"
	"github.com/Delmat237/XCCM1-BACKEND/internal/middleware"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

type exportServiceMock struct {
	err     error
	teacher int
}

func (m *exportServiceMock) CourseDocument(ctx context.Context, courseID int) (*dto.ExportFile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ExportFile{Filename: "course-1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil
}

func (m *exportServiceMock) PendingRoster(ctx context.Context, teacherID int) (*dto.ExportFile, error) {
	m.teacher = teacherID
	return &dto.ExportFile{Filename: "pending.csv", ContentType: "text/csv", Data: []byte("enrollment_id\n")}, nil
}

func TestExportHandlerCourseDocument(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{})
	c, w := newTestContext(http.MethodGet, "/courses/1/document", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.CourseDocument(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="course-1.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestExportHandlerCourseDocumentNotFound(t *testing.T) {
	handler := NewExportHandler(&exportServiceMock{err: appErrors.ErrNotFound})
	c, w := newTestContext(http.MethodGet, "/courses/1/document", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.CourseDocument(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportHandlerPendingRoster(t *testing.T) {
	svc := &exportServiceMock{}
	handler := NewExportHandler(svc)
	c, w := newTestContext(http.MethodGet, "/enrollments/pending/export", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 42, Role: models.RoleTeacher})

	handler.PendingRoster(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 42, svc.teacher)
	assert.Equal(t, "enrollment_id\n", w.Body.String())
}
