package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Delmat237/XCCM1-BACKEND/internal/dto"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/response"
)

type exportService interface {
	CourseDocument(ctx context.Context, courseID int) (*dto.ExportFile, error)
	PendingRoster(ctx context.Context, teacherID int) (*dto.ExportFile, error)
}

// ExportHandler serves file downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// CourseDocument godoc
// @Summary Download course as PDF
// @Tags Courses
// @Produce application/pdf
// @Param id path int true "Course ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/document [get]
func (h *ExportHandler) CourseDocument(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.CourseDocument(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

// PendingRoster godoc
// @Summary Download pending enrollments as CSV
// @Tags Enrollments
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /enrollments/pending/export [get]
func (h *ExportHandler) PendingRoster(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	file, err := h.service.PendingRoster(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}

func sendFile(c *gin.Context, file *dto.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
