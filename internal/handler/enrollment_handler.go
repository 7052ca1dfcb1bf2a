package handler

import (
	"context"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Delmat237/XCCM1-BACKEND/internal/dto"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, courseID, studentID int) (*models.Enrollment, error)
	ListForStudent(ctx context.Context, studentID int) ([]models.Enrollment, error)
	UpdateProgress(ctx context.Context, id int64, progress float64) (*models.Enrollment, error)
	MarkCompleted(ctx context.Context, id int64) (*models.Enrollment, error)
	GetForStudentAndCourse(ctx context.Context, courseID, studentID int) (*models.Enrollment, bool, error)
	Validate(ctx context.Context, id int64, decision models.ValidationDecision, teacherID int) (*models.Enrollment, error)
	ListPendingForTeacher(ctx context.Context, teacherID int) ([]models.Enrollment, error)
	Get(ctx context.Context, id int64) (*models.Enrollment, error)
}

type enrollmentAccess interface {
	EnsureEnrollmentOwner(ctx context.Context, enrollmentID int64, actor *models.JWTClaims) error
	EnsureEnrollmentStudent(ctx context.Context, enrollmentID int64, actor *models.JWTClaims) error
}

// EnrollmentHandler exposes the enrollment ledger.
type EnrollmentHandler struct {
	service enrollmentService
	access  enrollmentAccess
}

// NewEnrollmentHandler constructs an enrollment handler.
func NewEnrollmentHandler(svc enrollmentService, access enrollmentAccess) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, access: access}
}

// Enroll godoc
// @Summary Enroll in course
// @Description Create a pending enrollment for the current student
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments/courses/{courseId} [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	courseID, err := intParam(c, "courseId")
	if err != nil {
		response.Error(c, err)
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), courseID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Mine godoc
// @Summary List my enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments/my-courses [get]
func (h *EnrollmentHandler) Mine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	enrollments, err := h.service.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// ForCourse godoc
// @Summary Get my enrollment for a course
// @Description Returns null data with meta.enrolled=false when the student never enrolled.
// @Description A rejected latest enrollment is returned with meta.enrolled=false.
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/courses/{courseId} [get]
func (h *EnrollmentHandler) ForCourse(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	courseID, err := intParam(c, "courseId")
	if err != nil {
		response.Error(c, err)
		return
	}

	enrollment, found, err := h.service.GetForStudentAndCourse(c.Request.Context(), courseID, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Null(c, map[string]interface{}{"enrolled": false})
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil, map[string]interface{}{"enrolled": enrollment.Status.Active()})
}

// Get godoc
// @Summary Get enrollment
// @Description Visible to the enrolled student and the course author
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.access.EnsureEnrollmentStudent(ctx, id, claims); err != nil {
		if ownerErr := h.access.EnsureEnrollmentOwner(ctx, id, claims); ownerErr != nil {
			response.Error(c, err)
			return
		}
	}

	enrollment, err := h.service.Get(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// UpdateProgress godoc
// @Summary Update progress
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param payload body dto.UpdateProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments/{id}/progress [put]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	id, ok := h.studentEnrollment(c)
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.Progress == nil || math.IsNaN(*req.Progress) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "progress is required"))
		return
	}

	enrollment, err := h.service.UpdateProgress(c.Request.Context(), id, *req.Progress)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Complete godoc
// @Summary Mark enrollment completed
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/complete [post]
func (h *EnrollmentHandler) Complete(c *gin.Context) {
	id, ok := h.studentEnrollment(c)
	if !ok {
		return
	}
	enrollment, err := h.service.MarkCompleted(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Validate godoc
// @Summary Validate enrollment
// @Description Accept or reject a pending enrollment on one of the teacher's courses
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param payload body dto.ValidateEnrollmentRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments/{id}/validate [put]
func (h *EnrollmentHandler) Validate(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.access.EnsureEnrollmentOwner(c.Request.Context(), id, claims); err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ValidateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	enrollment, err := h.service.Validate(c.Request.Context(), id, models.ValidationDecision(req.Decision), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Pending godoc
// @Summary List pending enrollments
// @Description Pending enrollments across the current teacher's courses
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments/pending [get]
func (h *EnrollmentHandler) Pending(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	enrollments, err := h.service.ListPendingForTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

func (h *EnrollmentHandler) studentEnrollment(c *gin.Context) (int64, bool) {
	claims := requireClaims(c)
	if claims == nil {
		return 0, false
	}
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return 0, false
	}
	if err := h.access.EnsureEnrollmentStudent(c.Request.Context(), id, claims); err != nil {
		response.Error(c, err)
		return 0, false
	}
	return id, true
}
