package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Delmat237/XCCM1-BACKEND/internal/dto"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/response"
)

type courseService interface {
	Create(ctx context.Context, req dto.CreateCourseRequest, authorID int) (*models.Course, error)
	Get(ctx context.Context, id int) (*models.Course, error)
	ListAll(ctx context.Context) ([]models.Course, error)
	ListByAuthor(ctx context.Context, authorID int) ([]models.Course, error)
	ListByAuthorAndStatus(ctx context.Context, authorID int, status models.CourseStatus) ([]models.Course, error)
	Update(ctx context.Context, id int, req dto.UpdateCourseRequest) (*models.Course, error)
	ChangeStatus(ctx context.Context, id int, status models.CourseStatus) (*models.Course, error)
	Delete(ctx context.Context, id int) error
}

type courseAccess interface {
	EnsureCourseOwner(ctx context.Context, courseID int, actor *models.JWTClaims) error
}

// CourseHandler exposes course catalog endpoints.
type CourseHandler struct {
	service courseService
	access  courseAccess
}

// NewCourseHandler constructs a course handler.
func NewCourseHandler(svc courseService, access courseAccess) *CourseHandler {
	return &CourseHandler{service: svc, access: access}
}

// Create godoc
// @Summary Create course
// @Description Create a draft course authored by the current teacher
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	course, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// ListByAuthor godoc
// @Summary List courses by author
// @Description Optionally filter by status (DRAFT, PUBLISHED, ARCHIVED)
// @Tags Courses
// @Produce json
// @Param authorId path int true "Author ID"
// @Param status query string false "Course status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /authors/{authorId}/courses [get]
func (h *CourseHandler) ListByAuthor(c *gin.Context) {
	authorID, err := intParam(c, "authorId")
	if err != nil {
		response.Error(c, err)
		return
	}

	var courses []models.Course
	if raw := c.Query("status"); raw != "" {
		status, ok := models.ParseCourseStatus(raw)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course status"))
			return
		}
		courses, err = h.service.ListByAuthorAndStatus(c.Request.Context(), authorID, status)
	} else {
		courses, err = h.service.ListByAuthor(c.Request.Context(), authorID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param payload body dto.UpdateCourseRequest true "Course changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	course, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// ChangeStatus godoc
// @Summary Change course status
// @Tags Courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param payload body dto.ChangeCourseStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/status [patch]
func (h *CourseHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	var req dto.ChangeCourseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	status, valid := models.ParseCourseStatus(string(req.Status))
	if !valid {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid course status"))
		return
	}

	course, err := h.service.ChangeStatus(c.Request.Context(), id, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *CourseHandler) ownedCourse(c *gin.Context) (int, bool) {
	claims := requireClaims(c)
	if claims == nil {
		return 0, false
	}
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return 0, false
	}
	if err := h.access.EnsureCourseOwner(c.Request.Context(), id, claims); err != nil {
		response.Error(c, err)
		return 0, false
	}
	return id, true
}
