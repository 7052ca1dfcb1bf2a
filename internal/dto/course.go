package dto

import "github.com/Delmat237/XCCM1-BACKEND/internal/models"

// CreateCourseRequest describes the payload for creating a course.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Category    string `json:"category" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Content     string `json:"content"`
}

// UpdateCourseRequest patches a course. Nil fields are left untouched.
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Content     *string `json:"content"`
}

// ChangeCourseStatusRequest carries the target status.
type ChangeCourseStatusRequest struct {
	Status models.CourseStatus `json:"status" validate:"required"`
}
