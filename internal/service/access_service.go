package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

type enrollmentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
}

// AccessService answers ownership questions for course and enrollment routes.
type AccessService struct {
	courses     courseLookup
	enrollments enrollmentLookup
}

// NewAccessService constructs an AccessService.
func NewAccessService(courses courseLookup, enrollments enrollmentLookup) *AccessService {
	return &AccessService{courses: courses, enrollments: enrollments}
}

// EnsureCourseOwner fails with Forbidden unless actor authored the course.
func (s *AccessService) EnsureCourseOwner(ctx context.Context, courseID int, actor *models.JWTClaims) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Internal(err, "failed to load course")
	}
	return authorize(course.AuthorID, actor)
}

// EnsureEnrollmentOwner fails with Forbidden unless actor authored the
// enrollment's course.
func (s *AccessService) EnsureEnrollmentOwner(ctx context.Context, enrollmentID int64, actor *models.JWTClaims) error {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Internal(err, "failed to load enrollment")
	}
	return s.EnsureCourseOwner(ctx, enrollment.CourseID, actor)
}

// EnsureEnrollmentStudent fails with Forbidden unless actor is the enrolled student.
func (s *AccessService) EnsureEnrollmentStudent(ctx context.Context, enrollmentID int64, actor *models.JWTClaims) error {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Internal(err, "failed to load enrollment")
	}
	return authorize(enrollment.StudentID, actor)
}

func authorize(ownerID int, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication")
	}
	if actor.Role == models.RoleAdmin || actor.UserID == ownerID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "not the owner of this resource")
}
