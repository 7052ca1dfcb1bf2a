package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

func TestAccessServiceOwnership(t *testing.T) {
	ctx := context.Background()
	courses := newFakeCourseRepo()
	require.NoError(t, courses.Create(ctx, &models.Course{Title: "Go", AuthorID: testAuthorID}))
	enrollments := newFakeEnrollmentRepo(courses)
	enrollment := &models.Enrollment{StudentID: 7, CourseID: 1, Status: models.EnrollmentStatusPending}
	require.NoError(t, enrollments.Create(ctx, enrollment))
	svc := NewAccessService(courses, enrollments)

	owner := &models.JWTClaims{UserID: testAuthorID, Role: models.RoleTeacher}
	stranger := &models.JWTClaims{UserID: 99, Role: models.RoleTeacher}
	admin := &models.JWTClaims{UserID: 1000, Role: models.RoleAdmin}
	student := &models.JWTClaims{UserID: 7, Role: models.RoleStudent}

	assert.NoError(t, svc.EnsureCourseOwner(ctx, 1, owner))
	assert.NoError(t, svc.EnsureCourseOwner(ctx, 1, admin))
	assert.True(t, errors.Is(svc.EnsureCourseOwner(ctx, 1, stranger), appErrors.ErrForbidden))
	assert.True(t, errors.Is(svc.EnsureCourseOwner(ctx, 2, admin), appErrors.ErrNotFound))
	assert.True(t, errors.Is(svc.EnsureCourseOwner(ctx, 1, nil), appErrors.ErrUnauthorized))

	assert.NoError(t, svc.EnsureEnrollmentOwner(ctx, enrollment.ID, owner))
	assert.True(t, errors.Is(svc.EnsureEnrollmentOwner(ctx, enrollment.ID, stranger), appErrors.ErrForbidden))
	assert.True(t, errors.Is(svc.EnsureEnrollmentOwner(ctx, 404, owner), appErrors.ErrNotFound))

	assert.NoError(t, svc.EnsureEnrollmentStudent(ctx, enrollment.ID, student))
	assert.True(t, errors.Is(svc.EnsureEnrollmentStudent(ctx, enrollment.ID, &models.JWTClaims{UserID: 8, Role: models.RoleStudent}), appErrors.ErrForbidden))
}
