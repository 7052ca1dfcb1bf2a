package service

import (
	"context"
	"database/sql"
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	"github.com/Delmat237/XCCM1-BACKEND/internal/repository"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/cache"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

const enrollmentResource = "enrollments"

type enrollmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Enrollment, error)
	FindByStudent(ctx context.Context, studentID int) ([]models.Enrollment, error)
	FindLatestByStudentAndCourse(ctx context.Context, studentID, courseID int) (*models.Enrollment, error)
	ExistsActive(ctx context.Context, studentID, courseID int) (bool, error)
	ListPendingByAuthor(ctx context.Context, teacherID int) ([]models.Enrollment, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
}

type courseLookup interface {
	FindByID(ctx context.Context, id int) (*models.Course, error)
}

// EnrollmentService owns the enrollment lifecycle.
type EnrollmentService struct {
	repo    enrollmentRepository
	courses courseLookup
	cache   *CacheService
	logger  *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses courseLookup, cacheSvc *CacheService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, cache: cacheSvc, logger: logger}
}

// Enroll registers studentID to courseID as PENDING.
func (s *EnrollmentService) Enroll(ctx context.Context, courseID, studentID int) (*models.Enrollment, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}

	active, err := s.repo.ExistsActive(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if active {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in course")
	}

	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.EnrollmentStatusPending,
		Progress:  models.MinProgress,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled in course")
		}
		return nil, appErrors.Internal(err, "failed to create enrollment")
	}

	s.evict(ctx, enrollment)
	s.logger.Info("student enrolled",
		zap.Int64("enrollment_id", enrollment.ID),
		zap.Int("course_id", courseID),
		zap.Int("student_id", studentID),
	)
	return enrollment, nil
}

// ListForStudent returns the student's enrollments ordered by creation time.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int) ([]models.Enrollment, error) {
	key := studentListKey(studentID)
	var cached []models.Enrollment
	if s.cache.Get(ctx, cache.RegionEnrollments, key, &cached) {
		return cached, nil
	}

	enrollments, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	s.cache.Put(ctx, cache.RegionEnrollments, key, enrollments)
	return enrollments, nil
}

// UpdateProgress sets the progress percentage without touching the status.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, id int64, progress float64) (*models.Enrollment, error) {
	if math.IsNaN(progress) || progress < models.MinProgress || progress > models.MaxProgress {
		return nil, appErrors.Clone(appErrors.ErrValidation, "progress must be between 0 and 100")
	}
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is "+string(enrollment.Status))
	}
	if enrollment.Status == models.EnrollmentStatusValidated && progress < enrollment.Progress {
		return nil, appErrors.Clone(appErrors.ErrConflict, "progress cannot decrease")
	}

	enrollment.Progress = progress
	if err := s.persist(ctx, enrollment, "failed to update progress"); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// MarkCompleted completes a validated enrollment with full progress. Completing
// an already completed enrollment is a no-op.
func (s *EnrollmentService) MarkCompleted(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch enrollment.Status {
	case models.EnrollmentStatusCompleted:
		return enrollment, nil
	case models.EnrollmentStatusValidated:
	default:
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is "+string(enrollment.Status))
	}

	enrollment.Status = models.EnrollmentStatusCompleted
	enrollment.Progress = models.MaxProgress
	if err := s.persist(ctx, enrollment, "failed to complete enrollment"); err != nil {
		return nil, err
	}
	s.logger.Info("enrollment completed", zap.Int64("enrollment_id", id))
	return enrollment, nil
}

// GetForStudentAndCourse returns the student's enrollment in the course.
// found is false when the student is not enrolled; that is not an error.
func (s *EnrollmentService) GetForStudentAndCourse(ctx context.Context, courseID, studentID int) (*models.Enrollment, bool, error) {
	key := pairKey(courseID, studentID)
	var cached models.Enrollment
	if s.cache.Get(ctx, cache.RegionEnrollments, key, &cached) {
		return &cached, true, nil
	}

	enrollment, err := s.repo.FindLatestByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, appErrors.Internal(err, "failed to load enrollment")
	}
	s.cache.Put(ctx, cache.RegionEnrollments, key, enrollment)
	return enrollment, true, nil
}

// Validate applies a teacher's decision to a pending enrollment. Ownership of
// the course is checked by the caller.
func (s *EnrollmentService) Validate(ctx context.Context, id int64, decision models.ValidationDecision, teacherID int) (*models.Enrollment, error) {
	parsed, ok := models.ParseValidationDecision(string(decision))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be ACCEPT or REJECT")
	}
	enrollment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if enrollment.Status != models.EnrollmentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is not pending")
	}

	enrollment.Status = models.EnrollmentStatusValidated
	if parsed == models.DecisionReject {
		enrollment.Status = models.EnrollmentStatusRejected
	}
	if err := s.persist(ctx, enrollment, "failed to validate enrollment"); err != nil {
		return nil, err
	}
	s.logger.Info("enrollment validated",
		zap.Int64("enrollment_id", id),
		zap.Int("teacher_id", teacherID),
		zap.String("status", string(enrollment.Status)),
	)
	return enrollment, nil
}

// ListPendingForTeacher returns the pending enrollments on the teacher's courses.
func (s *EnrollmentService) ListPendingForTeacher(ctx context.Context, teacherID int) ([]models.Enrollment, error) {
	enrollments, err := s.repo.ListPendingByAuthor(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list pending enrollments")
	}
	return enrollments, nil
}

// Get returns an enrollment by id.
func (s *EnrollmentService) Get(ctx context.Context, id int64) (*models.Enrollment, error) {
	return s.load(ctx, id)
}

func (s *EnrollmentService) load(ctx context.Context, id int64) (*models.Enrollment, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Internal(err, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *EnrollmentService) persist(ctx context.Context, enrollment *models.Enrollment, failure string) error {
	if err := s.repo.Update(ctx, enrollment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return appErrors.Clone(appErrors.ErrConflict, "student already enrolled in course")
		}
		return appErrors.Internal(err, failure)
	}
	s.evict(ctx, enrollment)
	return nil
}

func (s *EnrollmentService) evict(ctx context.Context, enrollment *models.Enrollment) {
	s.cache.Evict(ctx, cache.RegionEnrollments,
		studentListKey(enrollment.StudentID),
		pairKey(enrollment.CourseID, enrollment.StudentID),
	)
}

func studentListKey(studentID int) string {
	return cache.Key(enrollmentResource, "listForStudent", studentID)
}

func pairKey(courseID, studentID int) string {
	return cache.Key(enrollmentResource, "getForStudentAndCourse", courseID, studentID)
}
