package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
)

const enrollmentColumns = `e.id, e.student_id, e.course_id, e.status, e.progress, e.created_at, e.updated_at`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB, timeout time.Duration) *EnrollmentRepository {
	return &EnrollmentRepository{db: db, timeout: timeout}
}

// FindByID returns an enrollment by id.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// FindByStudent returns a student's enrollments ordered by creation time.
func (r *EnrollmentRepository) FindByStudent(ctx context.Context, studentID int) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.student_id = $1 ORDER BY e.created_at ASC, e.id ASC`
	return r.selectEnrollments(ctx, "list enrollments by student", query, studentID)
}

// FindLatestByStudentAndCourse returns the active enrollment of the pair, or
// the most recent one when none is active.
func (r *EnrollmentRepository) FindLatestByStudentAndCourse(ctx context.Context, studentID, courseID int) (*models.Enrollment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.student_id = $1 AND e.course_id = $2
ORDER BY (e.status <> 'REJECTED') DESC, e.created_at DESC, e.id DESC LIMIT 1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find enrollment by student and course: %w", err)
	}
	return &enrollment, nil
}

// ExistsActive reports whether the pair has a non-rejected enrollment.
func (r *EnrollmentRepository) ExistsActive(ctx context.Context, studentID, courseID int) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND status <> 'REJECTED')`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return exists, nil
}

// ListPendingByAuthor returns pending enrollments on courses authored by teacherID, oldest first.
func (r *EnrollmentRepository) ListPendingByAuthor(ctx context.Context, teacherID int) ([]models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments e
JOIN courses c ON c.id = e.course_id
WHERE c.author_id = $1 AND e.status = 'PENDING'
ORDER BY e.created_at ASC, e.id ASC`
	return r.selectEnrollments(ctx, "list pending enrollments", query, teacherID)
}

// Create inserts an enrollment. A concurrent active enrollment for the same
// pair surfaces as ErrDuplicate through the partial unique index.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = now
	}
	enrollment.UpdatedAt = now
	const query = `INSERT INTO enrollments (student_id, course_id, status, progress, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		enrollment.StudentID, enrollment.CourseID, enrollment.Status, enrollment.Progress, enrollment.CreatedAt, enrollment.UpdatedAt,
	).Scan(&enrollment.ID)
	if err != nil {
		return fmt.Errorf("create enrollment: %w", translateWriteError(err))
	}
	return nil
}

// Update persists status and progress.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	enrollment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrollments SET status = :status, progress = :progress, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", translateWriteError(err))
	}
	return requireAffected(res, "update enrollment")
}

func (r *EnrollmentRepository) selectEnrollments(ctx context.Context, op, query string, args ...interface{}) ([]models.Enrollment, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	enrollments := make([]models.Enrollment, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return enrollments, nil
}
