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

const courseColumns = `id, title, category, description, content, status, author_id, created_at, updated_at`

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB, timeout time.Duration) *CourseRepository {
	return &CourseRepository{db: db, timeout: timeout}
}

// FindByID returns a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// FindAll returns every course, oldest first.
func (r *CourseRepository) FindAll(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at ASC, id ASC`
	return r.selectCourses(ctx, "list courses", query)
}

// FindByAuthor returns the courses authored by authorID.
func (r *CourseRepository) FindByAuthor(ctx context.Context, authorID int) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE author_id = $1 ORDER BY created_at ASC, id ASC`
	return r.selectCourses(ctx, "list courses by author", query, authorID)
}

// FindByAuthorAndStatus returns the author's courses in the given status.
func (r *CourseRepository) FindByAuthorAndStatus(ctx context.Context, authorID int, status models.CourseStatus) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE author_id = $1 AND status = $2 ORDER BY created_at ASC, id ASC`
	return r.selectCourses(ctx, "list courses by author and status", query, authorID, status)
}

// Create inserts a course and sets its generated identifier.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
	const query = `INSERT INTO courses (title, category, description, content, status, author_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		course.Title, course.Category, course.Description, course.Content, course.Status, course.AuthorID, course.CreatedAt, course.UpdatedAt,
	).Scan(&course.ID)
	if err != nil {
		return fmt.Errorf("create course: %w", translateWriteError(err))
	}
	return nil
}

// Update persists the mutable fields of a course. created_at is never rewritten.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET title = :title, category = :category, description = :description, content = :content, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return requireAffected(res, "update course")
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `DELETE FROM courses WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return requireAffected(res, "delete course")
}

func (r *CourseRepository) selectCourses(ctx context.Context, op, query string, args ...interface{}) ([]models.Course, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	courses := make([]models.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return courses, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
