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

const userColumns = `id, first_name, last_name, email, password_hash, role, photo_url, city, university, active, created_at, specialization, grade, subjects, certification`

// UserRepository provides database access for users.
type UserRepository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB, timeout time.Duration) *UserRepository {
	return &UserRepository{db: db, timeout: timeout}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Exists reports whether a user with id is stored.
func (r *UserRepository) Exists(ctx context.Context, id int) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new user and sets its generated identifier.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO users (first_name, last_name, email, password_hash, role, photo_url, city, university, active, created_at, specialization, grade, subjects, certification)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	err := r.db.QueryRowxContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role, user.PhotoURL, user.City, user.University,
		user.Active, user.CreatedAt, user.Specialization, user.Grade, user.Subjects, user.Certification,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("create user: %w", translateWriteError(err))
	}
	return nil
}
