package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// ParseUserRole normalises a role string.
func ParseUserRole(raw string) (UserRole, bool) {
	role := UserRole(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return role, true
	}
	return "", false
}

// User represents an application user stored in the users table.
type User struct {
	ID           int       `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	PhotoURL     string    `db:"photo_url" json:"photo_url,omitempty"`
	City         string    `db:"city" json:"city,omitempty"`
	University   string    `db:"university" json:"university,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	Specialization string     `db:"specialization" json:"specialization,omitempty"`
	Grade          string     `db:"grade" json:"grade,omitempty"`
	Subjects       StringList `db:"subjects" json:"subjects,omitempty"`
	Certification  string     `db:"certification" json:"certification,omitempty"`
}

// Profile is the role-specific part of a user. The set of implementations is
// closed: StudentProfile, TeacherProfile and AdminProfile.
type Profile interface {
	Role() UserRole
	apply(u *User)
}

// StudentProfile carries the fields only students have.
type StudentProfile struct {
	Specialization string
}

// TeacherProfile carries the fields only teachers have.
type TeacherProfile struct {
	Grade         string
	Subjects      []string
	Certification string
}

// AdminProfile has no role-specific fields.
type AdminProfile struct{}

func (StudentProfile) Role() UserRole { return RoleStudent }
func (TeacherProfile) Role() UserRole { return RoleTeacher }
func (AdminProfile) Role() UserRole   { return RoleAdmin }

func (p StudentProfile) apply(u *User) {
	u.Specialization = p.Specialization
}

func (p TeacherProfile) apply(u *User) {
	u.Grade = p.Grade
	u.Subjects = StringList(p.Subjects)
	u.Certification = p.Certification
}

func (AdminProfile) apply(*User) {}

// ProfileFields is the union of role-specific registration fields.
type ProfileFields struct {
	Specialization string
	Grade          string
	Subjects       []string
	Certification  string
}

// NewProfile picks the concrete profile for role.
func NewProfile(role UserRole, fields ProfileFields) (Profile, error) {
	switch role {
	case RoleStudent:
		return StudentProfile{Specialization: fields.Specialization}, nil
	case RoleTeacher:
		return TeacherProfile{Grade: fields.Grade, Subjects: fields.Subjects, Certification: fields.Certification}, nil
	case RoleAdmin:
		return AdminProfile{}, nil
	default:
		return nil, fmt.Errorf("unsupported user role %q", role)
	}
}

// NewUser builds a user whose role and role-specific fields come from profile.
func NewUser(base User, profile Profile) *User {
	user := base
	user.Role = profile.Role()
	user.Specialization, user.Grade, user.Certification = "", "", ""
	user.Subjects = nil
	profile.apply(&user)
	return &user
}

// Profile rebuilds the role variant of a stored user.
func (u *User) Profile() (Profile, error) {
	return NewProfile(u.Role, ProfileFields{
		Specialization: u.Specialization,
		Grade:          u.Grade,
		Subjects:       u.Subjects,
		Certification:  u.Certification,
	})
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
