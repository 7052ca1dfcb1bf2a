package models

import (
	"strings"
	"time"
)

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusValidated EnrollmentStatus = "VALIDATED"
	EnrollmentStatusRejected  EnrollmentStatus = "REJECTED"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
)

// ActiveEnrollmentStatuses block a new enrollment for the same student and course.
var ActiveEnrollmentStatuses = []EnrollmentStatus{EnrollmentStatusPending, EnrollmentStatusValidated, EnrollmentStatusCompleted}

// Active reports whether the status blocks re-enrollment.
func (s EnrollmentStatus) Active() bool {
	return s != EnrollmentStatusRejected
}

// Terminal reports whether no further transition is allowed.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusRejected || s == EnrollmentStatusCompleted
}

// ValidationDecision is a teacher's verdict on a pending enrollment.
type ValidationDecision string

// Possible decisions.
const (
	DecisionAccept ValidationDecision = "ACCEPT"
	DecisionReject ValidationDecision = "REJECT"
)

// ParseValidationDecision accepts ACCEPT/REJECT as well as the resulting
// statuses VALIDATED/REJECTED.
func ParseValidationDecision(raw string) (ValidationDecision, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(DecisionAccept), string(EnrollmentStatusValidated):
		return DecisionAccept, true
	case string(DecisionReject), string(EnrollmentStatusRejected):
		return DecisionReject, true
	}
	return "", false
}

// Enrollment captures a student's registration to a course.
type Enrollment struct {
	ID        int64            `db:"id" json:"id"`
	StudentID int              `db:"student_id" json:"student_id"`
	CourseID  int              `db:"course_id" json:"course_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	Progress  float64          `db:"progress" json:"progress"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// MinProgress and MaxProgress bound Enrollment.Progress.
const (
	MinProgress = 0.0
	MaxProgress = 100.0
)
