package models

import (
	"strings"
	"time"
)

// CourseStatus represents the publication lifecycle of a course.
type CourseStatus string

// Possible course statuses.
const (
	CourseStatusDraft     CourseStatus = "DRAFT"
	CourseStatusPublished CourseStatus = "PUBLISHED"
	CourseStatusArchived  CourseStatus = "ARCHIVED"
)

// CourseStatuses lists every known course status.
var CourseStatuses = []CourseStatus{CourseStatusDraft, CourseStatusPublished, CourseStatusArchived}

// ParseCourseStatus normalises a status string.
func ParseCourseStatus(raw string) (CourseStatus, bool) {
	status := CourseStatus(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range CourseStatuses {
		if status == known {
			return status, true
		}
	}
	return "", false
}

// Course is a unit of teaching content authored by a teacher.
type Course struct {
	ID          int          `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Category    string       `db:"category" json:"category"`
	Description string       `db:"description" json:"description"`
	Content     string       `db:"content" json:"content"`
	Status      CourseStatus `db:"status" json:"status"`
	AuthorID    int          `db:"author_id" json:"author_id"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}
