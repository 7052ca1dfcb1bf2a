package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Delmat237/XCCM1-BACKEND/internal/dto"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/export"
)

const (
	contentTypePDF = "application/pdf"
	contentTypeCSV = "text/csv"
)

type courseReader interface {
	Get(ctx context.Context, id int) (*models.Course, error)
}

type pendingLister interface {
	ListPendingForTeacher(ctx context.Context, teacherID int) ([]models.Enrollment, error)
}

// ExportService renders courses and rosters as downloadable files. Reads go
// through the domain services so exports share their cache.
type ExportService struct {
	courses     courseReader
	enrollments pendingLister
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(courses courseReader, enrollments pendingLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{courses: courses, enrollments: enrollments, logger: logger, now: time.Now}
}

// CourseDocument renders a course as a PDF sheet.
func (s *ExportService) CourseDocument(ctx context.Context, courseID int) (*dto.ExportFile, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}

	data, err := export.RenderPDF(export.Document{
		Title: course.Title,
		Fields: []export.Field{
			{Label: "Category", Value: course.Category},
			{Label: "Status", Value: string(course.Status)},
			{Label: "Author", Value: strconv.Itoa(course.AuthorID)},
			{Label: "Updated", Value: course.UpdatedAt.UTC().Format(time.RFC3339)},
		},
		Body: joinNonEmpty(course.Description, course.Content),
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render course document")
	}
	s.logger.Debug("course document rendered", zap.Int("course_id", courseID), zap.Int("bytes", len(data)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("course-%d.pdf", courseID),
		ContentType: contentTypePDF,
		Data:        data,
	}, nil
}

// PendingRoster renders the teacher's pending enrollments as CSV.
func (s *ExportService) PendingRoster(ctx context.Context, teacherID int) (*dto.ExportFile, error) {
	enrollments, err := s.enrollments.ListPendingForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Columns: []string{"enrollment_id", "course_id", "student_id", "status", "progress", "created_at"},
		Records: make([][]string, 0, len(enrollments)),
	}
	for _, e := range enrollments {
		table.Records = append(table.Records, []string{
			strconv.FormatInt(e.ID, 10),
			strconv.Itoa(e.CourseID),
			strconv.Itoa(e.StudentID),
			string(e.Status),
			strconv.FormatFloat(e.Progress, 'f', -1, 64),
			e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	buf := &bytes.Buffer{}
	if err := export.WriteCSV(buf, table); err != nil {
		return nil, appErrors.Internal(err, "failed to render roster")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("pending-%d-%s.csv", teacherID, s.now().UTC().Format("20060102")),
		ContentType: contentTypeCSV,
		Data:        buf.Bytes(),
	}, nil
}

func joinNonEmpty(parts ...string) string {
	var buf bytes.Buffer
	for _, part := range parts {
		if part == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(part)
	}
	return buf.String()
}
