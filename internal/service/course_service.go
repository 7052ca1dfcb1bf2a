package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Delmat237/XCCM1-BACKEND/internal/dto"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/cache"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

const courseResource = "courses"

type courseRepository interface {
	FindByID(ctx context.Context, id int) (*models.Course, error)
	FindAll(ctx context.Context) ([]models.Course, error)
	FindByAuthor(ctx context.Context, authorID int) ([]models.Course, error)
	FindByAuthorAndStatus(ctx context.Context, authorID int, status models.CourseStatus) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int) error
}

type userExistence interface {
	Exists(ctx context.Context, id int) (bool, error)
}

// CourseService owns the course lifecycle and keeps the courses region coherent.
type CourseService struct {
	repo      courseRepository
	users     userExistence
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, users userExistence, cacheSvc *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, users: users, cache: cacheSvc, validator: validate, logger: logger}
}

// Create stores a new DRAFT course authored by authorID.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest, authorID int) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.ensureAuthor(ctx, authorID); err != nil {
		return nil, err
	}

	course := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Content:     req.Content,
		Status:      models.CourseStatusDraft,
		AuthorID:    authorID,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Internal(err, "failed to create course")
	}

	s.cache.Evict(ctx, cache.RegionCourses, courseListKeys(authorID)...)
	s.logger.Info("course created", zap.Int("course_id", course.ID), zap.Int("author_id", authorID))
	return course, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	key := courseGetKey(id)
	var cached models.Course
	if s.cache.Get(ctx, cache.RegionCourses, key, &cached) {
		return &cached, nil
	}

	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, cache.RegionCourses, key, course)
	return course, nil
}

// ListAll returns every course.
func (s *CourseService) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.cachedList(ctx, cache.Key(courseResource, "listAll"), func() ([]models.Course, error) {
		return s.repo.FindAll(ctx)
	})
}

// ListByAuthor returns the courses written by authorID.
func (s *CourseService) ListByAuthor(ctx context.Context, authorID int) ([]models.Course, error) {
	if err := s.ensureAuthor(ctx, authorID); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, cache.Key(courseResource, "listByAuthor", authorID), func() ([]models.Course, error) {
		return s.repo.FindByAuthor(ctx, authorID)
	})
}

// ListByAuthorAndStatus returns the author's courses in status.
func (s *CourseService) ListByAuthorAndStatus(ctx context.Context, authorID int, status models.CourseStatus) ([]models.Course, error) {
	parsed, ok := models.ParseCourseStatus(string(status))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course status")
	}
	if err := s.ensureAuthor(ctx, authorID); err != nil {
		return nil, err
	}
	return s.cachedList(ctx, cache.Key(courseResource, "listByAuthorAndStatus", authorID, parsed), func() ([]models.Course, error) {
		return s.repo.FindByAuthorAndStatus(ctx, authorID, parsed)
	})
}

// Update applies the non-nil fields of req to the course.
func (s *CourseService) Update(ctx context.Context, id int, req dto.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		course.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Content != nil {
		course.Content = *req.Content
	}

	if err := s.persist(ctx, course, "failed to update course"); err != nil {
		return nil, err
	}
	return course, nil
}

// ChangeStatus sets the course status. Any known status is accepted
// regardless of the current one.
func (s *CourseService) ChangeStatus(ctx context.Context, id int, status models.CourseStatus) (*models.Course, error) {
	parsed, ok := models.ParseCourseStatus(string(status))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course status")
	}
	course, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := course.Status
	course.Status = parsed
	if err := s.persist(ctx, course, "failed to change course status"); err != nil {
		return nil, err
	}
	s.logger.Info("course status changed",
		zap.Int("course_id", id),
		zap.String("from", string(previous)),
		zap.String("to", string(parsed)),
	)
	return course, nil
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	course, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Internal(err, "failed to delete course")
	}
	s.evictCourse(ctx, course)
	// Enrollments of the course are removed with it.
	s.cache.Clear(ctx, cache.RegionEnrollments)
	s.logger.Info("course deleted", zap.Int("course_id", id))
	return nil
}

func (s *CourseService) persist(ctx context.Context, course *models.Course, failure string) error {
	if err := s.repo.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Internal(err, failure)
	}
	s.evictCourse(ctx, course)
	return nil
}

// load always reads the store so mutations never start from a cached copy.
func (s *CourseService) load(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	return course, nil
}

func (s *CourseService) cachedList(ctx context.Context, key string, fetch func() ([]models.Course, error)) ([]models.Course, error) {
	var cached []models.Course
	if s.cache.Get(ctx, cache.RegionCourses, key, &cached) {
		return cached, nil
	}
	courses, err := fetch()
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list courses")
	}
	s.cache.Put(ctx, cache.RegionCourses, key, courses)
	return courses, nil
}

func (s *CourseService) ensureAuthor(ctx context.Context, authorID int) error {
	exists, err := s.users.Exists(ctx, authorID)
	if err != nil {
		return appErrors.Internal(err, "failed to load author")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "author not found")
	}
	return nil
}

func (s *CourseService) evictCourse(ctx context.Context, course *models.Course) {
	keys := append([]string{courseGetKey(course.ID)}, courseListKeys(course.AuthorID)...)
	s.cache.Evict(ctx, cache.RegionCourses, keys...)
}

func courseGetKey(id int) string {
	return cache.Key(courseResource, "get", id)
}

// courseListKeys returns every list key a course by authorID can appear under.
func courseListKeys(authorID int) []string {
	keys := []string{
		cache.Key(courseResource, "listAll"),
		cache.Key(courseResource, "listByAuthor", authorID),
	}
	for _, status := range models.CourseStatuses {
		keys = append(keys, cache.Key(courseResource, "listByAuthorAndStatus", authorID, status))
	}
	return keys
}
