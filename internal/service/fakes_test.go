package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	"github.com/Delmat237/XCCM1-BACKEND/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
		if u.ID > repo.nextID {
			repo.nextID = u.ID
		}
	}
	return repo
}

func (f *fakeUserRepo) Exists(ctx context.Context, id int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *u
	return &copy, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	copy := *user
	f.users[user.ID] = &copy
	return nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[int]*models.Course
	nextID  int
	reads   int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[int]*models.Course)}
}

func (f *fakeCourseRepo) FindByID(ctx context.Context, id int) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *c
	return &copy, nil
}

func (f *fakeCourseRepo) FindAll(ctx context.Context) ([]models.Course, error) {
	return f.filter(func(models.Course) bool { return true }), nil
}

func (f *fakeCourseRepo) FindByAuthor(ctx context.Context, authorID int) ([]models.Course, error) {
	return f.filter(func(c models.Course) bool { return c.AuthorID == authorID }), nil
}

func (f *fakeCourseRepo) FindByAuthorAndStatus(ctx context.Context, authorID int, status models.CourseStatus) ([]models.Course, error) {
	return f.filter(func(c models.Course) bool { return c.AuthorID == authorID && c.Status == status }), nil
}

func (f *fakeCourseRepo) filter(keep func(models.Course) bool) []models.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	out := make([]models.Course, 0)
	for _, c := range f.courses {
		if keep(*c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCourseRepo) Create(ctx context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	course.ID = f.nextID
	now := time.Now().UTC()
	course.CreatedAt, course.UpdatedAt = now, now
	copy := *course
	f.courses[course.ID] = &copy
	return nil
}

func (f *fakeCourseRepo) Update(ctx context.Context, course *models.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.courses[course.ID]
	if !ok {
		return sql.ErrNoRows
	}
	course.UpdatedAt = time.Now().UTC()
	copy := *course
	copy.CreatedAt = stored.CreatedAt
	f.courses[course.ID] = &copy
	return nil
}

func (f *fakeCourseRepo) Delete(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.courses, id)
	return nil
}

func (f *fakeCourseRepo) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

type fakeEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[int64]*models.Enrollment
	nextID      int64
	courses     *fakeCourseRepo
	clock       time.Time
}

func newFakeEnrollmentRepo(courses *fakeCourseRepo) *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{
		enrollments: make(map[int64]*models.Enrollment),
		courses:     courses,
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeEnrollmentRepo) FindByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *e
	return &copy, nil
}

func (f *fakeEnrollmentRepo) FindByStudent(ctx context.Context, studentID int) ([]models.Enrollment, error) {
	return f.filter(func(e models.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (f *fakeEnrollmentRepo) FindLatestByStudentAndCourse(ctx context.Context, studentID, courseID int) (*models.Enrollment, error) {
	matches := f.filter(func(e models.Enrollment) bool { return e.StudentID == studentID && e.CourseID == courseID })
	if len(matches) == 0 {
		return nil, sql.ErrNoRows
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i].Status.Active() {
			return &matches[i], nil
		}
	}
	return &matches[len(matches)-1], nil
}

func (f *fakeEnrollmentRepo) ExistsActive(ctx context.Context, studentID, courseID int) (bool, error) {
	matches := f.filter(func(e models.Enrollment) bool {
		return e.StudentID == studentID && e.CourseID == courseID && e.Status.Active()
	})
	return len(matches) > 0, nil
}

func (f *fakeEnrollmentRepo) ListPendingByAuthor(ctx context.Context, teacherID int) ([]models.Enrollment, error) {
	authored := map[int]bool{}
	courses, _ := f.courses.FindByAuthor(ctx, teacherID)
	for _, c := range courses {
		authored[c.ID] = true
	}
	return f.filter(func(e models.Enrollment) bool {
		return authored[e.CourseID] && e.Status == models.EnrollmentStatusPending
	}), nil
}

func (f *fakeEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.enrollments {
		if e.StudentID == enrollment.StudentID && e.CourseID == enrollment.CourseID && e.Status.Active() {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	f.clock = f.clock.Add(time.Minute)
	enrollment.ID = f.nextID
	enrollment.CreatedAt, enrollment.UpdatedAt = f.clock, f.clock
	copy := *enrollment
	f.enrollments[enrollment.ID] = &copy
	return nil
}

func (f *fakeEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.enrollments[enrollment.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *enrollment
	f.enrollments[enrollment.ID] = &copy
	return nil
}

func (f *fakeEnrollmentRepo) filter(keep func(models.Enrollment) bool) []models.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Enrollment, 0)
	for _, e := range f.enrollments {
		if keep(*e) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeEnrollmentRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.enrollments)
}
