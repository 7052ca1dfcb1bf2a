package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Delmat237/XCCM1-BACKEND/internal/dto"
	"github.com/Delmat237/XCCM1-BACKEND/internal/models"
	"github.com/Delmat237/XCCM1-BACKEND/pkg/cache"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

const testAuthorID = 42

func newCourseServiceForTest(t *testing.T, backend CacheRepository) (*CourseService, *fakeCourseRepo, *CacheService) {
	t.Helper()
	users := newFakeUserRepo(&models.User{ID: testAuthorID, Email: "author@example.com", Role: models.RoleTeacher})
	repo := newFakeCourseRepo()
	cacheSvc := newTestCacheService(backend)
	return NewCourseService(repo, users, cacheSvc, nil, zap.NewNop()), repo, cacheSvc
}

func createCourse(t *testing.T, svc *CourseService, title string) *models.Course {
	t.Helper()
	course, err := svc.Create(context.Background(), dto.CreateCourseRequest{Title: title, Category: "programming"}, testAuthorID)
	require.NoError(t, err)
	return course
}

func TestCourseServiceCreate(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t, newStubCacheRepo())

	course := createCourse(t, svc, "Go basics")
	assert.Equal(t, models.CourseStatusDraft, course.Status)
	assert.Equal(t, testAuthorID, course.AuthorID)
	assert.False(t, course.CreatedAt.IsZero())

	_, err := svc.Create(context.Background(), dto.CreateCourseRequest{Title: "x"}, 999)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Create(context.Background(), dto.CreateCourseRequest{}, testAuthorID)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCourseServiceCreateInvalidatesLists(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t, newStubCacheRepo())
	ctx := context.Background()

	createCourse(t, svc, "first")
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	byAuthor, err := svc.ListByAuthor(ctx, testAuthorID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)

	createCourse(t, svc, "second")
	all, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	byAuthor, err = svc.ListByAuthor(ctx, testAuthorID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 2)
}

func TestCourseServiceListServedFromCache(t *testing.T) {
	svc, repo, _ := newCourseServiceForTest(t, newStubCacheRepo())
	ctx := context.Background()
	createCourse(t, svc, "Go")

	_, err := svc.ListAll(ctx)
	require.NoError(t, err)
	reads := repo.readCount()
	_, err = svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, reads, repo.readCount())
}

func TestCourseServiceAbsentCourse(t *testing.T) {
	backend := newStubCacheRepo()
	svc, _, _ := newCourseServiceForTest(t, backend)
	ctx := context.Background()

	_, err := svc.Get(ctx, 404)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	title := "new"
	_, err = svc.Update(ctx, 404, dto.UpdateCourseRequest{Title: &title})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.ChangeStatus(ctx, 404, models.CourseStatusPublished)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, 404), appErrors.ErrNotFound))

	assert.False(t, backend.has(cache.StorageKey(cache.RegionCourses, "courses:get:404")))
}

func TestCourseServiceUpdateNeverReturnsStaleValues(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t, newStubCacheRepo())
	ctx := context.Background()
	course := createCourse(t, svc, "old title")

	cached, err := svc.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "old title", cached.Title)

	title := "new title"
	updated, err := svc.Update(ctx, course.ID, dto.UpdateCourseRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
	assert.Equal(t, "programming", updated.Category)

	got, err := svc.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
}

func TestCourseServicePublishScenario(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t, newStubCacheRepo())
	ctx := context.Background()
	course := createCourse(t, svc, "Go")

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.CourseStatusDraft, all[0].Status)
	drafts, err := svc.ListByAuthorAndStatus(ctx, testAuthorID, models.CourseStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	_, err = svc.ChangeStatus(ctx, course.ID, models.CourseStatusPublished)
	require.NoError(t, err)

	all, err = svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.CourseStatusPublished, all[0].Status)

	drafts, err = svc.ListByAuthorAndStatus(ctx, testAuthorID, models.CourseStatusDraft)
	require.NoError(t, err)
	assert.Empty(t, drafts)
	published, err := svc.ListByAuthorAndStatus(ctx, testAuthorID, models.CourseStatusPublished)
	require.NoError(t, err)
	assert.Len(t, published, 1)
}

// ChangeStatus does not enforce a transition table; moving back to DRAFT is allowed.
func TestCourseServiceChangeStatusIsPermissive(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t, newStubCacheRepo())
	ctx := context.Background()
	course := createCourse(t, svc, "Go")

	for _, status := range []models.CourseStatus{models.CourseStatusArchived, models.CourseStatusDraft, models.CourseStatusPublished, models.CourseStatusDraft} {
		changed, err := svc.ChangeStatus(ctx, course.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, changed.Status)
	}

	_, err := svc.ChangeStatus(ctx, course.ID, "RETIRED")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	changed, err := svc.ChangeStatus(ctx, course.ID, "published")
	require.NoError(t, err)
	assert.Equal(t, models.CourseStatusPublished, changed.Status)
}

func TestCourseServiceDelete(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t, newStubCacheRepo())
	ctx := context.Background()
	course := createCourse(t, svc, "Go")

	_, err := svc.Get(ctx, course.ID)
	require.NoError(t, err)
	_, err = svc.ListAll(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, course.ID))

	_, err = svc.Get(ctx, course.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCourseServiceListByAuthorRequiresAuthor(t *testing.T) {
	svc, _, _ := newCourseServiceForTest(t, newStubCacheRepo())
	ctx := context.Background()

	_, err := svc.ListByAuthor(ctx, 7)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.ListByAuthorAndStatus(ctx, testAuthorID, "BOGUS")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	empty, err := svc.ListByAuthor(ctx, testAuthorID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCourseServiceOutcomesUnchangedWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	run := func(backend CacheRepository) []string {
		svc, _, _ := newCourseServiceForTest(t, backend)
		var outcomes []string
		record := func(err error) {
			if err != nil {
				outcomes = append(outcomes, appErrors.FromError(err).Code)
				return
			}
			outcomes = append(outcomes, "ok")
		}

		course, err := svc.Create(ctx, dto.CreateCourseRequest{Title: "Go"}, testAuthorID)
		record(err)
		_, err = svc.Get(ctx, course.ID)
		record(err)
		_, err = svc.ChangeStatus(ctx, course.ID, models.CourseStatusPublished)
		record(err)
		all, err := svc.ListAll(ctx)
		record(err)
		outcomes = append(outcomes, string(all[0].Status))
		_, err = svc.Get(ctx, 999)
		record(err)
		record(svc.Delete(ctx, course.ID))
		return outcomes
	}

	healthy := run(newStubCacheRepo())
	failing := run(&failingCacheRepo{})
	assert.Equal(t, healthy, failing)
	assert.Equal(t, []string{"ok", "ok", "ok", "ok", "PUBLISHED", appErrors.ErrNotFound.Code, "ok"}, healthy)
}
