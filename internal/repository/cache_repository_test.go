package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	_, err := repo.Get(ctx, "courses::courses:get:1")
	assert.ErrorIs(t, err, appErrors.ErrCacheUnavailable)
	assert.ErrorIs(t, repo.Set(ctx, "k", []byte("v"), time.Minute), appErrors.ErrCacheUnavailable)
	assert.ErrorIs(t, repo.Delete(ctx, "k"), appErrors.ErrCacheUnavailable)
	assert.ErrorIs(t, repo.DeleteByPattern(ctx, "courses::*"), appErrors.ErrCacheUnavailable)
	assert.NoError(t, repo.Close())
}

func TestCacheRepositoryUnreachableServerIsNotAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewCacheRepository(client)
	defer repo.Close()

	_, err := repo.Get(context.Background(), "courses::courses:get:1")

	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteNoKeys(t *testing.T) {
	repo := NewCacheRepository(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	defer repo.Close()

	assert.NoError(t, repo.Delete(context.Background()))
}
