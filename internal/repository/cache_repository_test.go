package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/gradebook-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest map[string]string
	assert.True(t, errors.Is(repo.Get(ctx, "course:current", &dest), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "course:current", map[string]string{"id": "c"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "course:current"))
	assert.NoError(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
