package badger

import (
	"context"
	"sync"
	"testing"

	"github.com/poiesic/taskrag/core"
	"github.com/poiesic/taskrag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFingerprint(b byte) core.Fingerprint {
	var fp core.Fingerprint
	for i := range fp {
		fp[i] = b
	}
	return fp
}

func TestGetOrCreateSkeleton(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	fp := testFingerprint(1)

	created, err := repos.Skeletons.GetOrCreateSkeleton(ctx, "x^var - nx + var = var", fp)
	require.NoError(t, err)
	assert.Equal(t, core.IDFromContent("x^var - nx + var = var"), created.ID)
	assert.Equal(t, fp, created.Fingerprint)
	assert.False(t, created.CreatedAt.IsZero())

	again, err := repos.Skeletons.GetOrCreateSkeleton(ctx, "x^var - nx + var = var", fp)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	count, err := repos.Skeletons.CountSkeletons(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetOrCreateSkeleton_Concurrent(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	fp := testFingerprint(2)

	var wg sync.WaitGroup
	ids := make([]core.ID, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			skeleton, err := repos.Skeletons.GetOrCreateSkeleton(ctx, "n + n = var", fp)
			if assert.NoError(t, err) {
				ids[i] = skeleton.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	count, err := repos.Skeletons.CountSkeletons(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetOrCreateSkeleton_ZeroFingerprint(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	_, err = repos.Skeletons.GetOrCreateSkeleton(context.Background(), "n", core.Fingerprint{})
	assert.ErrorIs(t, err, core.ErrInvalidSkeleton)
}

func TestFindSkeletonByFingerprint(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	_, err = repos.Skeletons.FindSkeletonByFingerprint(ctx, testFingerprint(3))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	created, err := repos.Skeletons.GetOrCreateSkeleton(ctx, "n", testFingerprint(3))
	require.NoError(t, err)

	found, err := repos.Skeletons.FindSkeletonByFingerprint(ctx, testFingerprint(3))
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "n", found.Text)

	byID, err := repos.Skeletons.GetSkeleton(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Fingerprint, byID.Fingerprint)

	_, err = repos.Skeletons.GetSkeleton(ctx, 12345)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
