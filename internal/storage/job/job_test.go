package job

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/jgivc/mediafetch/internal/common"
	"github.com/jgivc/mediafetch/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage() *jobStorage {
	return NewJobStorage(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreate(t *testing.T) {
	s := newTestStorage()
	ctx := context.Background()

	id0 := s.Create(ctx, "https://example.com/v1")
	id1 := s.Create(ctx, "https://example.com/v2")

	assert.Equal(t, "0", id0)
	assert.Equal(t, "1", id1)

	job, err := s.Get(ctx, id0)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusStarting, job.Status)
	assert.Equal(t, 0.0, job.Progress)
	assert.Equal(t, "https://example.com/v1", job.URL)
	assert.Empty(t, job.FilePath)
	assert.False(t, job.CreatedAt.IsZero())
}

func TestGetNotFound(t *testing.T) {
	s := newTestStorage()

	job, err := s.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, common.ErrJobNotFound)
	assert.Nil(t, job)
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStorage()
	ctx := context.Background()
	id := s.Create(ctx, "https://example.com/v1")

	job, err := s.Get(ctx, id)
	require.NoError(t, err)
	job.Status = entity.JobStatusError

	stored, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.JobStatusStarting, stored.Status)
}

func TestUpdate(t *testing.T) {
	s := newTestStorage()
	ctx := context.Background()
	id := s.Create(ctx, "https://example.com/v1")

	err := s.Update(ctx, id, func(job *entity.Job) {
		job.ID = "changed"
		job.Status = entity.JobStatusDownloading
		job.Progress = 140
		job.Speed = "1.2 MB/s"
	})
	require.NoError(t, err)

	job, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, job.ID)
	assert.Equal(t, entity.JobStatusDownloading, job.Status)
	assert.Equal(t, 100.0, job.Progress)
	assert.Equal(t, "1.2 MB/s", job.Speed)

	require.NoError(t, s.Update(ctx, id, func(job *entity.Job) { job.Progress = -3 }))
	job, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0.0, job.Progress)
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStorage()

	called := false
	err := s.Update(context.Background(), "42", func(job *entity.Job) { called = true })
	assert.ErrorIs(t, err, common.ErrJobNotFound)
	assert.False(t, called)
	assert.Equal(t, 0, s.Len())
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStorage()
	ctx := context.Background()

	const workers = 16
	ids := make(chan string, workers)

	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			id := s.Create(ctx, fmt.Sprintf("https://example.com/%d", n))
			ids <- id

			for p := 0; p <= 100; p += 10 {
				_ = s.Update(ctx, id, func(job *entity.Job) {
					job.Status = entity.JobStatusDownloading
					job.Progress = float64(p)
				})
				_, _ = s.Get(ctx, id)
			}
		}(n)
	}

	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}

		job, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 100.0, job.Progress)
	}

	assert.Equal(t, workers, s.Len())
}
