package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jgivc/mediafetch/internal/entity"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog interface {
	Append(ctx context.Context, entry *entity.CatalogEntry) error
	List(ctx context.Context) ([]*entity.CatalogEntry, error)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redisCatalog) {
	t.Helper()

	mr := miniredis.RunT(t)
	cl := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cl.Close() })

	return mr, NewRedisCatalog(cl, "test:catalog", discardLogger())
}

func newEntry(n int) *entity.CatalogEntry {
	return &entity.CatalogEntry{
		JobID:         fmt.Sprint(n),
		Title:         fmt.Sprintf("Video %d", n),
		SourceURL:     fmt.Sprintf("https://example.com/v%d", n),
		DownloadedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		DownloadTime:  "2025-01-02 03:04:05",
		SizeBytes:     2_500_000,
		HumanFileSize: "2.5 MB",
		HumanDuration: "0:02:05",
		FileName:      fmt.Sprintf("Video %d.mp4", n),
		AbsolutePath:  fmt.Sprintf("/srv/downloads/Video %d.mp4", n),
		FolderPath:    "/srv/downloads",
	}
}

func implementations(t *testing.T) map[string]catalog {
	_, rc := setupMiniRedis(t)

	return map[string]catalog{
		"memory": NewMemoryCatalog(discardLogger()),
		"redis":  rc,
	}
}

func TestAppendListOrder(t *testing.T) {
	for name, c := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			entries, err := c.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, entries)

			for n := 0; n < 5; n++ {
				require.NoError(t, c.Append(ctx, newEntry(n)))
			}

			entries, err = c.List(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 5)

			for n, entry := range entries {
				assert.Equal(t, fmt.Sprint(n), entry.JobID)
				assert.Equal(t, newEntry(n), entry)
			}
		})
	}
}

func TestMemoryCatalogIsolation(t *testing.T) {
	c := NewMemoryCatalog(discardLogger())
	ctx := context.Background()

	entry := newEntry(0)
	require.NoError(t, c.Append(ctx, entry))
	entry.Title = "mutated"

	entries, err := c.List(ctx)
	require.NoError(t, err)
	entries[0].FileName = "mutated"

	again, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Video 0", again[0].Title)
	assert.Equal(t, "Video 0.mp4", again[0].FileName)
}

func TestMemoryCatalogConcurrentAppendList(t *testing.T) {
	c := NewMemoryCatalog(discardLogger())
	ctx := context.Background()

	const total = 200

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for n := 0; n < total; n++ {
			_ = c.Append(ctx, newEntry(n))
		}
	}()

	go func() {
		defer wg.Done()
		for n := 0; n < total; n++ {
			entries, err := c.List(ctx)
			if !assert.NoError(t, err) {
				return
			}
			for i, entry := range entries {
				if !assert.Equal(t, fmt.Sprint(i), entry.JobID) {
					return
				}
			}
		}
	}()

	wg.Wait()

	entries, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, total)
}

func TestRedisCatalogSkipsCorruptEntries(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Append(ctx, newEntry(0)))
	_, err := mr.RPush("test:catalog", "{not json")
	require.NoError(t, err)
	require.NoError(t, c.Append(ctx, newEntry(1)))

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0", entries[0].JobID)
	assert.Equal(t, "1", entries[1].JobID)
}

func TestRedisCatalogUnavailable(t *testing.T) {
	mr, c := setupMiniRedis(t)
	mr.Close()

	err := c.Append(context.Background(), newEntry(0))
	assert.Error(t, err)

	_, err = c.List(context.Background())
	assert.Error(t, err)
}

func TestRedisCatalogKeepsEntriesAcrossRuns(t *testing.T) {
	mr, first := setupMiniRedis(t)
	ctx := context.Background()

	require.NoError(t, first.Append(ctx, newEntry(0)))

	// A restarted process starts numbering jobs at "0" again.
	cl := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cl.Close() })
	second := NewRedisCatalog(cl, "test:catalog", discardLogger())

	again := newEntry(0)
	again.Title = "Video after restart"
	require.NoError(t, second.Append(ctx, again))

	entries, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Video 0", entries[0].Title)
	assert.Equal(t, "Video after restart", entries[1].Title)
	assert.Equal(t, entries[0].JobID, entries[1].JobID)
}
