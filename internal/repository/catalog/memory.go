package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jgivc/mediafetch/internal/entity"
)

// memoryCatalog keeps completed downloads in insertion order for the lifetime of the process.
type memoryCatalog struct {
	mu      sync.RWMutex
	entries []*entity.CatalogEntry
	log     *slog.Logger
}

func NewMemoryCatalog(log *slog.Logger) *memoryCatalog {
	return &memoryCatalog{
		log: log.With(slog.String("item", "MemoryCatalog")),
	}
}

func (c *memoryCatalog) Append(_ context.Context, entry *entity.CatalogEntry) error {
	cp := *entry

	c.mu.Lock()
	c.entries = append(c.entries, &cp)
	n := len(c.entries)
	c.mu.Unlock()

	c.log.Debug("Entry appended", slog.String("job_id", entry.JobID), slog.Int("count", n))

	return nil
}

// List returns copies of all entries, oldest first.
func (c *memoryCatalog) List(_ context.Context) ([]*entity.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*entity.CatalogEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		cp := *entry
		entries = append(entries, &cp)
	}

	return entries, nil
}
