package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jgivc/mediafetch/internal/entity"
	"github.com/redis/go-redis/v9"
)

// redisCatalog stores entries as JSON in a Redis LIST. RPUSH keeps insertion order.
type redisCatalog struct {
	cl  *redis.Client
	key string
	log *slog.Logger
}

func NewRedisCatalog(cl *redis.Client, key string, log *slog.Logger) *redisCatalog {
	return &redisCatalog{
		cl:  cl,
		key: key,
		log: log.With(slog.String("item", "RedisCatalog"), slog.String("key", key)),
	}
}

func (c *redisCatalog) Append(ctx context.Context, entry *entity.CatalogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cannot marshal catalog entry: %w", err)
	}

	n, err := c.cl.RPush(ctx, c.key, data).Result()
	if err != nil {
		c.log.Error("Cannot append entry", slog.String("job_id", entry.JobID), slog.Any("error", err))

		return fmt.Errorf("cannot append catalog entry: %w", err)
	}

	c.log.Debug("Entry appended", slog.String("job_id", entry.JobID), slog.Int64("count", n))

	return nil
}

func (c *redisCatalog) List(ctx context.Context) ([]*entity.CatalogEntry, error) {
	values, err := c.cl.LRange(ctx, c.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get catalog entries: %w", err)
	}

	entries := make([]*entity.CatalogEntry, 0, len(values))
	for i, value := range values {
		var entry entity.CatalogEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			c.log.Error("Cannot unmarshal entry", slog.Int("index", i), slog.Any("error", err))

			continue
		}

		entries = append(entries, &entry)
	}

	return entries, nil
}
