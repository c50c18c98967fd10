// cache хранит в Redis множество уже переданных на обогащение карточек,
// чтобы повторные харвесты одного и того же района не публиковали их снова.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache — минимальный контракт кэша просмотренных карточек.
type SeenCache interface {
	// MarkSeen помечает ids просмотренными на ttl и возвращает те,
	// что не были помечены раньше (в исходном порядке).
	MarkSeen(ctx context.Context, ids []string) ([]string, error)
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "harvester:seen:"; ttl <= 0 — неделя.
func NewRedisCache(ctx context.Context, redisURL, prefix string, ttl time.Duration) (SeenCache, error) {
	const op = "cache.NewRedisCache"

	if prefix == "" {
		prefix = "harvester:seen:"
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &redisCache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *redisCache) key(id string) string { return c.prefix + id }

// MarkSeen выполняет SET NX EX для каждого id одним пайплайном.
func (c *redisCache) MarkSeen(ctx context.Context, ids []string) ([]string, error) {
	const op = "cache.MarkSeen"

	if len(ids) == 0 {
		return nil, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.BoolCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.SetNX(ctx, c.key(id), 1, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	fresh := make([]string, 0, len(ids))
	for i, cmd := range cmds {
		if cmd.Val() {
			fresh = append(fresh, ids[i])
		}
	}

	return fresh, nil
}

func (c *redisCache) Close() error { return c.rdb.Close() }
