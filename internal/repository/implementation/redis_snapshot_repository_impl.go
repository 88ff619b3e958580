package implementation

import (
	"context"
	"errors"

	"notesheet/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

type RedisSnapshotRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisSnapshotRepository(rdb *redis.Client, prefix string) contract.SnapshotRepository {
	return &RedisSnapshotRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisSnapshotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Put overwrites unconditionally; no expiry.
func (r *RedisSnapshotRepository) Put(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}
