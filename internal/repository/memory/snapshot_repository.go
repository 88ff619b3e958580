package memory

import (
	"context"

	"notesheet/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type SnapshotRepository struct {
	cache *cache.Cache
}

var _ contract.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository keeps snapshots for the lifetime of the process only.
func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *SnapshotRepository) Get(_ context.Context, key string) ([]byte, error) {
	if x, found := r.cache.Get(key); found {
		stored := x.([]byte)
		out := make([]byte, len(stored))
		copy(out, stored)
		return out, nil
	}
	return nil, nil
}

func (r *SnapshotRepository) Put(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	r.cache.Set(key, stored, cache.NoExpiration)
	return nil
}
