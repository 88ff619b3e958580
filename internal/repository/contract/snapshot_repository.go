package contract

import "context"

// SnapshotRepository is durable key/value storage holding serialized snapshots.
// Get returns (nil, nil) when the key has never been written.
type SnapshotRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
