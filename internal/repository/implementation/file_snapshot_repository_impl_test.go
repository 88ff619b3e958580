package implementation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSnapshotRepository(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "data")

	repo, err := NewFileSnapshotRepository(dir)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "notebookAppData")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Put(ctx, "notebookAppData", []byte(`{"notebooks":[]}`)))
	require.NoError(t, repo.Put(ctx, "notebookAppData", []byte(`{"notebooks":[{"id":"1"}]}`)))

	got, err = repo.Get(ctx, "notebookAppData")
	require.NoError(t, err)
	assert.Equal(t, `{"notebooks":[{"id":"1"}]}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}

func TestFileSnapshotRepositoryRejectsPathKeys(t *testing.T) {
	repo, err := NewFileSnapshotRepository(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, repo.Put(context.Background(), key, []byte("{}")), key)
	}
}
