package ingest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workerDoc = `{
	"categories": [
		{"code": "DROP.001", "name": "Dropped Groceries", "category_type": "expense"},
		{"code": "DROP.002", "name": "Dropped Salary", "category_type": "income"}
	]
}`

func writeDocument(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestImportQueueProcessesDocument(t *testing.T) {
	svc, fake := newTestService(t)
	q := NewImportQueue(svc, testLogger(), WithWorkers(1))

	path := writeDocument(t, t.TempDir(), "chart.json", workerDoc)
	require.NoError(t, q.Enqueue(context.Background(), path))
	q.Shutdown(context.Background())

	assert.Equal(t, 2, fake.Len())

	_, err := os.Stat(path + ".imported")
	assert.NoError(t, err, "processed document should carry the .imported suffix")
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestImportQueueMarksFailedDocument(t *testing.T) {
	svc, fake := newTestService(t)
	q := NewImportQueue(svc, testLogger(), WithWorkers(1))

	path := writeDocument(t, t.TempDir(), "broken.json", `{"categories":[{"name":"No Code"}]}`)
	require.NoError(t, q.Enqueue(context.Background(), path))
	q.Shutdown(context.Background())

	assert.Equal(t, 0, fake.Len())

	_, err := os.Stat(path + ".failed")
	assert.NoError(t, err, "rejected document should carry the .failed suffix")
}

func TestImportQueueSkipsMissingDocument(t *testing.T) {
	svc, fake := newTestService(t)
	q := NewImportQueue(svc, testLogger(), WithWorkers(1))

	missing := filepath.Join(t.TempDir(), "gone.json")
	require.NoError(t, q.Enqueue(context.Background(), missing))
	q.Shutdown(context.Background())

	assert.Equal(t, 0, fake.Len())

	entries, err := os.ReadDir(filepath.Dir(missing))
	require.NoError(t, err)
	assert.Empty(t, entries, "a missing document must not leave renamed artifacts")
}

func TestImportQueueDrainsOnShutdown(t *testing.T) {
	svc, fake := newTestService(t)
	q := NewImportQueue(svc, testLogger(), WithWorkers(2), WithQueueSize(8))

	dir := t.TempDir()
	first := writeDocument(t, dir, "first.json", workerDoc)
	second := writeDocument(t, dir, "second.json", `{
		"categories": [
			{"code": "DROP.003", "name": "Dropped Utilities", "category_type": "expense"}
		]
	}`)

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))
	q.Shutdown(ctx)

	assert.Equal(t, 3, fake.Len())

	// A second shutdown is a no-op, and late enqueues are dropped.
	q.Shutdown(ctx)
	require.NoError(t, q.Enqueue(ctx, first))
	assert.Equal(t, 3, fake.Len())
}

func TestImportQueueReportsStorageFailures(t *testing.T) {
	svc, fake := newTestService(t)
	fake.SetError(errors.New("disk full"))
	q := NewImportQueue(svc, testLogger(), WithWorkers(1))

	path := writeDocument(t, t.TempDir(), "chart.json", workerDoc)
	require.NoError(t, q.Enqueue(context.Background(), path))
	q.Shutdown(context.Background())

	assert.Equal(t, 0, fake.Len())
	_, err := os.Stat(path + ".failed")
	assert.NoError(t, err)
}
