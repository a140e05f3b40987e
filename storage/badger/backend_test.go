package badger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/memlane/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_InvalidPath(t *testing.T) {
	// Try to open a file path (not directory)
	tmpFile := t.TempDir() + "/file.txt"
	// Create a file at the path
	backend, err := OpenBackend(tmpFile, false)
	if err == nil {
		backend.Close()
	}
	// We expect this to either error or succeed (depending on mkdir behavior)
	// The key is that it should handle the case gracefully
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestOpenBackend_WithLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend, err := OpenBackend("", true, logger)
	require.NoError(t, err)
	defer backend.Close()

	assert.NotNil(t, backend.logger)
}

func TestTimelineKeyOrdering(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	older := makeTimelineKey(1, base, 99)
	newer := makeTimelineKey(1, base.Add(time.Microsecond), 1)
	otherUser := makeTimelineKey(2, base.Add(-time.Hour), 1)

	assert.Negative(t, bytes.Compare(older, newer))
	assert.Negative(t, bytes.Compare(newer, otherUser))
	assert.True(t, bytes.HasPrefix(older, makePartialTimelineKey(1)))
	assert.False(t, bytes.HasPrefix(otherUser, makePartialTimelineKey(1)))
	assert.Positive(t, bytes.Compare(seekLast(makePartialTimelineKey(1)), newer))
}

func TestTagKeyIsFixedWidth(t *testing.T) {
	short := makeTagKey(1, "go", 5)
	long := makeTagKey(1, "distributed-systems", 5)

	assert.Equal(t, len(short), len(long))
	assert.True(t, bytes.HasPrefix(short, makePartialTagKey(1)))
	assert.False(t, bytes.HasPrefix(makeItemKey(5), makePartialTagKey(1)))
}

func TestWithTransaction(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	t.Run("successful transaction", func(t *testing.T) {
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			// Transaction logic here
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("failed transaction", func(t *testing.T) {
		testErr := assert.AnError
		err := backend.WithTransaction(ctx, func(ctx context.Context) error {
			return testErr
		})
		assert.Equal(t, testErr, err)
	})
}

func TestCommitConflictIsTransactionFailure(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	key := []byte("conflict")
	reader := backend.db.NewTransaction(true)
	defer reader.Discard()
	_, err = reader.Get(key)
	require.ErrorIs(t, err, badger.ErrKeyNotFound)

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(key, []byte("first")); err != nil {
			return err
		}
		return commit(tx)
	}, true))

	require.NoError(t, reader.Set(key, []byte("second")))
	err = commit(reader)
	assert.ErrorIs(t, err, storage.ErrTransactionFailed)
	assert.ErrorIs(t, err, badger.ErrConflict)
}

func TestWithTx_Closed(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	called := false
	err = backend.WithTx(func(*badger.Txn) error {
		called = true
		return nil
	}, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.False(t, called)
}

func TestGetSequence(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	seq, err := backend.GetSequence("test_sequence")
	require.NoError(t, err)
	require.NotNil(t, seq)
	defer seq.Release()

	// Get sequential IDs
	id1, err := seq.Next()
	require.NoError(t, err)

	id2, err := seq.Next()
	require.NoError(t, err)

	// IDs should be sequential
	assert.Greater(t, id2, id1)
}
