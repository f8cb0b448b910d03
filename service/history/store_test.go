package history

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brojonat/solcash/service/metrics"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Empty store loads an empty history.
	h, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, h)

	saved := History{{ID: "2", Signature: "sigB"}, {ID: "1", Signature: "sigA"}}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)

	// Mutating the loaded copy does not leak back into the store.
	loaded[0].Status = StatusConfirmed
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", again[0].Status)
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	store := NewFileStore(path, testLogger())

	saved := History{{ID: "1", Signature: "sigA", Description: "lunch", Amount: 1.5}}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "sigA", loaded[0].Signature)
	assert.Equal(t, 1.5, loaded[0].Amount)

	// Loading again without an intervening save yields the same sequence.
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, loaded, again)
}

func TestFileStore_MissingFile(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist.json"), testLogger())

	h, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestFileStore_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store := NewFileStore(path, testLogger())

	// Corruption is swallowed: the history starts over empty.
	h, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	store := NewFileStore(path, testLogger())

	require.NoError(t, store.Save(ctx, History{{ID: "1"}}))
	require.NoError(t, store.Save(ctx, History{{ID: "2"}, {ID: "1"}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "2", loaded[0].ID)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestInstrumentedStore_Delegates(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewMetrics(prometheus.NewRegistry())
	store := NewInstrumentedStore(NewMemoryStore(), "memory", m)

	require.NoError(t, store.Save(ctx, History{{ID: "1"}}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "1", loaded[0].ID)
}

func TestInstrumentedStore_NilMetrics(t *testing.T) {
	ctx := context.Background()
	store := NewInstrumentedStore(NewMemoryStore(), "memory", nil)

	require.NoError(t, store.Save(ctx, History{{ID: "1"}}))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
