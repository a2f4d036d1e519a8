package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datamanager/internal/core"
	"github.com/JonMunkholm/datamanager/internal/store"
)

func openTemp(t *testing.T) *KV {
	t.Helper()
	kv, err := Open(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(kv.Close)
	return kv
}

func TestKV_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	kv := openTemp(t)

	_, ok, err := kv.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Put(ctx, "ns", "k", []byte("v1")))
	require.NoError(t, kv.Put(ctx, "ns", "k", []byte("v2")))

	got, ok, err := kv.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, kv.Delete(ctx, "ns", "k"))
	_, ok, err = kv.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_PurgeBefore(t *testing.T) {
	ctx := context.Background()
	kv := openTemp(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return base }
	require.NoError(t, kv.Put(ctx, "a", "k", []byte("old")))
	kv.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, kv.Put(ctx, "b", "k", []byte("new")))

	n, err := kv.PurgeBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, _ := kv.Get(ctx, "b", "k")
	assert.True(t, ok)
}

func TestKV_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "layouts.db")

	kv, err := Open(ctx, path)
	require.NoError(t, err)
	layout := store.NewLayout(kv, "default")
	cols := []core.Column{{ID: "x-1", Label: "X"}}
	require.NoError(t, layout.SaveLayout(ctx, cols))
	kv.Close()

	reopened, err := store.Open(ctx, store.Config{Kind: "sqlite", DSN: path})
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := store.NewLayout(reopened, "default").LoadLayout(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cols, got)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
