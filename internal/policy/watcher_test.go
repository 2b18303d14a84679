package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcher_InvalidatesCacheOnWrite(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.json")
	aliasPath := filepath.Join(dir, "aliases.json")

	require.NoError(t, os.WriteFile(policyPath, []byte(`{"modules": {"a": {}}}`), 0644))
	require.NoError(t, os.WriteFile(aliasPath, []byte(
		`{"aliases": {"x": {"canonical": "a", "confidence": 0.8}}}`), 0644))

	cache := NewAliasCache(aliasPath)
	_, err := cache.Load()
	require.NoError(t, err)
	require.NotNil(t, cache.Get())

	changed := make(chan string, 4)
	w, err := NewWatcher(policyPath, aliasPath, cache, func(path string) {
		changed <- path
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Rewrite the alias file; after the debounce window the cache must be cold.
	require.NoError(t, os.WriteFile(aliasPath, []byte(`{"aliases": {}}`), 0644))

	select {
	case path := <-changed:
		require.Equal(t, filepath.Clean(aliasPath), filepath.Clean(path))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change notification")
	}

	require.Nil(t, cache.Get(), "cache should be invalidated after file change")
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.json")
	aliasPath := filepath.Join(dir, "aliases.json")
	require.NoError(t, os.WriteFile(policyPath, []byte(`{"modules": {}}`), 0644))

	changed := make(chan string, 4)
	w, err := NewWatcher(policyPath, aliasPath, nil, func(path string) {
		changed <- path
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	select {
	case path := <-changed:
		t.Fatalf("unexpected change notification for %s", path)
	case <-time.After(1 * time.Second):
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, "policy.json"), filepath.Join(dir, "aliases.json"), nil, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop() // Second Stop must not panic or block
}
