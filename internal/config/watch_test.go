package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Default().SaveTo(path))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	changed := make(chan struct{}, 4)
	require.NoError(t, Watch(ctx, path, func() { changed <- struct{}{} }, nil))

	// Unrelated files in the same directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	cfg := Default()
	cfg.Display.HiddenUsers = []string{"bob"}
	require.NoError(t, cfg.SaveTo(path))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "config.toml"), func() {}, nil)
	require.Error(t, err)
}
