package backends

import (
	"context"
	"path/filepath"
	"testing"

	"internship-scraper/internal/config"
	"internship-scraper/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_LocalDrivers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		driver string
		check  func(t *testing.T, b store.Backend)
	}{
		{"sqlite", func(t *testing.T, b store.Backend) { assert.IsType(t, &store.SQLiteBackend{}, b) }},
		{"", func(t *testing.T, b store.Backend) { assert.IsType(t, &store.SQLiteBackend{}, b) }},
		{"file", func(t *testing.T, b store.Backend) { assert.IsType(t, &store.FileBackend{}, b) }},
		{"MEMORY", func(t *testing.T, b store.Backend) { assert.IsType(t, &store.MemoryBackend{}, b) }},
	}

	for _, tc := range cases {
		t.Run("driver="+tc.driver, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			cfg.App.DataDir = t.TempDir()
			cfg.Storage.Driver = tc.driver

			b, err := Open(context.Background(), cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			tc.check(t, b)
		})
	}
}

func TestOpen_FileDriverUsesDataDir(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.App.DataDir = t.TempDir()
	cfg.Storage.Driver = "file"

	b, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	assert.FileExists(t, filepath.Join(cfg.App.DataDir, "jobs.jsonl"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Storage.Driver = "cassandra"

	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
}
