package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastelog/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{StorageBackend: "sqlite", SQLiteDBPath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "x.db", cfg.SQLiteDBPath)

	_, err = FromAppConfig(&config.Config{StorageBackend: "sheets"})
	assert.Error(t, err)

	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: "redis"}.Validate())
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestFactoryCreatesWorkingStores(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "wastelog.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.Create(ctx, cfg)
			require.NoError(t, err)
			defer func() { require.NoError(t, res.Cleanup()) }()

			require.NoError(t, res.Store.SetItem(ctx, "wasteData", []byte("[]")))
			got, ok, err := res.Store.GetItem(ctx, "wasteData")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[]", string(got))
		})
	}
}
