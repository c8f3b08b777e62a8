package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/adapters"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/config"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/core"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store/memory"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/storage"
)

func TestCreateMemoryBackendWithoutCache(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	defer res.Cleanup()

	assert.IsType(t, &memory.Store{}, res.Repository)
	assert.Empty(t, res.Cleaners)
}

func TestCreateMemoryBackendWithCache(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, CacheTTL: time.Minute})
	require.NoError(t, err)

	assert.IsType(t, &adapters.CachedRepository{}, res.Repository)
	assert.Len(t, res.Cleaners, 2)
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finplan.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	defer res.Cleanup()

	require.IsType(t, &storage.SQLiteRepository{}, res.Repository)
	_, err = res.Repository.GetGoal(context.Background(), 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.CreateBackend(context.Background(), Config{Type: "postgres"})
	assert.Error(t, err)
	_, err = f.CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.Error(t, err)
	_, err = f.CreateBackend(context.Background(), Config{Type: MemoryBackend, CacheTTL: -time.Second})
	assert.Error(t, err)
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", RecurringCacheTTL: time.Second})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, time.Second, cfg.CacheTTL)
	assert.Equal(t, defaultCacheSize, cfg.CacheSize)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}
