package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/adapters"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/store/memory"
	"github.com/FireWonders/personal-finance-assistant-ai-agent/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		repo store.Repository
		err  error
	)
	switch config.Type {
	case SQLiteBackend:
		repo, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		repo = memory.New()
		f.logger.InfoContext(ctx, "Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Repository: repo, Cleanup: repo.Close}
	if config.CacheTTL > 0 {
		size := config.CacheSize
		if size <= 0 {
			size = defaultCacheSize
		}
		cached := adapters.NewCachedRepository(repo, size, config.CacheTTL)
		result.Repository = cached
		result.Cleaners = cached.Cleaners()
		f.logger.InfoContext(ctx, "Recurring read cache enabled", "ttl", config.CacheTTL, "size", size)
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*storage.SQLiteRepository, error) {
	sqliteRepo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return sqliteRepo, nil
}
