package backend

import (
	"context"
	"fmt"
	"strings"

	applog "expenselog/internal/log"
	"expenselog/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory. Repositories it builds log
// through the same handler under the storage component.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case CSVBackend:
		return f.createCSVBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type %q: must be one of %s", config.Type, strings.Join(GetBackendTypeStrings(), ", "))
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend", applog.FieldLocation, config.SQLiteDBPath)

	return &BackendResult{
		Repository: repo,
		Cleanup:    repo.Close,
	}, nil
}

func (f *DefaultFactory) createCSVBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo := storage.NewCSVRepository(config.CSVPath, f.logger)

	f.logger.InfoContext(ctx, "Initialized CSV backend", applog.FieldLocation, config.CSVPath)

	return &BackendResult{
		Repository: repo,
		Cleanup:    nil, // the file is opened per operation
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.WarnContext(ctx, "Initialized memory backend, saved expenses are lost on exit")

	return &BackendResult{
		Repository: storage.NewMemoryRepository(nil),
	}, nil
}
