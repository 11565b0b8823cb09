package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Open returns the Postgres cache when databaseURL is set and the in-memory
// cache otherwise. The returned func releases the pool.
func Open(ctx context.Context, databaseURL string, logger *zap.Logger) (TaskRepository, func(), error) {
	if databaseURL == "" {
		logger.Info("DATABASE_URL not set, caching tasks in memory")
		return NewMemoryRepo(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Successfully connected to the Database!")
	return NewTaskRepo(pool), pool.Close, nil
}
