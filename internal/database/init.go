package database

import (
	"context"
	"fmt"

	"github.com/yourusername/pitchside/internal/config"
)

// Initialize creates a database connection pool and verifies the quota schema
// is in place.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = db.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'user_quotas')",
	).Scan(&exists)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if !exists {
		db.Close()
		return nil, fmt.Errorf("user_quotas table not found, run migrations first: migrate -path migrations -database \"your_dsn\" up")
	}

	return db, nil
}
