package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pet-progression/internal/config"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(ctx context.Context, cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger.With("component", "postgres"),
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// migrations are applied in order on startup; each is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		key VARCHAR(255) PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS progression_events (
		id BIGSERIAL PRIMARY KEY,
		player_id VARCHAR(64) NOT NULL,
		kind VARCHAR(32) NOT NULL,
		payload JSONB NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS currency_transactions (
		id VARCHAR(64) PRIMARY KEY,
		player_id VARCHAR(64) NOT NULL,
		type VARCHAR(10) NOT NULL,
		amount INT NOT NULL,
		source VARCHAR(32) NOT NULL,
		description TEXT,
		balance INT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS discoveries (
		id VARCHAR(64) PRIMARY KEY,
		player_id VARCHAR(64) NOT NULL,
		resource_id VARCHAR(64) NOT NULL,
		rarity VARCHAR(16) NOT NULL,
		quantity INT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
		player_id VARCHAR(64) PRIMARY KEY,
		score BIGINT NOT NULL,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_progression_events_player ON progression_events(player_id, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_currency_transactions_player ON currency_transactions(player_id, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_discoveries_player ON discoveries(player_id, occurred_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_leaderboard_snapshots_score ON leaderboard_snapshots(score DESC)`,
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	for _, migration := range migrations {
		if _, err := r.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}
