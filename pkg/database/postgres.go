package database

import (
	"context"
	"fmt"
	"time"

	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"solana-wallet-backend/config"
)

// Postgres wraps the connection pool together with the transactor used by
// the repositories. DBGetter resolves to the pool or to the transaction
// bound to the current context.
type Postgres struct {
	Pool       *pgxpool.Pool
	Transactor *tx.Transactor
	DBGetter   tx.DBGetter
}

// Option tweaks the pool configuration before connecting.
type Option func(*pgxpool.Config)

// MaxPoolSize sets the maximum number of pooled connections.
func MaxPoolSize(size int32) Option {
	return func(c *pgxpool.Config) {
		c.MaxConns = size
	}
}

// ConnTimeout sets the per-connection dial timeout in seconds.
func ConnTimeout(seconds int) Option {
	return func(c *pgxpool.Config) {
		c.ConnConfig.ConnectTimeout = time.Duration(seconds) * time.Second
	}
}

// HealthCheckPeriod sets the pool health check interval in minutes.
func HealthCheckPeriod(minutes int) Option {
	return func(c *pgxpool.Config) {
		c.HealthCheckPeriod = time.Duration(minutes) * time.Minute
	}
}

// Isolation sets the default transaction isolation level for every
// connection in the pool.
func Isolation(level pgx.TxIsoLevel) Option {
	return func(c *pgxpool.Config) {
		c.ConnConfig.RuntimeParams["default_transaction_isolation"] = string(level)
	}
}

// New connects to Postgres and wires up the transactor.
func New(cfg *config.Config, opts ...Option) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DB.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	for _, opt := range opts {
		opt(poolConfig)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	transactor, dbGetter := tx.NewTransactorFromPool(pool)

	return &Postgres{
		Pool:       pool,
		Transactor: transactor,
		DBGetter:   dbGetter,
	}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.Pool.Close()
}
