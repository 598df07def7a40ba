// Package postgres implements the PostgreSQL persistence layer for the
// admissions portal. It is the transactional document store behind the
// application, course, document, and notification repositories: all
// cross-record invariants (one accepted offer per student, the admission
// reconciliation) are enforced inside transactions here.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrConnectionClosed indicates the connection pool is closed.
	ErrConnectionClosed = errors.New("postgres: connection pool is closed")

	// ErrMigrationFailed indicates a migration failure.
	ErrMigrationFailed = errors.New("postgres: migration failed")
)

// Connection wraps a pgx pool. Every call is bounded by the configured
// query timeout so no store operation blocks a request indefinitely.
type Connection struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// PoolSettings sizes the pgx pool. Zero values keep the defaults of
// pgxpool.ParseConfig plus modest lifetime bounds suited to a single
// service instance.
type PoolSettings struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

func buildPoolConfig(databaseURL string, settings PoolSettings) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database URL: %w", err)
	}

	if settings.MaxConns > 0 {
		poolConfig.MaxConns = int32(settings.MaxConns)
	}
	if settings.MinConns > 0 {
		poolConfig.MinConns = int32(settings.MinConns)
	}

	poolConfig.MaxConnLifetime = time.Hour
	if settings.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = settings.ConnMaxLifetime
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	if settings.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = settings.ConnMaxIdleTime
	}
	poolConfig.HealthCheckPeriod = time.Minute

	return poolConfig, nil
}

// NewConnectionFromURL opens a pool from a postgres:// URL and verifies
// it with a ping.
func NewConnectionFromURL(ctx context.Context, databaseURL string, settings PoolSettings) (*Connection, error) {
	poolConfig, err := buildPoolConfig(databaseURL, settings)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	queryTimeout := settings.QueryTimeout
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	return &Connection{pool: pool, queryTimeout: queryTimeout}, nil
}

// Ping reports whether the database is reachable.
func (c *Connection) Ping(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnectionClosed
	}
	return c.pool.Ping(ctx)
}

// Close shuts the pool down. Safe to call more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.pool.Close()
}

func (c *Connection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.queryTimeout)
}

// Exec runs a statement that returns no rows.
func (c *Connection) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return pgconn.CommandTag{}, ErrConnectionClosed
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.pool.Exec(ctx, sql, args...)
}

// Query runs a statement that returns rows.
func (c *Connection) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrConnectionClosed
	}
	return c.pool.Query(ctx, sql, args...)
}

// QueryRow runs a statement that returns at most one row.
func (c *Connection) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool.QueryRow(ctx, sql, args...)
}

// WithTx runs fn in a read-committed transaction bounded by the query
// timeout, committing on nil and rolling back otherwise. Row locks taken
// inside fn with SELECT ... FOR UPDATE serialize concurrent writers.
func (c *Connection) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}
	c.mu.RUnlock()

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// IsUniqueViolation reports a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsNoRows reports an empty single-row result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUnavailable reports a transient store failure: pool closed, timeout,
// or a connection-level error rather than a statement-level one.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConnectionClosed) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exceptions, class 40 transaction
		// rollbacks (serialization failure, deadlock victim), class 57
		// operator intervention. All clear on retry.
		return len(pgErr.Code) >= 2 &&
			(pgErr.Code[:2] == "08" || pgErr.Code[:2] == "40" || pgErr.Code[:2] == "57")
	}
	return pgconn.Timeout(err)
}
