package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Default pool limits. Small and fixed: callers that cannot get a connection
// in time fail instead of queueing.
const (
	DefaultMaxConns       = 5
	DefaultAcquireTimeout = 30 * time.Second
)

// Dialect captures what differs between storage engines.
type Dialect interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// Rebind rewrites a query written with ? placeholders into the
	// engine's native placeholder syntax.
	Rebind(query string) string

	// IsUniqueViolation reports whether err signals that a unique or
	// primary-key constraint rejected a write.
	IsUniqueViolation(err error) bool
}

// Querier is the subset of *sql.Conn and *sql.Tx repositories use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PoolOptions bounds a Pool.
type PoolOptions struct {
	MaxConns       int
	AcquireTimeout time.Duration
}

// DefaultPoolOptions returns DefaultMaxConns and DefaultAcquireTimeout.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxConns:       DefaultMaxConns,
		AcquireTimeout: DefaultAcquireTimeout,
	}
}

// Pool is a bounded set of storage connections shared by repositories.
// It is safe for concurrent use and holds no per-call state.
type Pool struct {
	db             *sql.DB
	dialect        Dialect
	acquireTimeout time.Duration
}

// NewPool takes ownership of db and caps it according to opts.
// Zero fields in opts fall back to the defaults.
func NewPool(db *sql.DB, dialect Dialect, opts PoolOptions) *Pool {
	if opts.MaxConns <= 0 {
		opts.MaxConns = DefaultMaxConns
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = DefaultAcquireTimeout
	}
	db.SetMaxOpenConns(opts.MaxConns)
	db.SetMaxIdleConns(opts.MaxConns)

	return &Pool{
		db:             db,
		dialect:        dialect,
		acquireTimeout: opts.AcquireTimeout,
	}
}

// DB exposes the underlying handle, e.g. for pool statistics.
func (p *Pool) DB() *sql.DB {
	return p.db
}

// Dialect returns the pool's storage dialect.
func (p *Pool) Dialect() Dialect {
	return p.dialect
}

// Close releases all connections.
func (p *Pool) Close() error {
	return p.db.Close()
}

// Acquire reserves a connection, waiting at most the pool's acquire timeout.
// The caller must Close the returned connection.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	conn, err := p.db.Conn(acquireCtx)
	if err != nil {
		return nil, Database(fmt.Errorf("failed to acquire connection: %w", err))
	}
	return conn, nil
}

// Run executes fn on a single pooled connection.
func (p *Pool) Run(ctx context.Context, fn func(q Querier) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(rebinder{q: conn, dialect: p.dialect})
}

// InTx executes fn inside one transaction: either every write fn makes is
// committed or none is. fn's error is returned unchanged after rollback.
func (p *Pool) InTx(ctx context.Context, fn func(q Querier) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Database(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(rebinder{q: tx, dialect: p.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return Database(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// Translate maps a storage failure onto the error taxonomy. Unique-constraint
// violations become KindDuplicate carrying duplicate as the reason; errors
// already classified pass through; anything else is KindDatabase.
func (p *Pool) Translate(err error, duplicate string) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	if p.dialect.IsUniqueViolation(err) {
		return Duplicate(duplicate)
	}
	return Database(err)
}

// rebinder rewrites placeholders for the pool's dialect on every call.
type rebinder struct {
	q       Querier
	dialect Dialect
}

func (r rebinder) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.q.ExecContext(ctx, r.dialect.Rebind(query), args...)
}

func (r rebinder) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.q.QueryContext(ctx, r.dialect.Rebind(query), args...)
}

func (r rebinder) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return r.q.QueryRowContext(ctx, r.dialect.Rebind(query), args...)
}

// RebindDollar turns ? placeholders into $1, $2, ... for engines that use
// numbered parameters. Question marks inside single-quoted literals are kept.
func RebindDollar(query string) string {
	out := make([]byte, 0, len(query)+8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			out = append(out, c)
		case c == '?' && !inQuote:
			n++
			out = append(out, '$')
			out = fmt.Appendf(out, "%d", n)
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
