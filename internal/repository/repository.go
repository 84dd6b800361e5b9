// Package repository implements the storage contracts over a shared
// storage.Pool. Repositories are stateless: any number of them may be built
// over one pool and used concurrently.
//
// Every operation returns either a value or a *storage.Error. Unique
// constraint violations surface as storage.ErrDuplicate; the repositories
// never check for existence before writing.
package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/mmynk/giftregistry/internal/metrics"
	"github.com/mmynk/giftregistry/internal/storage"
)

// Option configures a repository.
type Option func(*base)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		b.logger = logger
	}
}

// WithMetrics records operation latency and errors.
func WithMetrics(m *metrics.Repository) Option {
	return func(b *base) {
		b.metrics = m
	}
}

// base holds what every repository shares. None of it changes after construction.
type base struct {
	name    string
	pool    *storage.Pool
	logger  *slog.Logger
	metrics *metrics.Repository
}

func newBase(name string, pool *storage.Pool, opts []Option) base {
	b := base{
		name:   name,
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&b)
	}
	b.logger = b.logger.With("repository", name, "dialect", pool.Dialect().Name())
	return b
}

// observe is deferred by every operation with a pointer to its named error.
func (b *base) observe(op string, start time.Time, errp *error) {
	err := *errp
	elapsed := time.Since(start)
	if err == nil {
		b.metrics.Observe(b.name, op, "", elapsed)
		return
	}

	kind := storage.KindOf(err)
	b.metrics.Observe(b.name, op, kind.String(), elapsed)

	switch kind {
	case storage.KindDuplicate:
		b.logger.Warn("Duplicate entry", "operation", op, "error", err)
	case storage.KindNotFound, storage.KindValidation:
		b.logger.Debug("Operation rejected", "operation", op, "error", err)
	default:
		b.logger.Error("Operation failed", "operation", op, "error", err, "duration_ms", elapsed.Milliseconds())
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

// nullable converts an optional string into a query argument.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
