// Package store provides a unified SQL seam over the supported link-table backends
package store

import (
	"context"
	"errors"

	"oncallbot/internal/platform/logger"
)

// Driver names a SQL backend
type Driver string

const (
	// DriverSQLite is the default single-file backend
	DriverSQLite Driver = "sqlite"
	// DriverPostgres is the pgxpool backend for shared deployments
	DriverPostgres Driver = "postgres"
)

// Store is the facade over the configured backend
// zero value is safe but has no DB
type Store struct {
	// Log is the logger used by subclients
	Log logger.Logger

	// Driver is the backend DB was opened with
	Driver Driver

	// DB is the sql seam, nil when not opened
	DB TxRunner

	tracer QueryTracer
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
// statements use $N placeholders on every backend
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store for cfg.Driver
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("driver", string(cfg.Driver)).Logger()

	var (
		db  TxRunner
		err error
	)
	switch cfg.Driver {
	case DriverPostgres:
		db, err = openPG(ctx, cfg, s)
	case DriverSQLite, "":
		cfg.Driver = DriverSQLite
		db, err = openSQLite(ctx, cfg, s)
	default:
		return nil, errors.New("store: unknown driver " + string(cfg.Driver))
	}
	if err != nil {
		return nil, err
	}
	s.Driver = cfg.Driver
	s.DB = db
	return s, nil
}

// Guard pings the configured backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store: not opened")
	}
	if p, ok := s.DB.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the backend; a nil DB is ignored
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.DB.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
