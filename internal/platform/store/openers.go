package store

import (
	"context"
	"fmt"
	"time"

	"oncallbot/internal/platform/store/pg"
	"oncallbot/internal/platform/store/sqlite"
)

// tracerFor picks the explicit tracer first, then the logging tracer when logSQL is on
func tracerFor(s *Store, logSQL bool, slowMs int) emitter {
	em := emitter{tracer: s.tracer, slowUS: int64(slowMs) * 1000}
	if em.tracer == nil && logSQL {
		em.tracer = Tracer(s.Log)
	}
	return em
}

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
	}, nil)
	if err != nil {
		return nil, err
	}

	// connection guardrails: ping with retry/backoff using the pool directly
	maxAttempts := cfg.PG.ConnectRetries
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for range maxAttempts {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return newPGAdapter(p, tracerFor(s, cfg.PG.LogSQL, cfg.PG.SlowQueryMs)), nil
		}
		if ctx.Err() != nil {
			p.Close()
			return nil, ctx.Err()
		}
		s.Log.Warn().Err(lastErr).Dur("backoff", backoff).Msg("postgres not ready")
		time.Sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", maxAttempts, lastErr)
}

// openSQLite opens the modernc sqlite file (or memory) database
func openSQLite(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	db, err := sqlite.Open(ctx, sqlite.Config{
		Path:        cfg.SQLite.Path,
		BusyTimeout: cfg.SQLite.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open %q: %w", cfg.SQLite.Path, err)
	}
	return newSQLiteAdapter(db, tracerFor(s, cfg.SQLite.LogSQL, cfg.SQLite.SlowQueryMs)), nil
}
