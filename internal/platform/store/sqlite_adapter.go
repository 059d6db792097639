package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"
)

// ErrNoRows is returned by Row.Scan on every backend when nothing matched
var ErrNoRows = sql.ErrNoRows

// sqliteAdapter wraps *sql.DB (modernc driver) and implements RowQuerier + TxRunner
type sqliteAdapter struct {
	db *sql.DB
	emitter
}

func newSQLiteAdapter(db *sql.DB, em emitter) *sqliteAdapter {
	return &sqliteAdapter{db: db, emitter: em}
}

var dollarParam = regexp.MustCompile(`\$(\d+)`)

// Rebind rewrites postgres $N placeholders to sqlite ?N ordinals
// ?N binds by position, so repeated or reordered placeholders keep their meaning
func Rebind(q string) string {
	return dollarParam.ReplaceAllString(q, "?$1")
}

func (a *sqliteAdapter) Ping(ctx context.Context) error {
	if a == nil || a.db == nil {
		return errors.New("sqlite: nil adapter")
	}
	return a.db.PingContext(ctx)
}

func (a *sqliteAdapter) Close() error { return a.db.Close() }

func (a *sqliteAdapter) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	return sqlExec(ctx, a.db, a.emitter, q, args)
}

func (a *sqliteAdapter) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	return sqlQuery(ctx, a.db, a.emitter, q, args)
}

func (a *sqliteAdapter) QueryRow(ctx context.Context, q string, args ...any) Row {
	return sqlQueryRow(ctx, a.db, a.emitter, q, args)
}

func (a *sqliteAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlTx{tx: tx, emitter: a.emitter}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// sqlConn is the part of *sql.DB and *sql.Tx the helpers need
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func sqlExec(ctx context.Context, c sqlConn, em emitter, q string, args []any) (CommandTag, error) {
	start := time.Now()
	res, err := c.ExecContext(ctx, Rebind(q), args...)
	em.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return sqlTag(n), nil
}

func sqlQuery(ctx context.Context, c sqlConn, em emitter, q string, args []any) (Rows, error) {
	start := time.Now()
	rs, err := c.QueryContext(ctx, Rebind(q), args...)
	em.emit(ctx, q, args, start, err)
	if err != nil {
		return nil, err
	}
	return sqlRows{r: rs}, nil
}

func sqlQueryRow(ctx context.Context, c sqlConn, em emitter, q string, args []any) Row {
	start := time.Now()
	r := c.QueryRowContext(ctx, Rebind(q), args...)
	return sqlRow{
		r: r,
		after: func(scanErr error) {
			em.emit(ctx, q, args, start, scanErr)
		},
	}
}

type sqlRow struct {
	r     *sql.Row
	after func(error)
}

func (x sqlRow) Scan(dst ...any) error {
	err := x.r.Scan(dst...)
	if x.after != nil {
		x.after(err)
	}
	return err
}

type sqlRows struct{ r *sql.Rows }

func (x sqlRows) Next() bool            { return x.r.Next() }
func (x sqlRows) Scan(dst ...any) error { return x.r.Scan(dst...) }
func (x sqlRows) Err() error            { return x.r.Err() }
func (x sqlRows) Close()                { _ = x.r.Close() }

type sqlTag int64

func (t sqlTag) RowsAffected() int64 { return int64(t) }

// sqlTx uses *sql.Tx to satisfy RowQuerier inside a Tx
type sqlTx struct {
	tx *sql.Tx
	emitter
}

func (t sqlTx) Exec(ctx context.Context, q string, args ...any) (CommandTag, error) {
	return sqlExec(ctx, t.tx, t.emitter, q, args)
}

func (t sqlTx) Query(ctx context.Context, q string, args ...any) (Rows, error) {
	return sqlQuery(ctx, t.tx, t.emitter, q, args)
}

func (t sqlTx) QueryRow(ctx context.Context, q string, args ...any) Row {
	return sqlQueryRow(ctx, t.tx, t.emitter, q, args)
}
