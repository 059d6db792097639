// Package repo provides the channel links repository implementation
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"oncallbot/internal/modkit/repokit"
	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/store"
	"oncallbot/internal/services/links/domain"
)

// Storage defines the channel links repository
type Storage interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, l domain.Link) error
	Remove(ctx context.Context, channelID string) (bool, error)
	Get(ctx context.Context, channelID string) (domain.Link, error)
	List(ctx context.Context) ([]domain.Link, error)
}

type (
	sqlRepo struct {
		q       repokit.Queryer
		dialect store.Driver
	}
	binder struct{ dialect store.Driver }
)

// New constructs a repo binder for the given SQL dialect
func New(dialect store.Driver) repokit.Binder[Storage] {
	if dialect == "" {
		dialect = store.DriverSQLite
	}
	return binder{dialect: dialect}
}

// Bind implements repokit.Binder
func (b binder) Bind(q repokit.Queryer) Storage { return &sqlRepo{q: q, dialect: b.dialect} }

const ddlSQLite = `CREATE TABLE IF NOT EXISTS channel_links (
	channel_id   TEXT PRIMARY KEY,
	channel_name TEXT NOT NULL DEFAULT '',
	schedule_id  TEXT NOT NULL,
	created_by   TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMP NOT NULL
)`

const ddlPG = `CREATE TABLE IF NOT EXISTS channel_links (
	channel_id   TEXT PRIMARY KEY,
	channel_name TEXT NOT NULL DEFAULT '',
	schedule_id  TEXT NOT NULL,
	created_by   TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Schema returns the table DDL for dialect
func Schema(dialect store.Driver) string {
	if dialect == store.DriverPostgres {
		return ddlPG
	}
	return ddlSQLite
}

// EnsureSchema implements Storage
func (r *sqlRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, Schema(r.dialect)); err != nil {
		return perr.FromDB(err, "create channel_links")
	}
	return nil
}

// Upsert implements Storage; relinking a channel replaces its row
func (r *sqlRepo) Upsert(ctx context.Context, l domain.Link) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO channel_links (channel_id, channel_name, schedule_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (channel_id) DO UPDATE SET
			channel_name = excluded.channel_name,
			schedule_id  = excluded.schedule_id,
			created_by   = excluded.created_by,
			created_at   = excluded.created_at`,
		l.ChannelID, l.ChannelName, l.ScheduleID, l.CreatedBy, l.CreatedAt.UTC(),
	)
	if err != nil {
		return perr.FromDBf(err, "upsert link %s", l.ChannelID)
	}
	return nil
}

// Remove implements Storage
func (r *sqlRepo) Remove(ctx context.Context, channelID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM channel_links WHERE channel_id = $1`, channelID)
	if err != nil {
		return false, perr.FromDBf(err, "remove link %s", channelID)
	}
	return tag.RowsAffected() > 0, nil
}

const selectCols = `SELECT channel_id, channel_name, schedule_id, created_by, created_at FROM channel_links`

// Get implements Storage; a missing link is perr.ErrNotFound
func (r *sqlRepo) Get(ctx context.Context, channelID string) (domain.Link, error) {
	l, err := store.One(ctx, r.q, scanLink, selectCols+` WHERE channel_id = $1`, channelID)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return domain.Link{}, err
		}
		return domain.Link{}, perr.FromDBf(err, "get link %s", channelID)
	}
	return l, nil
}

// List implements Storage
func (r *sqlRepo) List(ctx context.Context) ([]domain.Link, error) {
	out, err := store.Many(ctx, r.q, scanLink, selectCols+` ORDER BY channel_name, channel_id`)
	if err != nil {
		return nil, perr.FromDB(err, "list links")
	}
	return out, nil
}

func scanLink(row store.Row) (domain.Link, error) {
	var l domain.Link
	err := row.Scan(&l.ChannelID, &l.ChannelName, &l.ScheduleID, &l.CreatedBy, &scanTime{&l.CreatedAt})
	return l, err
}

// scanTime reads a timestamp from either backend
// pgx hands over time.Time, sqlite may hand over text
type scanTime struct{ t *time.Time }

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Scan implements sql.Scanner
func (s *scanTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s.t = time.Time{}
		return nil
	case time.Time:
		*s.t = v.UTC()
		return nil
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	default:
		return fmt.Errorf("channel_links.created_at: unsupported type %T", src)
	}
}

func (s *scanTime) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("channel_links.created_at: unparseable %q", v)
}
