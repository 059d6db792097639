package service

import (
	"context"
	"testing"
	"time"

	"oncallbot/internal/modkit"
	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
	"oncallbot/internal/platform/store"
	dom "oncallbot/internal/services/links/domain"
	lrepo "oncallbot/internal/services/links/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSvc(t *testing.T) *Svc {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		Driver: store.DriverSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	}, store.WithLogger(logger.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(ctx) })

	s := New(modkit.Deps{Log: logger.Nop(), DB: st.DB, Driver: st.Driver}, lrepo.New(st.Driver))
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx), "schema bootstrap must be repeatable")
	return s
}

func TestUpsert_RelinkReplaces(t *testing.T) {
	ctx := context.Background()
	s := newSvc(t)

	require.NoError(t, s.Upsert(ctx, dom.Link{ChannelID: "C1", ChannelName: "ops", ScheduleID: "S1", CreatedBy: "U1"}))
	require.NoError(t, s.Upsert(ctx, dom.Link{ChannelID: "C1", ChannelName: "ops", ScheduleID: "S2", CreatedBy: "U2"}))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "S2", all[0].ScheduleID)
	assert.Equal(t, "U2", all[0].CreatedBy)

	l, ok, err := s.Get(ctx, "C1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "S2", l.ScheduleID)
	assert.WithinDuration(t, time.Now(), l.CreatedAt, time.Minute)
}

func TestRemove_Missing_LeavesOthers(t *testing.T) {
	ctx := context.Background()
	s := newSvc(t)
	require.NoError(t, s.Upsert(ctx, dom.Link{ChannelID: "C1", ChannelName: "ops", ScheduleID: "S1"}))

	changed, err := s.Remove(ctx, "C404")
	require.NoError(t, err)
	assert.False(t, changed)

	_, ok, err := s.Get(ctx, "C1")
	require.NoError(t, err)
	assert.True(t, ok, "unrelated link must survive")

	changed, err = s.Remove(ctx, "C1")
	require.NoError(t, err)
	assert.True(t, changed)

	_, ok, err = s.Get(ctx, "C1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestList_OrderedByName(t *testing.T) {
	ctx := context.Background()
	s := newSvc(t)
	for _, l := range []dom.Link{
		{ChannelID: "C3", ChannelName: "zeta", ScheduleID: "S3"},
		{ChannelID: "C1", ChannelName: "alpha", ScheduleID: "S1"},
		{ChannelID: "C2", ChannelName: "mid", ScheduleID: "S2"},
	} {
		require.NoError(t, s.Upsert(ctx, l))
	}
	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, []string{all[0].ChannelName, all[1].ChannelName, all[2].ChannelName})
}

func TestUpsert_RejectsBadScheduleID(t *testing.T) {
	ctx := context.Background()
	s := newSvc(t)

	err := s.Upsert(ctx, dom.Link{ChannelID: "C1", ScheduleID: "not-a-url???"})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))

	err = s.Upsert(ctx, dom.Link{ScheduleID: "S1"})
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeValidation))

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing persisted on validation failure")
}

func TestGet_EmptyID(t *testing.T) {
	s := newSvc(t)
	_, ok, err := s.Get(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
