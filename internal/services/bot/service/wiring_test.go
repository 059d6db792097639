package service

import (
	"context"
	"testing"
	"time"

	"oncallbot/internal/adapters/pagerduty"
	"oncallbot/internal/adapters/slack"
	"oncallbot/internal/modkit"
	"oncallbot/internal/platform/logger"
	"oncallbot/internal/platform/store"
	directory "oncallbot/internal/services/directory/domain"
	dirsvc "oncallbot/internal/services/directory/service"
	linksrepo "oncallbot/internal/services/links/repo"
	linksvc "oncallbot/internal/services/links/service"
	ocsvc "oncallbot/internal/services/oncall/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rotationStub answers every schedule with its fixed on-call rows
type rotationStub struct {
	bySched map[string][]pagerduty.OnCall
	calls   int
}

func (r *rotationStub) OnCalls(_ context.Context, q pagerduty.OnCallsQuery) (pagerduty.Index[pagerduty.OnCall], error) {
	r.calls++
	ix := pagerduty.Index[pagerduty.OnCall]{Items: map[string]pagerduty.OnCall{}}
	for _, id := range q.ScheduleIDs {
		for _, oc := range r.bySched[id] {
			k := oc.User.Email
			ix.Keys = append(ix.Keys, k)
			ix.Items[k] = oc
		}
	}
	return ix, nil
}

func (r *rotationStub) ServicesByEscalationPolicy(context.Context, string) ([]pagerduty.Service, error) {
	return nil, nil
}

func (r *rotationStub) CreateIncident(context.Context, string, string, string) (pagerduty.Incident, error) {
	return pagerduty.Incident{}, nil
}

// workspace is a chat directory whose channel list can grow between refreshes
type workspace struct {
	users    []directory.User
	channels []directory.Channel
}

func (w *workspace) Users(context.Context) ([]directory.User, error) { return w.users, nil }

func (w *workspace) Channels(context.Context) ([]directory.Channel, error) {
	return append([]directory.Channel(nil), w.channels...), nil
}

type wired struct {
	chat     *fakeChat
	rotation *rotationStub
	ws       *workspace
	router   *Router
}

func newWired(t *testing.T) *wired {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		Driver: store.DriverSQLite,
		SQLite: store.SQLiteConfig{Path: ":memory:"},
	}, store.WithLogger(logger.Nop()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(ctx) })

	lk := linksvc.New(modkit.Deps{Log: logger.Nop(), DB: st.DB, Driver: st.Driver}, linksrepo.New(st.Driver))
	require.NoError(t, lk.EnsureSchema(ctx))

	w := &wired{
		chat: &fakeChat{},
		rotation: &rotationStub{bySched: map[string][]pagerduty.OnCall{
			"S1": {{EscalationLevel: 1, User: pagerduty.User{ID: "PU1", Email: "a@x.com"}}},
		}},
		ws: &workspace{
			users: []directory.User{
				{ID: "U1", Name: "ada", Profile: slack.Profile{Email: "a@x.com"}},
				{ID: "U01BBBBBB", Name: "bob", Profile: slack.Profile{Email: "b@x.com"}},
				{ID: "U01SENDER", Name: "sam"},
			},
			channels: []directory.Channel{{ID: "C1", Name: "ops"}},
		},
	}
	engine := ocsvc.NewEngine(w.rotation, ocsvc.Config{CacheTTL: time.Minute}, logger.Nop())
	w.router = NewRouter(Deps{
		Chat:      w.chat,
		Directory: dirsvc.New(w.ws, time.Minute, logger.Nop()),
		Resolver:  ocsvc.NewResolver(lk, nil),
		Engine:    engine,
		Links:     lk,
	}, slack.Identity{UserID: botID, BotID: "B0SELF"}, Config{BotName: "oncall"}, logger.Nop())
	return w
}

func TestWho_LinkedChannel_EndToEnd(t *testing.T) {
	w := newWired(t)
	ctx := context.Background()

	w.router.Handle(ctx, dm("link <#C1|ops> S1"))
	require.Len(t, w.chat.user, 1)
	assert.Contains(t, w.chat.user[0].text, "Linked <#C1> to PagerDuty schedule `S1`.")

	w.router.Handle(ctx, channelMsg("C1", "U01SENDER", "<@"+botID+"> who"))
	require.Len(t, w.chat.channel, 1)
	assert.Equal(t, sent{"C1", "<@U1> are the humans OnCall."}, w.chat.channel[0])

	// a second question is answered from the cache
	w.router.Handle(ctx, channelMsg("C1", "U01SENDER", "<@"+botID+"> who"))
	require.Len(t, w.chat.channel, 2)
	assert.Equal(t, 1, w.rotation.calls)
}

func TestLink_NewChannelAnswersRightAway(t *testing.T) {
	w := newWired(t)
	ctx := context.Background()

	// warm the channel snapshot before the channel exists
	w.router.Handle(ctx, channelMsg("C1", "U01SENDER", "<@"+botID+"> who"))
	assert.Empty(t, w.chat.channel, "C1 is not linked and there are no defaults")

	w.ws.channels = append(w.ws.channels, directory.Channel{ID: "C9", Name: "incident-42"})
	w.router.Handle(ctx, dm("link <#C9|incident-42> S1"))
	require.Equal(t, []string{"C9"}, w.chat.joined)

	w.router.Handle(ctx, channelMsg("C9", "U01SENDER", "<@"+botID+"> who"))
	require.Len(t, w.chat.channel, 1)
	assert.Equal(t, sent{"C9", "<@U1> are the humans OnCall."}, w.chat.channel[0])
}
