package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"oncallbot/internal/adapters/pagerduty"
	"oncallbot/internal/adapters/slack"
	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
	directory "oncallbot/internal/services/directory/domain"
	links "oncallbot/internal/services/links/domain"
	oncall "oncallbot/internal/services/oncall/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botID = "U0BOT0001"

type sent struct{ to, text string }

type fakeChat struct {
	mu       sync.Mutex
	channel  []sent
	user     []sent
	joined   []string
	joinFail error
}

func (f *fakeChat) PostToChannel(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channel = append(f.channel, sent{id, text})
	return nil
}

func (f *fakeChat) PostToUser(_ context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = append(f.user, sent{id, text})
	return nil
}

func (f *fakeChat) JoinChannel(_ context.Context, id string) error {
	f.joined = append(f.joined, id)
	return f.joinFail
}

type fakeDir struct {
	users    []directory.User
	channels []directory.Channel
	forgets  int
}

func (d *fakeDir) ForgetChannels() { d.forgets++ }

func (d fakeDir) find(match func(directory.User) bool, v string) (directory.User, error) {
	for _, u := range d.users {
		if match(u) {
			return u, nil
		}
	}
	return directory.User{}, perr.NotMappedf("%s not mapped to user", v)
}

func (d fakeDir) ResolveUser(ctx context.Context, v string) (directory.User, error) {
	switch directory.ShapeOf(v) {
	case directory.ByEmail:
		return d.UserByEmail(ctx, v)
	case directory.ByID:
		return d.UserByID(ctx, v)
	}
	return d.UserByName(ctx, v)
}

func (d fakeDir) UserByID(_ context.Context, id string) (directory.User, error) {
	return d.find(func(u directory.User) bool { return u.ID == id }, id)
}

func (d fakeDir) UserByEmail(_ context.Context, e string) (directory.User, error) {
	return d.find(func(u directory.User) bool { return u.Profile.Email == e }, e)
}

func (d fakeDir) UserByName(_ context.Context, n string) (directory.User, error) {
	return d.find(func(u directory.User) bool { return u.Name == n }, n)
}

func (d fakeDir) ChannelByID(_ context.Context, id string) (directory.Channel, error) {
	for _, c := range d.channels {
		if c.ID == id {
			return c, nil
		}
	}
	return directory.Channel{}, perr.NotMappedf("%s not mapped to channel", id)
}

func (d fakeDir) ChannelByName(_ context.Context, n string) (directory.Channel, error) {
	for _, c := range d.channels {
		if c.Name == n {
			return c, nil
		}
	}
	return directory.Channel{}, perr.NotMappedf("%s not mapped to channel", n)
}

type memLinks struct {
	m   map[string]links.Link
	err error
}

func (l *memLinks) Upsert(_ context.Context, x links.Link) error {
	if l.err != nil {
		return l.err
	}
	l.m[x.ChannelID] = x
	return nil
}

func (l *memLinks) Remove(_ context.Context, id string) (bool, error) {
	_, ok := l.m[id]
	delete(l.m, id)
	return ok, nil
}

func (l *memLinks) Get(_ context.Context, id string) (links.Link, bool, error) {
	x, ok := l.m[id]
	return x, ok, nil
}

func (l *memLinks) List(context.Context) ([]links.Link, error) {
	out := make([]links.Link, 0, len(l.m))
	for _, x := range l.m {
		out = append(out, x)
	}
	return out, nil
}

type resolver struct {
	links    *memLinks
	defaults bool
}

func (r resolver) Resolve(ctx context.Context, ch string) (oncall.Resolution, error) {
	if l, ok, _ := r.links.Get(ctx, ch); ok {
		return oncall.Resolution{Kind: oncall.Resolved, Params: oncall.ForSchedule(l.ScheduleID)}, nil
	}
	if r.defaults {
		return oncall.Resolution{Kind: oncall.UseDefault}, nil
	}
	return oncall.Resolution{Kind: oncall.Unconfigured}, nil
}

type fakeEngine struct {
	bySched  map[string][]oncall.Entry
	defaults []oncall.Entry
	err      error
	calls    int
}

func (e *fakeEngine) OnCallsFor(ctx context.Context, r oncall.Resolution) ([]oncall.Entry, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	switch r.Kind {
	case oncall.Resolved:
		return e.bySched[r.Params.ScheduleIDs[0]], nil
	case oncall.UseDefault:
		return e.defaults, nil
	}
	return nil, perr.Configf("no schedule configured")
}

func (e *fakeEngine) GetOnCalls(ctx context.Context, p oncall.ScheduleParams) ([]oncall.Entry, error) {
	return e.OnCallsFor(ctx, oncall.Resolution{Kind: oncall.Resolved, Params: p})
}

func (e *fakeEngine) ResolveServiceID(context.Context) (string, error) { return "", nil }

func (e *fakeEngine) CreateIncident(context.Context, string) (pagerduty.Incident, error) {
	return pagerduty.Incident{}, nil
}

func entry(level int, email string) oncall.Entry {
	return oncall.Entry{EscalationLevel: level, User: pagerduty.User{Email: email}}
}

type harness struct {
	chat   *fakeChat
	links  *memLinks
	engine *fakeEngine
	dir    *fakeDir
	router *Router
}

func newHarness(defaults bool, cfg Config) *harness {
	h := &harness{
		chat:  &fakeChat{},
		links: &memLinks{m: map[string]links.Link{}},
		engine: &fakeEngine{
			bySched:  map[string][]oncall.Entry{"S1": {entry(1, "a@x.com")}},
			defaults: []oncall.Entry{entry(1, "a@x.com"), entry(2, "b@x.com")},
		},
	}
	h.dir = &fakeDir{
		users: []directory.User{
			{ID: "U01AAAAAA", Name: "ada", Profile: slack.Profile{Email: "a@x.com"}},
			{ID: "U01BBBBBB", Name: "bob", Profile: slack.Profile{Email: "b@x.com"}},
			{ID: "U01SENDER", Name: "sam"},
			{ID: "U01RELAYB", Name: "relay", IsBot: true},
			{ID: botID, Name: "oncall", IsBot: true},
		},
		channels: []directory.Channel{{ID: "C1", Name: "ops"}, {ID: "C2", Name: "dev"}},
	}
	h.router = NewRouter(Deps{
		Chat:      h.chat,
		Directory: h.dir,
		Resolver:  resolver{links: h.links, defaults: defaults},
		Engine:    h.engine,
		Links:     h.links,
	}, slack.Identity{UserID: botID, BotID: "B0SELF"}, cfg, logger.Nop())
	return h
}

func channelMsg(channel, user, text string) slack.Event {
	return slack.Event{EventID: "Ev1", Type: "message", Channel: channel, ChannelType: "channel", User: user, Text: text}
}

func dm(text string) slack.Event {
	return slack.Event{EventID: "Ev2", Type: "message", Channel: "D1", ChannelType: "im", User: "U01SENDER", Text: text}
}

func TestWho_LinkedChannel(t *testing.T) {
	h := newHarness(false, Config{})
	h.links.m["C1"] = links.Link{ChannelID: "C1", ScheduleID: "S1"}

	h.router.Handle(context.Background(), channelMsg("C1", "U01SENDER", "<@"+botID+"> who"))

	require.Len(t, h.chat.channel, 1)
	assert.Equal(t, sent{"C1", "<@U01AAAAAA> are the humans OnCall."}, h.chat.channel[0])
}

func TestUnconfiguredChannel_IsSilent(t *testing.T) {
	h := newHarness(false, Config{})
	for _, text := range []string{"<@" + botID + "> who", "<@" + botID + ">", "<@" + botID + "> help!"} {
		h.router.Handle(context.Background(), channelMsg("C2", "U01SENDER", text))
	}
	assert.Empty(t, h.chat.channel)
	assert.Empty(t, h.chat.user)
	assert.Zero(t, h.engine.calls)
}

func TestChannelReplies_Defaults(t *testing.T) {
	cases := []struct {
		name, text, want string
	}{
		{"summon", "<@" + botID + ">", "<@U01AAAAAA> <@U01BBBBBB>, get in here! :point_up_2:"},
		{"summon mobile colon", "<@" + botID + ">:", "<@U01AAAAAA> <@U01BBBBBB>, get in here! :point_up_2:"},
		{"who mobile colon", "<@" + botID + ">: who", "<@U01AAAAAA> <@U01BBBBBB> are the humans OnCall."},
		{"relay leading", "<@" + botID + "> db is down", `<@U01AAAAAA> <@U01BBBBBB>, <@U01SENDER> said _"db is down"_`},
		{"relay inline", "<@U01AAAAAA> ping <@" + botID + "> please", `<@U01AAAAAA> <@U01BBBBBB>, <@U01SENDER> said _"ping <@` + botID + `> please"_`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness(true, Config{})
			h.router.Handle(context.Background(), channelMsg("C2", "U01SENDER", c.text))
			require.Len(t, h.chat.channel, 1)
			assert.Equal(t, c.want, h.chat.channel[0].text)
		})
	}
}

func TestChannel_TestUserOverride(t *testing.T) {
	h := newHarness(true, Config{TestUser: "U0TESTER1"})
	h.router.Handle(context.Background(), channelMsg("C2", "U01SENDER", "<@"+botID+"> who"))
	require.Len(t, h.chat.channel, 1)
	assert.Equal(t, "<@U0TESTER1> are the humans OnCall.", h.chat.channel[0].text)
}

func TestChannel_UnknownChannelIgnored(t *testing.T) {
	h := newHarness(true, Config{})
	h.router.Handle(context.Background(), channelMsg("C404", "U01SENDER", "<@"+botID+"> who"))
	assert.Empty(t, h.chat.channel)
}

func TestChannel_OwnMessagesIgnored(t *testing.T) {
	h := newHarness(true, Config{})
	ev := channelMsg("C2", "", "<@"+botID+"> who")
	ev.BotID = "B0SELF"
	h.router.Handle(context.Background(), ev)
	assert.Empty(t, h.chat.channel)
}

func TestChannel_BotToBotRelay(t *testing.T) {
	h := newHarness(true, Config{})
	ev := channelMsg("C2", "", "<@U01RELAYB> disk full on db1")
	ev.BotID = "B0OTHER"
	h.router.Handle(context.Background(), ev)

	require.Len(t, h.chat.channel, 1)
	assert.Equal(t, `<@U01AAAAAA> <@U01BBBBBB>, <@U01RELAYB> said _"disk full on db1"_`, h.chat.channel[0].text)
}

func TestChannel_HumanLeadingMentionIsNotDirected(t *testing.T) {
	h := newHarness(true, Config{})
	h.router.Handle(context.Background(), channelMsg("C2", "U01SENDER", "<@U01AAAAAA> lunch?"))
	assert.Empty(t, h.chat.channel)
}

func TestChannel_FetchFailureAndEmptySet(t *testing.T) {
	h := newHarness(true, Config{})
	h.engine.err = errors.New("boom")
	h.router.Handle(context.Background(), channelMsg("C2", "U01SENDER", "<@"+botID+"> who"))
	require.Len(t, h.chat.channel, 1)
	assert.Equal(t, fetchFailed, h.chat.channel[0].text)
	assert.NotContains(t, h.chat.channel[0].text, "boom")

	h = newHarness(true, Config{})
	h.engine.defaults = []oncall.Entry{entry(1, "ghost@x.com")}
	h.router.Handle(context.Background(), channelMsg("C2", "U01SENDER", "<@"+botID+"> who"))
	require.Len(t, h.chat.channel, 1)
	assert.Equal(t, nobodyOnCall, h.chat.channel[0].text)
}

func TestDirect_Link(t *testing.T) {
	h := newHarness(false, Config{BotName: "oncall"})
	h.router.Handle(context.Background(), dm("link <#C1|ops> https://x.pagerduty.com/schedules#PABC123"))

	require.Len(t, h.chat.user, 1)
	assert.Equal(t, "U01SENDER", h.chat.user[0].to)
	assert.Equal(t, "Linked <#C1> to PagerDuty schedule `PABC123`. I've joined the channel.", h.chat.user[0].text)
	assert.Equal(t, links.Link{ChannelID: "C1", ChannelName: "ops", ScheduleID: "PABC123", CreatedBy: "U01SENDER"}, h.links.m["C1"])
	assert.Equal(t, []string{"C1"}, h.chat.joined)
	assert.Equal(t, 1, h.dir.forgets, "a joined channel refreshes the channel snapshot")
}

func TestDirect_LinkByPlainName_JoinFails(t *testing.T) {
	h := newHarness(false, Config{BotName: "oncall"})
	h.chat.joinFail = perr.Transportf("not_in_channel")
	h.router.Handle(context.Background(), dm("link #dev PXYZ789"))

	require.Len(t, h.chat.user, 1)
	assert.Contains(t, h.chat.user[0].text, "Linked <#C2> to PagerDuty schedule `PXYZ789`.")
	assert.Contains(t, h.chat.user[0].text, "/invite @oncall")
	assert.Equal(t, "PXYZ789", h.links.m["C2"].ScheduleID, "link survives a failed join")
	assert.Zero(t, h.dir.forgets)
}

func TestDirect_LinkUnparseable_PersistsNothing(t *testing.T) {
	h := newHarness(false, Config{})
	h.router.Handle(context.Background(), dm("link #ops not-a-url-no-id-shape???"))

	require.Len(t, h.chat.user, 1)
	assert.Equal(t, parseFailed, h.chat.user[0].text)
	assert.Empty(t, h.links.m)
	assert.Empty(t, h.chat.joined)
}

func TestDirect_LinkUnknownChannelName(t *testing.T) {
	h := newHarness(false, Config{})
	h.router.Handle(context.Background(), dm("link #nope PABC123"))
	require.Len(t, h.chat.user, 1)
	assert.Contains(t, h.chat.user[0].text, "#nope")
	assert.Empty(t, h.links.m)
}

func TestDirect_LinkSaveFailure(t *testing.T) {
	h := newHarness(false, Config{})
	h.links.err = perr.DBf("disk full")
	h.router.Handle(context.Background(), dm("link <#C1|ops> PABC123"))
	require.Len(t, h.chat.user, 1)
	assert.Equal(t, saveFailed, h.chat.user[0].text)
	assert.Empty(t, h.chat.joined)
}

func TestDirect_UnlinkAndList(t *testing.T) {
	h := newHarness(false, Config{})
	ctx := context.Background()

	h.router.Handle(ctx, dm("list"))
	h.links.m["C1"] = links.Link{ChannelID: "C1", ChannelName: "ops", ScheduleID: "S1"}
	h.router.Handle(ctx, dm("list"))
	h.router.Handle(ctx, dm("unlink <#C1|ops>"))
	h.router.Handle(ctx, dm("unlink <#C1|ops>"))

	require.Len(t, h.chat.user, 4)
	assert.Equal(t, emptyList, h.chat.user[0].text)
	assert.Equal(t, "*Linked channels:*\n• <#C1> → `S1`", h.chat.user[1].text)
	assert.Equal(t, "Unlinked <#C1>. I'll no longer respond to @oncall there (unless a global schedule is configured).", h.chat.user[2].text)
	assert.Equal(t, "<#C1> wasn't linked to any schedule.", h.chat.user[3].text)
}

func TestDirect_WhoVersionHelp(t *testing.T) {
	h := newHarness(true, Config{})
	ctx := context.Background()
	h.router.Handle(ctx, dm("who"))
	h.router.Handle(ctx, dm("version"))
	h.router.Handle(ctx, dm("help"))
	h.router.Handle(ctx, dm("what is this"))

	require.Len(t, h.chat.user, 3, "unrecognized text gets no reply")
	assert.Equal(t, "<@U01AAAAAA> <@U01BBBBBB> are the humans OnCall.", h.chat.user[0].text)
	assert.Contains(t, h.chat.user[1].text, "I am *oncallbot* and running version ")
	assert.Equal(t, helpText, h.chat.user[2].text)
}

func TestDirect_WhoWithoutDefaults(t *testing.T) {
	h := newHarness(false, Config{})
	h.router.Handle(context.Background(), dm("who"))
	require.Len(t, h.chat.user, 1)
	assert.Equal(t, noDefault, h.chat.user[0].text)
}

func TestDirect_UnknownSenderAndBotsIgnored(t *testing.T) {
	h := newHarness(true, Config{})
	ev := dm("help")
	ev.User = "U0NOBODY1"
	h.router.Handle(context.Background(), ev)

	ev = dm("help")
	ev.BotID = "B0OTHER"
	h.router.Handle(context.Background(), ev)

	ev = dm("help")
	ev.Subtype = "message_changed"
	h.router.Handle(context.Background(), ev)

	assert.Empty(t, h.chat.user)
}

func TestWelcome(t *testing.T) {
	h := newHarness(true, Config{})
	require.NoError(t, h.router.Welcome(context.Background(), "  hello on-call  "))
	require.Len(t, h.chat.user, 2)
	assert.Equal(t, sent{"U01AAAAAA", "hello on-call"}, h.chat.user[0])

	h = newHarness(true, Config{})
	require.NoError(t, h.router.Welcome(context.Background(), "   "))
	assert.Empty(t, h.chat.user)
	assert.Zero(t, h.engine.calls)

	h = newHarness(false, Config{})
	require.NoError(t, h.router.Welcome(context.Background(), "hi"))
	assert.Empty(t, h.chat.user, "no default schedule, nobody to greet")
}
