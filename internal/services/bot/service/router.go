// Package service routes inbound chat messages to replies
package service

import (
	"context"
	"slices"
	"strings"

	"oncallbot/internal/adapters/slack"
	"oncallbot/internal/core/version"
	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
	dom "oncallbot/internal/services/bot/domain"
	directory "oncallbot/internal/services/directory/domain"
	links "oncallbot/internal/services/links/domain"
	oncall "oncallbot/internal/services/oncall/domain"
)

// Chat is the outbound surface of the chat service
type Chat interface {
	PostToChannel(ctx context.Context, channelID, text string) error
	PostToUser(ctx context.Context, userID, text string) error
	JoinChannel(ctx context.Context, channelID string) error
}

// Config for the router
type Config struct {
	// BotName is used in the invite hint
	BotName string
	// TestUser replaces every mention when set
	TestUser string
}

// Deps are the collaborators the router calls
type Deps struct {
	Chat      Chat
	Directory directory.Port
	Resolver  oncall.ResolverPort
	Engine    oncall.EnginePort
	Links     links.Port
}

// Router turns one inbound message into at most one reply
type Router struct {
	d    Deps
	cfg  Config
	self slack.Identity
	log  logger.Logger
}

// NewRouter builds a Router for the bot identity self
func NewRouter(d Deps, self slack.Identity, cfg Config, log logger.Logger) *Router {
	if cfg.BotName == "" {
		cfg.BotName = "oncall"
	}
	return &Router{d: d, cfg: cfg, self: self, log: log}
}

var ignoredSubtypes = []string{"message_changed", "message_deleted", "message_replied", "channel_join", "channel_leave"}

// Handle implements slack.Handler
func (r *Router) Handle(ctx context.Context, ev slack.Event) {
	if ev.Type != "message" || slices.Contains(ignoredSubtypes, ev.Subtype) {
		return
	}
	ctx = logger.WithEvent(ctx, ev.EventID, ev.Channel, ev.User)
	text := strings.TrimSpace(ev.Text)

	tag := "<@" + r.self.UserID + ">"
	directed := strings.Contains(text, tag)
	viaBot := false
	if !directed {
		// another bot relaying through us opens with its own mention
		if id, ok := dom.LeadingMention(text); ok {
			if u, err := r.d.Directory.ResolveUser(ctx, id); err == nil && u.IsBot {
				tag = "<@" + u.ID + ">"
				directed, viaBot = true, true
			}
		}
	}

	switch {
	case directed && !r.fromSelf(ev):
		r.handleChannel(ctx, ev, text, tag, viaBot)
	case ev.BotID == "" && ev.IsDirect() && ev.User != r.self.UserID:
		r.handleDirect(ctx, ev, text)
	}
}

func (r *Router) fromSelf(ev slack.Event) bool {
	if ev.BotID != "" && ev.BotID == r.self.BotID {
		return true
	}
	return ev.User != "" && ev.User == r.self.UserID
}

func (r *Router) handleChannel(ctx context.Context, ev slack.Event, text, tag string, viaBot bool) {
	log := logger.C(ctx)
	if _, err := r.d.Directory.ChannelByID(ctx, ev.Channel); err != nil {
		logLookup(log, err, "channel lookup")
		return
	}
	res, err := r.d.Resolver.Resolve(ctx, ev.Channel)
	if err != nil {
		log.Error().Err(err).Msg("schedule resolution failed")
		return
	}
	if res.Kind == oncall.Unconfigured {
		log.Debug().Msg("no schedule configured for channel")
		return
	}

	kind, body := dom.ParseMention(text, tag)
	if kind == dom.Relay && !strings.HasPrefix(text, tag) && ev.User == "" && !viaBot {
		// a mid-text mention with no sender has nothing to attribute the relay to
		return
	}

	ids, err := r.onCallUserIDs(ctx, res)
	if err != nil {
		log.Error().Err(err).Str("resolution", res.Kind.String()).Msg("on-call lookup failed")
		r.postChannel(ctx, ev.Channel, fetchFailed)
		return
	}
	if len(ids) == 0 {
		r.postChannel(ctx, ev.Channel, nobodyOnCall)
		return
	}

	var reply string
	switch kind {
	case dom.AskWho:
		reply = whoReply(ids)
	case dom.Summon:
		reply = summonReply(ids)
	default:
		sender := tag
		if ev.User != "" {
			sender = "<@" + ev.User + ">"
		}
		reply = relayReply(ids, sender, body)
	}
	r.postChannel(ctx, ev.Channel, reply)
}

func (r *Router) handleDirect(ctx context.Context, ev slack.Event, text string) {
	log := logger.C(ctx)
	user, err := r.d.Directory.UserByID(ctx, ev.User)
	if err != nil {
		logLookup(log, err, "sender lookup")
		return
	}

	cmd := dom.Parse(text)
	log.Debug().Str("command", cmd.Kind.String()).Msg("direct command")

	var reply string
	switch cmd.Kind {
	case dom.Link:
		reply = r.link(ctx, cmd, user.ID)
	case dom.Unlink:
		reply = r.unlink(ctx, cmd)
	case dom.List:
		all, err := r.d.Links.List(ctx)
		if err != nil {
			log.Error().Err(err).Msg("list links failed")
			reply = listFailed
			break
		}
		reply = listReply(all)
	case dom.Who:
		reply = r.whoDirect(ctx, ev)
	case dom.Version:
		reply = versionReply(version.Name, version.Info().Version)
	case dom.Help:
		reply = helpText
	default:
		return
	}
	r.postUser(ctx, user.ID, reply)
}

func (r *Router) link(ctx context.Context, cmd dom.Command, creator string) string {
	log := logger.C(ctx)
	scheduleID, err := dom.ParseScheduleID(cmd.Schedule)
	if err != nil {
		log.Debug().Err(err).Str("input", cmd.Schedule).Msg("unparseable schedule")
		return parseFailed
	}

	ch := cmd.Channel
	if ch.ID == "" {
		found, err := r.d.Directory.ChannelByName(ctx, ch.Name)
		if err != nil {
			logLookup(log, err, "channel name lookup")
			return unknownChannelReply(ch.Name)
		}
		ch.ID = found.ID
	}

	err = r.d.Links.Upsert(ctx, links.Link{
		ChannelID:   ch.ID,
		ChannelName: ch.Label(),
		ScheduleID:  scheduleID,
		CreatedBy:   creator,
	})
	if err != nil {
		log.Error().Err(err).Str("schedule_id", scheduleID).Msg("link failed")
		return saveFailed
	}

	// the link stands even when the join fails
	joinErr := r.d.Chat.JoinChannel(ctx, ch.ID)
	if joinErr != nil {
		log.Warn().Err(joinErr).Str("target_channel", ch.ID).Msg("join failed")
	} else {
		// a channel created after the last refresh is missing from the snapshot
		r.d.Directory.ForgetChannels()
	}
	return linkedReply(ch.ID, scheduleID, joinErr, r.cfg.BotName)
}

func (r *Router) unlink(ctx context.Context, cmd dom.Command) string {
	ch := cmd.Channel
	if ch.ID == "" {
		found, err := r.d.Directory.ChannelByName(ctx, ch.Name)
		if err != nil {
			logLookup(logger.C(ctx), err, "channel name lookup")
			return unknownChannelReply(ch.Name)
		}
		ch.ID = found.ID
	}
	changed, err := r.d.Links.Remove(ctx, ch.ID)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("unlink failed")
		return saveFailed
	}
	return unlinkedReply(ch.ID, changed)
}

func (r *Router) whoDirect(ctx context.Context, ev slack.Event) string {
	res, err := r.d.Resolver.Resolve(ctx, ev.Channel)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("schedule resolution failed")
		return fetchFailed
	}
	if res.Kind == oncall.Unconfigured {
		return noDefault
	}
	ids, err := r.onCallUserIDs(ctx, res)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("on-call lookup failed")
		return fetchFailed
	}
	if len(ids) == 0 {
		return nobodyOnCall
	}
	return whoReply(ids)
}

// OnCallUserIDs maps the default on-call set to chat user ids
// nothing is returned when no default schedule is configured
func (r *Router) OnCallUserIDs(ctx context.Context) ([]string, error) {
	res, err := r.d.Resolver.Resolve(ctx, "")
	if err != nil || res.Kind == oncall.Unconfigured {
		return nil, err
	}
	return r.onCallUserIDs(ctx, res)
}

// onCallUserIDs maps on-call entries to chat user ids in escalation order
// entries whose email has no chat user are skipped
func (r *Router) onCallUserIDs(ctx context.Context, res oncall.Resolution) ([]string, error) {
	entries, err := r.d.Engine.OnCallsFor(ctx, res)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.User.Email == "" {
			continue
		}
		u, err := r.d.Directory.UserByEmail(ctx, e.User.Email)
		if perr.IsCode(err, perr.ErrorCodeNotMapped) {
			continue
		}
		if err != nil {
			return nil, err
		}
		id := u.ID
		if r.cfg.TestUser != "" {
			id = r.cfg.TestUser
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Welcome sends msg to everyone on call for the default schedules
func (r *Router) Welcome(ctx context.Context, msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil
	}
	ids, err := r.OnCallUserIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		r.postUser(ctx, id, msg)
	}
	return nil
}

func (r *Router) postChannel(ctx context.Context, channelID, text string) {
	if err := r.d.Chat.PostToChannel(ctx, channelID, text); err != nil {
		logger.C(ctx).Error().Err(err).Msg("post to channel failed")
	}
}

func (r *Router) postUser(ctx context.Context, userID, text string) {
	if err := r.d.Chat.PostToUser(ctx, userID, text); err != nil {
		logger.C(ctx).Error().Err(err).Str("to", userID).Msg("post to user failed")
	}
}

// logLookup keeps not-mapped results out of the error log
func logLookup(log *logger.Logger, err error, what string) {
	if perr.IsCode(err, perr.ErrorCodeNotMapped) {
		log.Debug().Err(err).Msg(what + ": not mapped")
		return
	}
	log.Warn().Err(err).Msg(what + " failed")
}
