// Package service implements the directory resolver over cached workspace snapshots
package service

import (
	"context"
	"strings"
	"time"

	"oncallbot/internal/platform/cache"
	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
	dom "oncallbot/internal/services/directory/domain"
)

// Source is the bulk directory fetch surface of the chat service
type Source interface {
	Users(ctx context.Context) ([]dom.User, error)
	Channels(ctx context.Context) ([]dom.Channel, error)
}

const (
	usersKey    = "users"
	channelsKey = "channels"
	idPrefix    = "ID:"
)

// Resolver maps ids, emails and names to directory records
//
// Each lookup reads its per-key entry first, then the snapshot. A missing
// snapshot triggers one refresh shared by concurrent callers; a value absent
// from a populated snapshot is not mapped.
type Resolver struct {
	src      Source
	members  *cache.TTL[dom.User]
	users    *cache.Loader[[]dom.User]
	channels *cache.Loader[[]dom.Channel]
	log      logger.Logger
}

// New builds a Resolver whose entries live for ttl
func New(src Source, ttl time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		src:      src,
		members:  cache.New[dom.User](ttl),
		users:    cache.NewLoader(cache.New[[]dom.User](ttl)),
		channels: cache.NewLoader(cache.New[[]dom.Channel](ttl)),
		log:      log,
	}
}

// Warm refreshes both snapshots unconditionally
func (r *Resolver) Warm(ctx context.Context) error {
	r.users.Forget(usersKey)
	r.channels.Forget(channelsKey)
	if _, err := r.userSnapshot(ctx); err != nil {
		return err
	}
	_, err := r.channelSnapshot(ctx)
	return err
}

// ResolveUser implements domain.Port
func (r *Resolver) ResolveUser(ctx context.Context, value string) (dom.User, error) {
	switch dom.ShapeOf(value) {
	case dom.ByEmail:
		return r.UserByEmail(ctx, value)
	case dom.ByID:
		return r.UserByID(ctx, value)
	default:
		return r.UserByName(ctx, value)
	}
}

// UserByID implements domain.Port
func (r *Resolver) UserByID(ctx context.Context, id string) (dom.User, error) {
	if dom.ShapeOf(id) != dom.ByID {
		return dom.User{}, perr.InvalidArgf("%q is not a user id", id)
	}
	return r.lookupUser(ctx, idPrefix+id, id, func(u dom.User) bool { return u.ID == id })
}

// UserByName implements domain.Port
func (r *Resolver) UserByName(ctx context.Context, name string) (dom.User, error) {
	if dom.ShapeOf(name) != dom.ByName || name == "" {
		return dom.User{}, perr.InvalidArgf("%q is not a user name", name)
	}
	return r.lookupUser(ctx, name, name, func(u dom.User) bool { return u.Name == name })
}

// UserByEmail implements domain.Port; only the snapshot is searched
func (r *Resolver) UserByEmail(ctx context.Context, email string) (dom.User, error) {
	if dom.ShapeOf(email) != dom.ByEmail {
		return dom.User{}, perr.InvalidArgf("%q is not an email", email)
	}
	return r.lookupUser(ctx, "", email, func(u dom.User) bool {
		return !u.Deleted && strings.EqualFold(u.Profile.Email, email)
	})
}

func (r *Resolver) lookupUser(ctx context.Context, key, value string, match func(dom.User) bool) (dom.User, error) {
	if key != "" {
		if u, ok := r.members.Get(key); ok {
			return u, nil
		}
	}
	all, err := r.userSnapshot(ctx)
	if err != nil {
		return dom.User{}, err
	}
	for _, u := range all {
		if match(u) {
			return u, nil
		}
	}
	logger.C(ctx).Debug().Str("value", value).Msg("user not mapped")
	return dom.User{}, perr.NotMappedf("%s not mapped to user", value)
}

// ChannelByID implements domain.Port
func (r *Resolver) ChannelByID(ctx context.Context, id string) (dom.Channel, error) {
	return r.lookupChannel(ctx, id, func(c dom.Channel) bool { return c.ID == id })
}

// ChannelByName implements domain.Port; a leading # is ignored
func (r *Resolver) ChannelByName(ctx context.Context, name string) (dom.Channel, error) {
	name = strings.TrimPrefix(name, "#")
	return r.lookupChannel(ctx, name, func(c dom.Channel) bool { return c.Name == name })
}

// ForgetChannels implements domain.Port
func (r *Resolver) ForgetChannels() { r.channels.Forget(channelsKey) }

func (r *Resolver) lookupChannel(ctx context.Context, value string, match func(dom.Channel) bool) (dom.Channel, error) {
	all, err := r.channelSnapshot(ctx)
	if err != nil {
		return dom.Channel{}, err
	}
	for _, c := range all {
		if match(c) {
			return c, nil
		}
	}
	logger.C(ctx).Debug().Str("value", value).Msg("channel not mapped")
	return dom.Channel{}, perr.NotMappedf("%s not mapped to channel", value)
}

func (r *Resolver) userSnapshot(ctx context.Context) ([]dom.User, error) {
	all, _, err := r.users.GetOrLoad(ctx, usersKey, func(ctx context.Context) ([]dom.User, error) {
		all, err := r.src.Users(ctx)
		if err != nil {
			return nil, err
		}
		// per-member entries go in before the snapshot so a live snapshot implies them
		for _, u := range all {
			r.members.Set(idPrefix+u.ID, u)
			if u.Name != "" {
				r.members.Set(u.Name, u)
			}
		}
		r.log.Debug().Int("users", len(all)).Msg("cached users")
		return all, nil
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("user directory refresh failed")
	}
	return all, err
}

func (r *Resolver) channelSnapshot(ctx context.Context) ([]dom.Channel, error) {
	all, _, err := r.channels.GetOrLoad(ctx, channelsKey, func(ctx context.Context) ([]dom.Channel, error) {
		all, err := r.src.Channels(ctx)
		if err != nil {
			return nil, err
		}
		r.log.Debug().Int("channels", len(all)).Msg("cached channels")
		return all, nil
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("channel directory refresh failed")
	}
	return all, err
}
