// Package service implements the channel links service
package service

import (
	"context"
	"errors"
	"strings"

	"oncallbot/internal/modkit"
	"oncallbot/internal/modkit/repokit"
	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
	"oncallbot/internal/platform/validate"
	dom "oncallbot/internal/services/links/domain"
	lrepo "oncallbot/internal/services/links/repo"
)

// Svc implements domain.Port over a SQL repo
type Svc struct {
	repo lrepo.Storage
	log  logger.Logger
}

// New constructs the service on deps.DB using the repo binder b
func New(deps modkit.Deps, b repokit.Binder[lrepo.Storage]) *Svc {
	return &Svc{
		repo: repokit.MustBind(b, deps.DB),
		log:  deps.Log,
	}
}

// EnsureSchema creates the links table when it is missing
func (s *Svc) EnsureSchema(ctx context.Context) error {
	return s.repo.EnsureSchema(ctx)
}

// Upsert implements domain.Port
func (s *Svc) Upsert(ctx context.Context, l dom.Link) error {
	l.ChannelID = strings.TrimSpace(l.ChannelID)
	l.ScheduleID = strings.TrimSpace(l.ScheduleID)
	if err := validate.Struct(l); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, l); err != nil {
		return err
	}
	s.log.Info().
		Str("channel_id", l.ChannelID).
		Str("channel_name", l.ChannelName).
		Str("schedule_id", l.ScheduleID).
		Msg("channel linked")
	return nil
}

// Remove implements domain.Port
func (s *Svc) Remove(ctx context.Context, channelID string) (bool, error) {
	changed, err := s.repo.Remove(ctx, channelID)
	if err != nil {
		return false, err
	}
	s.log.Info().Str("channel_id", channelID).Bool("changed", changed).Msg("channel unlinked")
	return changed, nil
}

// Get implements domain.Port
func (s *Svc) Get(ctx context.Context, channelID string) (dom.Link, bool, error) {
	if channelID == "" {
		return dom.Link{}, false, nil
	}
	l, err := s.repo.Get(ctx, channelID)
	if errors.Is(err, perr.ErrNotFound) {
		return dom.Link{}, false, nil
	}
	if err != nil {
		return dom.Link{}, false, err
	}
	return l, true, nil
}

// List implements domain.Port
func (s *Svc) List(ctx context.Context) ([]dom.Link, error) {
	return s.repo.List(ctx)
}
