// Package service implements schedule resolution and the on-call query engine
package service

import (
	"context"

	links "oncallbot/internal/services/links/domain"
	dom "oncallbot/internal/services/oncall/domain"
)

// LinkReader is the part of the links port the resolver needs
type LinkReader interface {
	Get(ctx context.Context, channelID string) (links.Link, bool, error)
}

// Resolver picks the schedules for a channel: its link first, then the defaults
type Resolver struct {
	links    LinkReader
	defaults []string
}

// NewResolver builds a Resolver over lr with the configured default schedule ids
func NewResolver(lr LinkReader, defaults []string) *Resolver {
	return &Resolver{links: lr, defaults: defaults}
}

// Resolve implements domain.ResolverPort
func (r *Resolver) Resolve(ctx context.Context, channelID string) (dom.Resolution, error) {
	if r.links != nil {
		l, ok, err := r.links.Get(ctx, channelID)
		if err != nil {
			return dom.Resolution{}, err
		}
		if ok {
			return dom.Resolution{Kind: dom.Resolved, Params: dom.ForSchedule(l.ScheduleID)}, nil
		}
	}
	return r.Default(), nil
}

// Default is the resolution for a channel without a link
func (r *Resolver) Default() dom.Resolution {
	if hasDefaults(r.defaults) {
		return dom.Resolution{Kind: dom.UseDefault}
	}
	return dom.Resolution{Kind: dom.Unconfigured}
}

// hasDefaults is false for an empty list and for a list whose first id is blank
func hasDefaults(ids []string) bool {
	return len(ids) > 0 && ids[0] != ""
}
