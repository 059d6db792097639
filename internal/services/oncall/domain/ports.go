package domain

import (
	"context"

	"oncallbot/internal/adapters/pagerduty"
)

// ResolverPort maps a chat channel to the schedules that apply to it
type ResolverPort interface {
	Resolve(ctx context.Context, channelID string) (Resolution, error)
}

// EnginePort answers on-call queries against the rotation service
type EnginePort interface {
	// OnCallsFor returns the on-call set for a resolution; Unconfigured is an error
	OnCallsFor(ctx context.Context, r Resolution) ([]Entry, error)
	// GetOnCalls returns the on-call set for p, lowest escalation level first
	GetOnCalls(ctx context.Context, p ScheduleParams) ([]Entry, error)
	// ResolveServiceID finds the service behind the default schedules' escalation policy
	ResolveServiceID(ctx context.Context) (string, error)
	// CreateIncident opens an incident on the resolved service
	CreateIncident(ctx context.Context, title string) (pagerduty.Incident, error)
}
