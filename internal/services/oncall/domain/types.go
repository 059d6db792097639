// Package domain defines the types and interfaces for on-call resolution
package domain

import (
	"slices"

	"oncallbot/internal/adapters/pagerduty"
)

// ScheduleParams selects which rotation schedules an on-call query covers
type ScheduleParams struct {
	TimeZone     string
	ScheduleIDs  []string
	IncludeUsers bool
}

// ForSchedule builds the params used for a single linked schedule
func ForSchedule(id string) ScheduleParams {
	return ScheduleParams{TimeZone: "UTC", ScheduleIDs: []string{id}, IncludeUsers: true}
}

// Query converts p into the rotation service query
func (p ScheduleParams) Query() pagerduty.OnCallsQuery {
	return pagerduty.OnCallsQuery{
		TimeZone:     p.TimeZone,
		ScheduleIDs:  slices.Clone(p.ScheduleIDs),
		IncludeUsers: p.IncludeUsers,
	}
}

// Key is the cache key for p; equal schedule sets share a key regardless of order
func (p ScheduleParams) Key() string { return "oncalls:" + p.Query().Key() }

// Kind tells the three resolution outcomes apart
type Kind uint8

const (
	// Unconfigured means the channel opted into nothing; callers stay silent
	Unconfigured Kind = iota
	// UseDefault means the engine's configured default schedules apply
	UseDefault
	// Resolved means Params came from a channel link
	Resolved
)

func (k Kind) String() string {
	switch k {
	case UseDefault:
		return "use_default"
	case Resolved:
		return "resolved"
	default:
		return "unconfigured"
	}
}

// Resolution is the result of resolving a channel to schedules
// Params is only set when Kind is Resolved
type Resolution struct {
	Kind   Kind
	Params ScheduleParams
}

// Entry is one row of on-call data
type Entry = pagerduty.OnCall
