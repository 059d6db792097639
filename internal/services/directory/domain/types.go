// Package domain defines the directory record types and lookup strategies
package domain

import (
	"context"
	"regexp"
	"strings"

	"oncallbot/internal/adapters/slack"
)

type (
	// User is a chat workspace member
	User = slack.User
	// Channel is a chat conversation visible to the bot
	Channel = slack.Channel
)

// Strategy is how a lookup value is matched against the directory
type Strategy uint8

const (
	// ByName matches the member handle
	ByName Strategy = iota
	// ByID matches the member id
	ByID
	// ByEmail matches the profile email
	ByEmail
)

func (s Strategy) String() string {
	switch s {
	case ByID:
		return "id"
	case ByEmail:
		return "email"
	default:
		return "name"
	}
}

var userIDShape = regexp.MustCompile(`^[UW][A-Z0-9]{8}([A-Z0-9]{2})?$`)

// IsUserID reports whether v looks like a chat user id
func IsUserID(v string) bool { return userIDShape.MatchString(v) }

// ShapeOf picks the strategy for v from its shape alone
func ShapeOf(v string) Strategy {
	switch {
	case strings.Index(v, "@") > 0:
		return ByEmail
	case IsUserID(v):
		return ByID
	default:
		return ByName
	}
}

// Port resolves chat identifiers to directory records
// misses after a refresh are reported as perr.ErrorCodeNotMapped
type Port interface {
	ResolveUser(ctx context.Context, value string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByName(ctx context.Context, name string) (User, error)
	ChannelByID(ctx context.Context, id string) (Channel, error)
	ChannelByName(ctx context.Context, name string) (Channel, error)
	// ForgetChannels drops the channel snapshot so the next channel lookup refetches it
	ForgetChannels()
}
