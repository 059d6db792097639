package domain

import "context"

// Port is the persistence surface the bot reads and writes links through
type Port interface {
	// Upsert creates or replaces the link for l.ChannelID
	Upsert(ctx context.Context, l Link) error
	// Remove deletes the link and reports whether one existed
	Remove(ctx context.Context, channelID string) (bool, error)
	// Get returns the link for channelID; ok is false when none exists
	Get(ctx context.Context, channelID string) (l Link, ok bool, err error)
	// List returns every link ordered by channel name
	List(ctx context.Context) ([]Link, error)
}
