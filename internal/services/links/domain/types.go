// Package domain defines the types and interfaces for the channel links service
package domain

import "time"

// Link ties a chat channel to one rotation schedule
type Link struct {
	ChannelID   string    `json:"channel_id" validate:"required"`
	ChannelName string    `json:"channel_name"`
	ScheduleID  string    `json:"schedule_id" validate:"required,alphanum"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Name returns the display name, falling back to the channel id
func (l Link) Name() string {
	if l.ChannelName != "" {
		return l.ChannelName
	}
	return l.ChannelID
}
