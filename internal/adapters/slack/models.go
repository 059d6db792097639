package slack

// Identity is the auth.test answer for the bot token
type Identity struct {
	UserID string `json:"user_id"`
	User   string `json:"user"`
	BotID  string `json:"bot_id"`
	TeamID string `json:"team_id"`
	Team   string `json:"team"`
}

// Profile is the part of a member profile we use
type Profile struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	RealName    string `json:"real_name"`
}

// User is a workspace member
type User struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	RealName string  `json:"real_name"`
	IsBot    bool    `json:"is_bot"`
	Deleted  bool    `json:"deleted"`
	Profile  Profile `json:"profile"`
}

// Channel is a conversation visible to the bot
type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsMember   bool   `json:"is_member"`
	IsPrivate  bool   `json:"is_private"`
	IsArchived bool   `json:"is_archived"`
	NumMembers int    `json:"num_members"`
}

// Event is an inbound message event
type Event struct {
	// EventID is Slack's event id, or a generated one when Slack sends none
	EventID     string
	Type        string
	Subtype     string
	Text        string
	Channel     string
	ChannelType string
	User        string
	BotID       string
	TS          string
}

// IsDirect reports whether the event arrived in a direct message conversation
func (e Event) IsDirect() bool {
	return e.ChannelType == "im" || (e.ChannelType == "" && len(e.Channel) > 0 && e.Channel[0] == 'D')
}
