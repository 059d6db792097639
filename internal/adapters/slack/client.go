// Package slack wraps slack-go for the Web API calls and the Socket Mode receive loop the bot needs
package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"

	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
)

const (
	baseURLDefault = "https://slack.com/api"
	defaultTimeout = 15 * time.Second
	listPageSize   = 200
)

// Options configures the Client
type Options struct {
	BaseURL  string
	BotToken string
	// AppToken (xapp-) is only needed for Socket Mode
	AppToken string
	Timeout  time.Duration

	// Username and IconEmoji decorate every posted message
	Username  string
	IconEmoji string

	// HTTPClient overrides the transport, tests pass httptest clients here
	HTTPClient *http.Client
}

// Client is the bot's view of the Slack Web API; it never retries except where slack-go
// itself waits out a rate limit while listing users
type Client struct {
	api  *slack.Client
	opts Options
	log  logger.Logger
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	api := slack.New(o.BotToken,
		slack.OptionAPIURL(o.BaseURL+"/"),
		slack.OptionHTTPClient(hc),
		slack.OptionAppLevelToken(o.AppToken),
	)
	return &Client{api: api, opts: o, log: *logger.Named("slack")}
}

// APIError is a Slack response with ok=false or a non-2xx status
type APIError struct {
	Method string
	Status int
	Code   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
	}
	return fmt.Sprintf("slack %s: status %d", e.Method, e.Status)
}

// classify maps slack-go failures onto coded errors
func classify(method string, err error) error {
	if err == nil {
		return nil
	}
	var (
		apiErr    slack.SlackErrorResponse
		statusErr slack.StatusCodeError
		limited   *slack.RateLimitedError
		syntax    *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &apiErr):
		code := apiErr.Err
		if code == "" {
			code = "unknown slack error"
		}
		return perr.Wrap(&APIError{Method: method, Code: code}, perr.ErrorCodeTransport, "slack api error")
	case errors.As(err, &statusErr):
		return perr.Wrap(&APIError{Method: method, Status: statusErr.Code}, perr.ErrorCodeTransport, "slack upstream error")
	case errors.As(err, &limited):
		return perr.Wrapf(err, perr.ErrorCodeTransport, "slack %s rate limited, retry after %s", method, limited.RetryAfter)
	case errors.As(err, &syntax), errors.As(err, &typeErr):
		return perr.Wrapf(err, perr.ErrorCodeMalformedResponse, "slack %s: undecodable body", method)
	default:
		return perr.Wrapf(err, perr.ErrorCodeTransport, "slack %s failed", method)
	}
}

func (c *Client) needBotToken(method string) error {
	if c.opts.BotToken == "" {
		return perr.Configf("slack token for %s is not configured", method)
	}
	return nil
}

// observe logs the call latency and classifies its error
func (c *Client) observe(method string, start time.Time, err error) error {
	ev := c.log.Debug()
	if err != nil {
		ev = c.log.Warn().Err(err)
	}
	ev.Str("method", method).Dur("latency", time.Since(start)).Msg("slack call")
	return classify(method, err)
}

// AuthTest returns the identity behind the bot token
func (c *Client) AuthTest(ctx context.Context) (Identity, error) {
	const method = "auth.test"
	if err := c.needBotToken(method); err != nil {
		return Identity{}, err
	}
	start := time.Now()
	resp, err := c.api.AuthTestContext(ctx)
	if err := c.observe(method, start, err); err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID: resp.UserID,
		User:   resp.User,
		BotID:  resp.BotID,
		TeamID: resp.TeamID,
		Team:   resp.Team,
	}, nil
}

// PostMessage posts text to a channel id; a user id opens or reuses the app DM with that user
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	const method = "chat.postMessage"
	if err := c.needBotToken(method); err != nil {
		return err
	}
	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if c.opts.Username != "" {
		opts = append(opts, slack.MsgOptionUsername(c.opts.Username))
	}
	if c.opts.IconEmoji != "" {
		opts = append(opts, slack.MsgOptionIconEmoji(c.opts.IconEmoji))
	}
	start := time.Now()
	_, _, err := c.api.PostMessageContext(ctx, channel, opts...)
	return c.observe(method, start, err)
}

// PostToChannel posts text into a channel
func (c *Client) PostToChannel(ctx context.Context, channelID, text string) error {
	return c.PostMessage(ctx, channelID, text)
}

// PostToUser sends text as a direct message
func (c *Client) PostToUser(ctx context.Context, userID, text string) error {
	return c.PostMessage(ctx, userID, text)
}

// JoinChannel joins a public channel with the bot token
func (c *Client) JoinChannel(ctx context.Context, channelID string) error {
	const method = "conversations.join"
	if err := c.needBotToken(method); err != nil {
		return err
	}
	start := time.Now()
	_, _, _, err := c.api.JoinConversationContext(ctx, channelID)
	return c.observe(method, start, err)
}

// Users fetches every workspace member; slack-go follows the cursors
func (c *Client) Users(ctx context.Context) ([]User, error) {
	const method = "users.list"
	if err := c.needBotToken(method); err != nil {
		return nil, err
	}
	start := time.Now()
	members, err := c.api.GetUsersContext(ctx, slack.GetUsersOptionLimit(listPageSize))
	if err := c.observe(method, start, err); err != nil {
		return nil, err
	}
	out := make([]User, 0, len(members))
	for _, m := range members {
		out = append(out, userOf(m))
	}
	return out, nil
}

// Channels fetches every public and private channel visible to the bot, following cursors
func (c *Client) Channels(ctx context.Context) ([]Channel, error) {
	const method = "conversations.list"
	if err := c.needBotToken(method); err != nil {
		return nil, err
	}
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Limit:           listPageSize,
		Types:           []string{"public_channel", "private_channel"},
	}
	var all []Channel
	for {
		start := time.Now()
		page, next, err := c.api.GetConversationsContext(ctx, params)
		if err := c.observe(method, start, err); err != nil {
			return nil, err
		}
		for _, ch := range page {
			all = append(all, channelOf(ch))
		}
		if next == "" {
			return all, nil
		}
		if next == params.Cursor {
			return nil, perr.Malformedf("slack %s: cursor %q repeated", method, next)
		}
		params.Cursor = next
	}
}

func userOf(m slack.User) User {
	return User{
		ID:       m.ID,
		Name:     m.Name,
		RealName: m.RealName,
		IsBot:    m.IsBot,
		Deleted:  m.Deleted,
		Profile: Profile{
			Email:       m.Profile.Email,
			DisplayName: m.Profile.DisplayName,
			RealName:    m.Profile.RealName,
		},
	}
}

func channelOf(ch slack.Channel) Channel {
	return Channel{
		ID:         ch.ID,
		Name:       ch.Name,
		IsMember:   ch.IsMember,
		IsPrivate:  ch.IsPrivate,
		IsArchived: ch.IsArchived,
		NumMembers: ch.NumMembers,
	}
}
