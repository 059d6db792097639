package slack

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"
)

// Handler receives one inbound message event; each call runs on its own goroutine
type Handler func(ctx context.Context, ev Event)

// acker is the part of *socketmode.Client the event pump needs
type acker interface {
	Ack(req socketmode.Request, payload ...interface{})
}

// SocketMode receives Events API messages over a Slack Socket Mode websocket
type SocketMode struct {
	api      *slack.Client
	appToken string
	handler  Handler
	dialer   *websocket.Dialer
	log      logger.Logger

	// MinBackoff and MaxBackoff bound the waits between failed sessions
	MinBackoff time.Duration
	MaxBackoff time.Duration

	wg sync.WaitGroup
}

// NewSocketMode builds a receiver on c's app token that dispatches message events to h
func NewSocketMode(c *Client, h Handler) *SocketMode {
	return &SocketMode{
		api:        c.api,
		appToken:   c.opts.AppToken,
		handler:    h,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:        *logger.Named("socketmode"),
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

// Run connects and serves until ctx is cancelled, starting a fresh client whenever one gives up
// it waits for in-flight handlers before returning
func (s *SocketMode) Run(ctx context.Context) error {
	if s.appToken == "" {
		return perr.Configf("slack app token for socket mode is not configured")
	}
	defer s.wg.Wait()

	backoff := s.MinBackoff
	for {
		connected, err := s.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			backoff = s.MinBackoff
		}
		s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("socketmode session ended")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, s.MaxBackoff)
	}
}

// session runs one socketmode client until it returns; slack-go reconnects on its own in between
func (s *SocketMode) session(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := socketmode.New(s.api, socketmode.OptionDialer(s.dialer))
	done := make(chan error, 1)
	go func() { done <- client.RunContext(ctx) }()

	connected := false
	for {
		select {
		case err := <-done:
			return connected, err
		case evt := <-client.Events:
			if evt.Type == socketmode.EventTypeConnected {
				connected = true
			}
			s.handle(ctx, client, evt)
		}
	}
}

func (s *SocketMode) handle(ctx context.Context, client acker, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		s.log.Debug().Msg("socketmode connecting")
	case socketmode.EventTypeConnected:
		s.log.Info().Msg("socketmode connected")
	case socketmode.EventTypeConnectionError:
		s.log.Warn().Interface("data", evt.Data).Msg("socketmode connection error")
	case socketmode.EventTypeDisconnect:
		s.log.Info().Msg("socketmode disconnect requested")
	}

	// ack first; Slack redelivers anything unacked within 3s
	if evt.Request != nil && evt.Request.EnvelopeID != "" {
		client.Ack(*evt.Request)
	}

	ev, ok := eventOf(evt)
	if !ok {
		return
	}
	s.dispatch(ctx, ev)
}

func (s *SocketMode) dispatch(ctx context.Context, ev Event) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if v := recover(); v != nil {
				s.log.Error().Interface("panic", v).Str("event_id", ev.EventID).Msg("event handler panicked")
			}
		}()
		s.handler(context.WithoutCancel(ctx), ev)
	}()
}

// eventOf picks message events out of the socketmode stream
func eventOf(evt socketmode.Event) (Event, bool) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return Event{}, false
	}
	outer, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return Event{}, false
	}
	msg, ok := outer.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || msg == nil {
		return Event{}, false
	}
	ev := Event{
		Type:        "message",
		Subtype:     msg.SubType,
		Text:        msg.Text,
		Channel:     msg.Channel,
		ChannelType: msg.ChannelType,
		User:        msg.User,
		BotID:       msg.BotID,
		TS:          msg.TimeStamp,
	}
	switch cb := outer.Data.(type) {
	case *slackevents.EventsAPICallbackEvent:
		ev.EventID = cb.EventID
	case slackevents.EventsAPICallbackEvent:
		ev.EventID = cb.EventID
	}
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	return ev, true
}
