package source

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gempir/go-twitch-irc/v4"

	"github.com/danvo/liveinsight/internal/model"
	"github.com/danvo/liveinsight/internal/otel"
)

// chatterWindow is how long a chatter counts toward the viewer estimate.
const chatterWindow = time.Minute

// TwitchSource watches a Twitch channel's chat over IRC. Chat messages
// become comment events; the USERNOTICE-style cheer/sub messages are out
// of scope for the IRC client, so gifts only show up in replay and demo
// sources.
//
// Twitch IRC does not expose a viewer count, so Metrics reports unique
// chatters over the last minute as a viewer proxy. It is an undercount
// for lurker-heavy streams but moves with the same dynamics the anomaly
// detector watches for.
type TwitchSource struct {
	channel  string
	username string // empty for anonymous read-only connection
	client   *twitch.Client
	events   chan model.Event
	log      *otel.Logger

	mu           sync.Mutex
	commentCount int
	chatters     map[string]time.Time // username -> last message time
}

// NewTwitchSource creates a source for the given channel. With empty
// username/oauth the connection is anonymous and Post is unavailable.
func NewTwitchSource(channel, username, oauth string, log *otel.Logger) *TwitchSource {
	var client *twitch.Client
	if username == "" {
		client = twitch.NewAnonymousClient()
	} else {
		client = twitch.NewClient(username, oauth)
	}
	return &TwitchSource{
		channel:  strings.TrimPrefix(strings.ToLower(channel), "#"),
		username: username,
		client:   client,
		events:   make(chan model.Event, 256),
		log:      log,
	}
}

func (t *TwitchSource) Name() string { return "twitch" }

func (t *TwitchSource) Events() <-chan model.Event { return t.events }

// Run connects to Twitch IRC and pushes chat until ctx is cancelled.
func (t *TwitchSource) Run(ctx context.Context) error {
	defer close(t.events)

	t.client.OnPrivateMessage(func(msg twitch.PrivateMessage) {
		name := msg.User.DisplayName
		if name == "" {
			name = msg.User.Name
		}

		t.mu.Lock()
		t.commentCount++
		if t.chatters == nil {
			t.chatters = make(map[string]time.Time)
		}
		t.chatters[msg.User.Name] = time.Now()
		t.mu.Unlock()

		c := model.ChatEvent{
			ID:       "c_" + msg.ID,
			Username: name,
			Text:     msg.Message,
			Time:     msg.Time,
		}
		ev := model.Event{Type: model.EventComment, Time: c.Time, Comment: &c}

		select {
		case t.events <- ev:
		case <-ctx.Done():
		}
	})

	t.client.OnConnect(func() {
		if t.log != nil {
			t.log.Info(otel.KindSourceEvent, "twitch", "connected to "+t.channel)
		}
	})

	t.client.Join(t.channel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- t.client.Connect()
	}()

	select {
	case <-ctx.Done():
		t.client.Disconnect()
		<-errCh
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("twitch connect: %w", err)
		}
		return nil
	}
}

// Metrics reports the rolling chatter estimate and cumulative comments.
func (t *TwitchSource) Metrics(ctx context.Context) (model.MetricSample, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	active := 0
	for name, last := range t.chatters {
		if now.Sub(last) > chatterWindow {
			delete(t.chatters, name)
			continue
		}
		active++
	}

	return model.MetricSample{
		Time:         now,
		Viewers:      active,
		CommentCount: t.commentCount,
	}, nil
}

// Products returns nil; Twitch chat carries no product listings.
func (t *TwitchSource) Products(ctx context.Context) ([]model.Product, error) {
	return nil, nil
}

// Post sends a message into the channel. Requires an authenticated
// connection.
func (t *TwitchSource) Post(ctx context.Context, text string) error {
	if t.username == "" {
		return fmt.Errorf("twitch: posting requires an authenticated connection")
	}
	t.client.Say(t.channel, text)
	return nil
}
