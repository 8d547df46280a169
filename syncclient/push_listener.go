package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/models"
)

// Event types received from the server socket.
const (
	EventConnected           = "connected"
	EventNotificationCreated = "notification.created"
)

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Event is one socket message. Data holds a Notification for
// EventNotificationCreated.
type Event struct {
	Type     string          `json:"type"`
	Audience models.Audience `json:"audience,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Notification decodes the payload of a notification.created event.
func (e Event) Notification() (Notification, error) {
	var n Notification
	err := json.Unmarshal(e.Data, &n)
	return n, err
}

// PushListener keeps a websocket to the inbox open and reconnects with
// exponential backoff when it drops.
type PushListener struct {
	url    string
	token  string
	dialer *websocket.Dialer
	log    logrus.FieldLogger
}

// NewPushListener listens on the /ws endpoint of audience under baseURL.
// http(s) schemes are rewritten to ws(s).
func NewPushListener(baseURL string, audience models.Audience, token string, log logrus.FieldLogger) *PushListener {
	u := baseURL + BasePath(audience) + "/ws"
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PushListener{
		url:    u,
		token:  token,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log.WithField("component", "push_listener"),
	}
}

// Listen delivers every event to onEvent until ctx ends.
func (l *PushListener) Listen(ctx context.Context, onEvent func(Event)) error {
	backoff := minBackoff
	for {
		connected, err := l.session(ctx, onEvent)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = minBackoff
		}
		l.log.WithError(err).WithField("retryIn", backoff).Warn("notification socket closed")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// Events adapts Listen to a channel that closes when ctx ends.
func (l *PushListener) Events(ctx context.Context) <-chan Event {
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		_ = l.Listen(ctx, func(ev Event) {
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		})
	}()
	return out
}

func (l *PushListener) session(ctx context.Context, onEvent func(Event)) (bool, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+l.token)

	conn, _, err := l.dialer.DialContext(ctx, l.url, header)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return true, err
		}
		onEvent(ev)
	}
}
