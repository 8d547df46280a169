package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/HSouheill/hireboard_notifications/models"
)

// DefaultChannel is the Redis channel shared by every instance.
const DefaultChannel = "hireboard:notifications:ws"

// envelope is the message shape stored in Redis Pub/Sub.
type envelope struct {
	UserID   string          `json:"userId"`
	Audience models.Audience `json:"audience"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
	SentAt   time.Time       `json:"sentAt"`
}

// Publisher pushes new notifications to open sockets. With a Redis client
// every instance receives the event and replays it into its own hub;
// without one delivery is process-local.
type Publisher struct {
	hub     *Hub
	client  *redis.Client
	channel string
	log     logrus.FieldLogger
}

func NewPublisher(hub *Hub, client *redis.Client, channel string, log logrus.FieldLogger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{hub: hub, client: client, channel: channel, log: log.WithField("component", "ws-publisher")}
}

// PublishNotification satisfies services.InAppPublisher.
func (p *Publisher) PublishNotification(ctx context.Context, n models.Notification) error {
	view := models.ViewFor(n.Audience)(n)
	if p.client == nil {
		p.hub.SendToUser(n.Audience, n.OwnerID, Event{Type: EventNotificationCreated, Audience: n.Audience, Data: view})
		return nil
	}

	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	body, err := json.Marshal(envelope{
		UserID:   n.OwnerID,
		Audience: n.Audience,
		Type:     EventNotificationCreated,
		Data:     data,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.client.Publish(ctx, p.channel, body).Err()
}

// Run forwards messages from the shared channel into the local hub until ctx
// is cancelled. It returns immediately when no Redis client is configured.
func (p *Publisher) Run(ctx context.Context) {
	if p.client == nil {
		return
	}

	pubsub := p.client.Subscribe(ctx, p.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		p.log.WithError(err).WithField("channel", p.channel).Error("failed to subscribe to redis channel")
		return
	}
	p.log.WithField("channel", p.channel).Info("redis pubsub bridge subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				p.log.WithError(err).Warn("failed to decode redis message")
				continue
			}
			if env.UserID == "" || env.Type == "" {
				continue
			}
			p.hub.SendToUser(env.Audience, env.UserID, Event{Type: env.Type, Audience: env.Audience, Data: env.Data})
		}
	}
}
