package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisChannel is the pub/sub channel shared by all replicas.
const RedisChannel = "garage:events"

// Event is the envelope delivered to WebSocket clients.
type Event struct {
	Channel   string      `json:"channel"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher sends events to Redis.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher { return &Publisher{rdb: rdb} }

func (p *Publisher) Publish(ctx context.Context, channel, eventType string, payload interface{}) error {
	data, err := json.Marshal(Event{
		Channel:   channel,
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, RedisChannel, data).Err()
}

// Relay subscribes to RedisChannel and forwards each event to the local hub
// of its channel.
type Relay struct {
	rdb  *redis.Client
	hubs map[string]*Hub
}

func NewRelay(rdb *redis.Client, hubs ...*Hub) *Relay {
	m := make(map[string]*Hub, len(hubs))
	for _, h := range hubs {
		m[h.Name()] = h
	}
	return &Relay{rdb: rdb, hubs: m}
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, RedisChannel)
	defer sub.Close()

	ch := sub.Channel()
	log.Info().Str("redis_channel", RedisChannel).Msg("event relay started")
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.Dispatch([]byte(msg.Payload))
		}
	}
}

// Dispatch routes one raw event to its hub. Unknown channels are dropped.
func (r *Relay) Dispatch(raw []byte) {
	var head struct {
		Channel string `json:"channel"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		log.Warn().Err(err).Msg("relay: malformed event")
		return
	}
	h, ok := r.hubs[head.Channel]
	if !ok {
		log.Warn().Str("channel", head.Channel).Msg("relay: unknown channel")
		return
	}
	h.Broadcast(raw)
}
