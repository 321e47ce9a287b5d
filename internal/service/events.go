package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// EventPublisher fans an event out to every WebSocket listener of a channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel, eventType string, payload interface{}) error
}

// EmailEnqueuer queues an email job for the worker pool.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// publish is fire-and-forget: a failed broadcast never fails the request.
func publish(ctx context.Context, p EventPublisher, channel, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, channel, eventType, payload); err != nil {
		log.Warn().Err(err).Str("channel", channel).Str("event", eventType).Msg("event publish failed")
	}
}
