package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/hospitality-reservation/internal/queue"
)

// EventPublisher delivers domain events. *queue.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

// Publish drops the event.
func (NopPublisher) Publish(context.Context, queue.Event) error { return nil }

const publishTimeout = 3 * time.Second

// notifier publishes best effort: a failure is logged and never reaches
// the caller, and a cancelled request does not cancel the publish.
type notifier struct {
	pub EventPublisher
	log *slog.Logger
}

func (n notifier) emit(ctx context.Context, ev queue.Event) {
	if n.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.pub.Publish(ctx, ev); err != nil {
		n.log.Warn("event publish failed", "type", ev.Type, "entity_id", ev.EntityID, "err", err)
	}
}

func actorID(p *Principal) uint64 {
	if p == nil {
		return 0
	}
	return p.UserID
}
