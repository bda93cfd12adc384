// Package events implements the append-only audit log (C9). Writes are
// fire-and-forget from the caller's perspective: Emit enqueues the event on
// a bounded channel and returns immediately, so a slow or unavailable
// database never adds latency to the request path that triggered the
// event. A background worker drains the channel and inserts rows.
package events

import (
	"context"
	"log/slog"

	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/models"
)

const queueCapacity = 4096

type Log struct {
	gw     *dbgateway.Gateway
	logger *slog.Logger
	queue  chan models.Event
	done   chan struct{}
}

func NewLog(gw *dbgateway.Gateway, logger *slog.Logger) *Log {
	l := &Log{
		gw:     gw,
		logger: logger,
		queue:  make(chan models.Event, queueCapacity),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

// Emit enqueues an event for asynchronous persistence. If the queue is
// full, the event is dropped and logged at warn level rather than blocking
// the caller — the audit log trades completeness for never slowing down
// the request path it observes.
func (l *Log) Emit(ctx context.Context, kind models.EventKind, actorID *models.UserID, appID *models.ApplicationID, resourceType string, resourceID *models.ID, payload map[string]any) {
	ev := models.Event{
		ID:           models.EventID(models.NewID()),
		Kind:         kind,
		ActorID:      actorID,
		AppID:        appID,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Payload:      payload,
		CreatedTime:  nowFn(),
	}
	select {
	case l.queue <- ev:
	default:
		l.logger.Warn("event queue full, dropping event", "kind", kind, "resource_type", resourceType)
	}
}

func (l *Log) run() {
	for {
		select {
		case ev := <-l.queue:
			if err := l.insert(context.Background(), ev); err != nil {
				l.logger.Error("failed to persist event", "kind", ev.Kind, "error", err)
			}
		case <-l.done:
			return
		}
	}
}

func (l *Log) Close() {
	close(l.done)
}

func (l *Log) insert(ctx context.Context, ev models.Event) error {
	_, err := l.gw.Pool().Exec(ctx,
		`INSERT INTO events (id, kind, actor_id, app_id, resource_type, resource_id, payload, created_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.Kind, ev.ActorID, ev.AppID, ev.ResourceType, ev.ResourceID, ev.Payload, ev.CreatedTime)
	if err != nil {
		return apierr.Internal("inserting event", err)
	}
	return nil
}
