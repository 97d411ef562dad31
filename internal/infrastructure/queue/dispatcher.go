// Package queue provides the asynchronous audit-trail writer. Events are
// sharded onto a fixed set of workers by actor so each actor's trail is
// persisted in order.
package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/identitydesk/identity-api/internal/api/metrics"
	"github.com/identitydesk/identity-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditDispatcher implements ports.AuditRecorder by enqueueing events to
// worker goroutines that persist them via the audit repository. Persistence
// failures are logged, never propagated to the request path.
type AuditDispatcher struct {
	workers []chan ports.AuditEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan ports.AuditEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record sends an event to the worker responsible for its actor. The call is
// non-blocking up to channelBuffer capacity.
func (d *AuditDispatcher) Record(event ports.AuditEvent) {
	d.workers[d.shardIndex(event.ActorID)] <- event
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.repo.Insert(ctx, &event); err != nil {
				metrics.AuditWriteErrorsTotal.Inc()
				d.log.Error().Err(err).
					Str("actor_id", event.ActorID).
					Str("operation", event.Operation).
					Int("worker_id", id).
					Msg("audit write failed")
				continue
			}
			metrics.AuditEventsTotal.WithLabelValues(event.Operation).Inc()
		}
	}
}
