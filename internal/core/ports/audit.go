package ports

import (
	"context"
	"time"
)

// AuditEvent records a committed identity mutation: who did what to whom.
type AuditEvent struct {
	ActorID   string
	Operation string
	TargetID  string
	Timestamp time.Time
}

// AuditRecorder accepts audit events for asynchronous persistence. Record
// must not block the request path.
type AuditRecorder interface {
	Record(event AuditEvent)
}

// AuditRepository persists audit events. Insert-only: the trail is never
// mutated.
type AuditRepository interface {
	Insert(ctx context.Context, event *AuditEvent) error
}
