package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/identitydesk/identity-api/internal/core/ports"
)

const auditCollection = "audit_events"

// AuditRepository persists the audit trail of identity mutations.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

func (r *AuditRepository) Insert(ctx context.Context, event *ports.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"actor_id":  event.ActorID,
		"operation": event.Operation,
		"target_id": event.TargetID,
		"timestamp": event.Timestamp.UTC(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	return err
}
