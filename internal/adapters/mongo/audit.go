package mongo

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
	now    func() time.Time
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type AuditLog struct {
	ID        string    `bson:"_id"`
	Action    string    `bson:"action"`
	UserID    string    `bson:"user_id,omitempty"`
	EventID   string    `bson:"event_id,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

// LogEvent records an admin action taken through the API.
func (a *AuditLogger) LogEvent(ctx context.Context, action string, userID uuid.UUID, data map[string]interface{}) error {
	entry := AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		Timestamp: a.now(),
		Data:      bson.M(data),
	}
	if userID != uuid.Nil {
		entry.UserID = userID.String()
	}
	if _, err := a.coll.InsertOne(ctx, entry); err != nil {
		a.logger.WithError(err).WithField("action", action).Error("failed to insert audit log")
		return err
	}
	return nil
}

// RecordDomainEvent stores a lifecycle event delivered by the broker.
// Redeliveries of the same event id overwrite the earlier entry.
func (a *AuditLogger) RecordDomainEvent(ctx context.Context, eventID uuid.UUID, eventType string, occurredAt time.Time, data map[string]interface{}) error {
	entry := AuditLog{
		ID:        "event:" + eventID.String(),
		Action:    eventType,
		EventID:   eventID.String(),
		Timestamp: occurredAt.UTC(),
		Data:      bson.M(data),
	}
	if uid, ok := data["user_id"].(string); ok {
		entry.UserID = uid
	}
	_, err := a.coll.ReplaceOne(ctx, bson.M{"_id": entry.ID}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		a.logger.WithError(err).WithField("event_id", eventID).Error("failed to record domain event")
		return err
	}
	return nil
}
