package crdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Outbox record states.
const (
	OutboxNew       = "NEW"
	OutboxPublished = "PUBLISHED"
	OutboxFailed    = "FAILED"
)

// OutboxRecord is one lifecycle event waiting for the relay. Field order
// follows the outbox columns selected by ClaimUnpublished.
type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Status        string
	Attempts      int
	DedupeKey     string
}

// InsertOutbox must run inside the transaction that made the change the
// event describes.
func (r *Repository) InsertOutbox(ctx context.Context, tx pgx.Tx, rec OutboxRecord) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload_json, status, dedupe_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (dedupe_key) DO NOTHING
	`, rec.ID, rec.AggregateType, rec.AggregateID, rec.EventType, rec.Payload, OutboxNew, rec.DedupeKey)
	return err
}

// ClaimUnpublished locks up to limit pending records, oldest first, for the
// lifetime of tx. Concurrent relays skip locked rows.
func (r *Repository) ClaimUnpublished(ctx context.Context, tx pgx.Tx, limit int) ([]OutboxRecord, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, aggregate_type, aggregate_id, event_type, payload_json,
		       created_at, published_at, status, attempts, dedupe_key
		FROM outbox
		WHERE status = $1
		ORDER BY created_at, id
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`, OutboxNew, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[OutboxRecord])
}

func (r *Repository) MarkPublished(ctx context.Context, tx pgx.Tx, id uuid.UUID, publishedAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE outbox SET status = $2, published_at = $3, attempts = attempts + 1 WHERE id = $1
	`, id, OutboxPublished, publishedAt)
	return err
}

// RecordFailure counts a failed delivery and parks the record once it has
// used maxAttempts.
func (r *Repository) RecordFailure(ctx context.Context, tx pgx.Tx, id uuid.UUID, maxAttempts int) error {
	_, err := tx.Exec(ctx, `
		UPDATE outbox
		SET attempts = attempts + 1,
		    status = CASE WHEN attempts + 1 >= $2 THEN $3 ELSE status END
		WHERE id = $1
	`, id, maxAttempts, OutboxFailed)
	return err
}
