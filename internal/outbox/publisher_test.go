package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/adhilsalahh/package-booking/internal/adapters/crdb"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	records   []crdb.OutboxRecord
	published map[uuid.UUID]time.Time
	failures  map[uuid.UUID]int
}

func (m *memStore) WithTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (m *memStore) ClaimUnpublished(_ context.Context, _ pgx.Tx, limit int) ([]crdb.OutboxRecord, error) {
	var out []crdb.OutboxRecord
	for _, r := range m.records {
		if r.Status == crdb.OutboxNew && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) MarkPublished(_ context.Context, _ pgx.Tx, id uuid.UUID, at time.Time) error {
	m.published[id] = at
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Status = crdb.OutboxPublished
		}
	}
	return nil
}

func (m *memStore) RecordFailure(_ context.Context, _ pgx.Tx, id uuid.UUID, maxAttempts int) error {
	m.failures[id]++
	for i := range m.records {
		if m.records[i].ID == id && m.failures[id] >= maxAttempts {
			m.records[i].Status = crdb.OutboxFailed
		}
	}
	return nil
}

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, key string, msg amqp.Publishing) error {
	return m.Called(key, msg.MessageId).Error(0)
}

func record(eventType string, at time.Time) crdb.OutboxRecord {
	return crdb.OutboxRecord{
		ID:          uuid.New(),
		AggregateID: uuid.New(),
		EventType:   eventType,
		Payload:     []byte(`{}`),
		CreatedAt:   at,
		Status:      crdb.OutboxNew,
	}
}

func TestPublishBatch_InOrder(t *testing.T) {
	now := time.Now().UTC()
	a := record("booking.created", now.Add(-2*time.Second))
	b := record("payment.submitted", now.Add(-time.Second))
	store := &memStore{records: []crdb.OutboxRecord{a, b}, published: map[uuid.UUID]time.Time{}, failures: map[uuid.UUID]int{}}
	broker := new(mockBroker)
	broker.On("Publish", "booking.created", a.ID.String()).Return(nil).Once()
	broker.On("Publish", "payment.submitted", b.ID.String()).Return(nil).Once()

	p := NewPublisher(store, broker, observability.NewLogger(), time.Second)
	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.published, 2)

	n, err = p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	broker.AssertExpectations(t)
}

func TestPublishBatch_StopsAtFailure(t *testing.T) {
	now := time.Now().UTC()
	a := record("booking.created", now.Add(-2*time.Second))
	b := record("booking.confirmed", now.Add(-time.Second))
	store := &memStore{records: []crdb.OutboxRecord{a, b}, published: map[uuid.UUID]time.Time{}, failures: map[uuid.UUID]int{}}
	broker := new(mockBroker)
	broker.On("Publish", "booking.created", a.ID.String()).Return(errors.New("channel closed"))

	p := NewPublisher(store, broker, observability.NewLogger(), time.Second)
	for i := 0; i < MaxAttempts; i++ {
		n, err := p.PublishBatch(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	assert.Equal(t, MaxAttempts, store.failures[a.ID])
	assert.Equal(t, crdb.OutboxFailed, store.records[0].Status)
	broker.AssertNotCalled(t, "Publish", "booking.confirmed", b.ID.String())

	broker.On("Publish", "booking.confirmed", b.ID.String()).Return(nil).Once()
	n, err := p.PublishBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
