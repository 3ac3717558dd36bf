package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	events := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	dlq := `
CREATE TABLE IF NOT EXISTS outbox_dlq (
  id TEXT PRIMARY KEY,
  event_id TEXT NOT NULL,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  error_reason TEXT NOT NULL,
  error_message TEXT,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  failed_at DATETIME,
  created_at DATETIME
);`
	for _, ddl := range []string{events, dlq} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	// The shared cache keeps rows across tests; start from clean tables.
	require.NoError(t, db.Exec("DELETE FROM outbox_events").Error)
	require.NoError(t, db.Exec("DELETE FROM outbox_dlq").Error)
	return db
}

func stagedEvent(createdAt time.Time) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderSplit,
		AggregateType: enums.AggregateSplitRecord,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     createdAt,
	}
}

func TestRepositoryInsertAndExists(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := stagedEvent(time.Now().UTC())
	require.NoError(t, repo.Insert(db, event))

	exists, err := repo.ExistsTx(db, event.EventType, event.AggregateType, event.AggregateID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsTx(db, event.EventType, event.AggregateType, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepositoryMarkTransitions(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := stagedEvent(time.Now().UTC())
	require.NoError(t, repo.Insert(db, event))

	require.NoError(t, repo.MarkFailedTx(db, event.ID, errors.New("broker unreachable")))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "broker unreachable", *row.LastError)
	assert.Nil(t, row.PublishedAt)

	require.NoError(t, repo.MarkPublishedTx(db, event.ID))
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.NotNil(t, row.PublishedAt)
}

func TestRepositoryMarkTerminalPinsAttempts(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := stagedEvent(time.Now().UTC())
	require.NoError(t, repo.Insert(db, event))
	require.NoError(t, repo.MarkTerminalTx(db, event.ID, errors.New("undecodable"), 10))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 10, row.AttemptCount)

	pending, err := repo.FetchUnpublished(10)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "terminal rows stay visible to the plain fetch for auditing")
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)
	cutoff := time.Now().UTC().Add(-24 * time.Hour)

	oldPublished := stagedEvent(cutoff.Add(-48 * time.Hour))
	publishedAt := cutoff.Add(-24 * time.Hour)
	oldPublished.PublishedAt = &publishedAt

	exhausted := stagedEvent(cutoff.Add(-48 * time.Hour))
	exhausted.AttemptCount = 10

	fresh := stagedEvent(time.Now().UTC())

	stillRetrying := stagedEvent(cutoff.Add(-48 * time.Hour))
	stillRetrying.AttemptCount = 3

	for _, event := range []models.OutboxEvent{oldPublished, exhausted, fresh, stillRetrying} {
		require.NoError(t, repo.Insert(db, event))
	}

	purged, err := repo.DeletePublishedBefore(context.Background(), db, cutoff, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	var remaining []models.OutboxEvent
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	assert.Contains(t, ids, fresh.ID)
	assert.Contains(t, ids, stillRetrying.ID)
}

func TestDLQRepositoryRoundTrip(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewDLQRepository(db)
	ctx := context.Background()

	longMessage := strings.Repeat("x", dlqErrorLimit+100)
	eventID := uuid.New()
	entry := models.OutboxDLQ{
		ID:            uuid.New(),
		EventID:       eventID,
		EventType:     enums.EventOrderSplit,
		AggregateType: enums.AggregateSplitRecord,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		ErrorReason:   enums.OutboxDLQReasonMaxAttempts,
		ErrorMessage:  &longMessage,
		AttemptCount:  10,
		FailedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.InsertTx(db, entry))

	found, err := repo.FindByEventID(ctx, eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, eventID, found.EventID)
	require.NotNil(t, found.ErrorMessage)
	assert.Len(t, *found.ErrorMessage, dlqErrorLimit)

	missing, err := repo.FindByEventID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	listed, err := repo.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestRepositoryRequiresTransaction(t *testing.T) {
	repo := NewRepository(nil)
	require.Error(t, repo.Insert(nil, models.OutboxEvent{}))
	_, err := repo.ExistsTx(nil, enums.EventOrderSplit, enums.AggregateSplitRecord, uuid.New())
	require.Error(t, err)
	require.Error(t, NewDLQRepository(nil).InsertTx(nil, models.OutboxDLQ{}))
}
