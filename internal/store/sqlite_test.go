package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "storefront.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.RunMigrations())

	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCart() []domain.CartItem {
	return []domain.CartItem{
		{ProductID: 1, Name: "Millet", Price: 220, Size: "1Kg", Image: "/img/millet.jpg", Quantity: 2},
		{ProductID: 2, Name: "Raw Honey", Price: 590, Size: "500g", Quantity: 1},
	}
}

func TestLoad_MissingSlotReturnsEmptyCart(t *testing.T) {
	s := setupTestStore(t)

	result, err := s.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.False(t, result.Recovered)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	cart := sampleCart()

	require.NoError(t, s.Save(ctx, "sess-1", cart))

	result, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, result.Recovered)
	assert.Equal(t, cart, result.Items)
}

func TestSave_OverwritesPreviousValue(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sess-1", sampleCart()))
	require.NoError(t, s.Save(ctx, "sess-1", sampleCart()[:1]))

	result, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

func TestSave_EmptyCartRoundTrips(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sess-1", nil))

	result, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.False(t, result.Recovered)
}

func TestLoad_CorruptPayloadRecoversToEmpty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_slots (session_id, payload) VALUES ('sess-1', '{not json')`)
	require.NoError(t, err)

	result, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.True(t, result.Recovered)

	// The bad row is gone; the next load is a clean miss.
	again, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, again.Recovered)
}

func TestClear_RemovesSlot(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sess-1", sampleCart()))
	require.NoError(t, s.Clear(ctx, "sess-1"))

	result, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestClear_MissingSlotIsNoop(t *testing.T) {
	s := setupTestStore(t)

	assert.NoError(t, s.Clear(context.Background(), "nobody"))
}

func TestSlots_AreIsolatedBySession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sess-1", sampleCart()))
	require.NoError(t, s.Save(ctx, "sess-2", sampleCart()[:1]))
	require.NoError(t, s.Clear(ctx, "sess-2"))

	result, err := s.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestOrderEvents_RecordAndProcess(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordOrderEvent(ctx, []byte(`{"order_id":"a"}`)))
	require.NoError(t, s.RecordOrderEvent(ctx, []byte(`{"order_id":"b"}`)))

	events, err := s.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, `{"order_id":"a"}`, string(events[0].Payload))

	require.NoError(t, s.MarkEventAsProcessed(ctx, events[0].ID))

	remaining, err := s.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, `{"order_id":"b"}`, string(remaining[0].Payload))
}

func TestOrderEvents_LimitIsRespected(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordOrderEvent(ctx, []byte(`{}`)))
	}

	events, err := s.GetUnprocessedEvents(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
