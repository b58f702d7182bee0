package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/store"
)

type mockEventLog struct {
	mu        sync.Mutex
	events    []*store.OrderEvent
	processed []int64
	fetchErr  error
}

func (m *mockEventLog) RecordOrderEvent(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, &store.OrderEvent{
		ID:        int64(len(m.events) + 1),
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *mockEventLog) GetUnprocessedEvents(ctx context.Context, limit int) ([]*store.OrderEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []*store.OrderEvent
	for _, ev := range m.events {
		if containsID(m.processed, ev.ID) {
			continue
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockEventLog) MarkEventAsProcessed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed = append(m.processed, id)
	return nil
}

func (m *mockEventLog) processedIDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.processed))
	copy(out, m.processed)
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	writeErr error
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockWriter) written() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]kafka.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func TestPoller_PublishesAndMarksEvents(t *testing.T) {
	events := &mockEventLog{}
	require.NoError(t, events.RecordOrderEvent(context.Background(), []byte(`{"id":"a"}`)))
	require.NoError(t, events.RecordOrderEvent(context.Background(), []byte(`{"id":"b"}`)))

	writer := &mockWriter{}
	poller := NewPoller(events, writer)

	poller.processUnpublishedEvents(context.Background())

	written := writer.written()
	require.Len(t, written, 2)
	assert.Equal(t, `{"id":"a"}`, string(written[0].Value))
	assert.Equal(t, `{"id":"b"}`, string(written[1].Value))
	assert.ElementsMatch(t, []int64{1, 2}, events.processedIDs())
}

func TestPoller_DoesNotMarkOnPublishFailure(t *testing.T) {
	events := &mockEventLog{}
	require.NoError(t, events.RecordOrderEvent(context.Background(), []byte(`{"id":"a"}`)))

	writer := &mockWriter{writeErr: errors.New("broker unavailable")}
	poller := NewPoller(events, writer)

	poller.processUnpublishedEvents(context.Background())
	assert.Empty(t, events.processedIDs())

	// Next tick retries once the broker is back.
	writer.mu.Lock()
	writer.writeErr = nil
	writer.mu.Unlock()

	poller.processUnpublishedEvents(context.Background())
	require.Len(t, writer.written(), 1)
	assert.Equal(t, []int64{1}, events.processedIDs())
}

func TestPoller_FetchFailureIsRetriedNextTick(t *testing.T) {
	events := &mockEventLog{fetchErr: errors.New("database locked")}
	writer := &mockWriter{}
	poller := NewPoller(events, writer)

	poller.processUnpublishedEvents(context.Background())
	assert.Empty(t, writer.written())
}

func TestPoller_RunStopsOnContextCancel(t *testing.T) {
	events := &mockEventLog{}
	require.NoError(t, events.RecordOrderEvent(context.Background(), []byte(`{"id":"a"}`)))

	writer := &mockWriter{}
	poller := NewPoller(events, writer)
	poller.tick = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(writer.written()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancellation")
	}
}
