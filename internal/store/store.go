package store

import (
	"context"
	"time"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

// LoadResult is the outcome of reading a cart slot. Recovered is set
// when a stored payload existed but failed to parse; the caller sees an
// empty cart either way, never an error.
type LoadResult struct {
	Items     []domain.CartItem
	Recovered bool
}

// CartStore is the durable per-session slot holding the serialized cart.
// One writer per session is assumed; concurrent writers are
// last-writer-wins.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (LoadResult, error)
	Save(ctx context.Context, sessionID string, items []domain.CartItem) error
	Clear(ctx context.Context, sessionID string) error
}

// OrderEvent is one row of the order outbox, written when a checkout is
// confirmed and published to the event stream by the poller.
type OrderEvent struct {
	ID        int64
	Payload   []byte
	CreatedAt time.Time
}

// EventLog records confirmed orders for asynchronous publication.
type EventLog interface {
	RecordOrderEvent(ctx context.Context, payload []byte) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OrderEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}
