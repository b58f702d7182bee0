package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/GlobalTechSoftwareSolution/farmharvesttohome-sub000/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps cart slots and the order outbox in a single local
// database file. Reads and writes are synchronous, there is no network
// round trip.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RunMigrations() error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// Load returns the stored cart for the session. A missing slot yields an
// empty cart; a payload that no longer parses as JSON yields an empty
// cart with Recovered set and the bad row dropped.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (LoadResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM cart_slots WHERE session_id = $1`, sessionID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return LoadResult{}, nil
	}
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to load cart slot: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		log.Printf("discarding unreadable cart payload for session %s: %v", sessionID, err)
		if err := s.Clear(ctx, sessionID); err != nil {
			return LoadResult{}, err
		}
		return LoadResult{Recovered: true}, nil
	}

	return LoadResult{Items: items}, nil
}

// Save overwrites the slot with the full serialized cart.
func (s *SQLiteStore) Save(ctx context.Context, sessionID string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO cart_slots (session_id, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (session_id) DO UPDATE
SET payload = excluded.payload, updated_at = excluded.updated_at
`, sessionID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save cart slot: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_slots WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear cart slot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordOrderEvent(ctx context.Context, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO order_events (payload, created_at) VALUES ($1, $2)`,
		string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record order event: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OrderEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, payload, created_at
FROM order_events
WHERE processed_at IS NULL
ORDER BY id
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query order events: %w", err)
	}
	defer rows.Close()

	var events []*OrderEvent
	for rows.Next() {
		ev := &OrderEvent{}
		var payload string
		if err := rows.Scan(&ev.ID, &payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order event: %w", err)
		}
		ev.Payload = []byte(payload)
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (s *SQLiteStore) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE order_events SET processed_at = $1 WHERE id = $2`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
