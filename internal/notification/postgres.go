package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createEventsTable = `CREATE TABLE IF NOT EXISTS wallet_events (
    id          UUID PRIMARY KEY,
    kind        TEXT NOT NULL,
    destination TEXT NOT NULL,
    body        TEXT NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL
)`

// PostgresNotifier appends wallet events to a write-only journal table. The
// journal is never read back, so wallet state still starts empty on boot.
type PostgresNotifier struct {
	db *pgxpool.Pool
}

// NewPostgresNotifier builds a journal notifier on the given pool.
func NewPostgresNotifier(db *pgxpool.Pool) *PostgresNotifier {
	return &PostgresNotifier{db: db}
}

// EnsureSchema creates the journal table when missing.
func (n *PostgresNotifier) EnsureSchema(ctx context.Context) error {
	if _, err := n.db.Exec(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create wallet_events: %w", err)
	}
	return nil
}

// Send inserts one journal row.
func (n *PostgresNotifier) Send(ctx context.Context, message Message) error {
	occurredAt := message.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	_, err := n.db.Exec(ctx, `INSERT INTO wallet_events (id, kind, destination, body, occurred_at)
        VALUES ($1, $2, $3, $4, $5)`, uuid.New(), message.Kind, message.Destination, message.Body, occurredAt.UTC())
	if err != nil {
		return fmt.Errorf("insert wallet event: %w", err)
	}
	return nil
}
