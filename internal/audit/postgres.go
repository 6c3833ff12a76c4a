package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"trustledger/pkg/chain"
)

// PostgresJournal persists audit events in PostgreSQL for deployments that
// need a queryable trail without a Kafka consumer.
type PostgresJournal struct {
	pool *pgxpool.Pool
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	operation   TEXT NOT NULL,
	caller      TEXT NOT NULL,
	entity      TEXT NOT NULL,
	block       BIGINT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_caller_idx ON audit_events (caller, occurred_at);
`

// NewPostgresJournal ensures the journal table exists and returns the store.
func NewPostgresJournal(ctx context.Context, pool *pgxpool.Pool) (*PostgresJournal, error) {
	if _, err := pool.Exec(ctx, journalSchema); err != nil {
		return nil, fmt.Errorf("ensure audit schema: %w", err)
	}
	return &PostgresJournal{pool: pool}, nil
}

func (j *PostgresJournal) Emit(ctx context.Context, event Event) error {
	event = Stamp(event)
	_, err := j.pool.Exec(ctx,
		`INSERT INTO audit_events (id, operation, caller, entity, block, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.Operation, string(event.Caller), event.Entity, int64(event.Block), event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByCaller returns a caller's events in emission order.
func (j *PostgresJournal) ListByCaller(ctx context.Context, caller chain.Principal) ([]Event, error) {
	rows, err := j.pool.Query(ctx,
		`SELECT id, operation, caller, entity, block, occurred_at
		 FROM audit_events WHERE caller = $1 ORDER BY occurred_at`,
		string(caller),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var block int64
		var callerText string
		if err := rows.Scan(&event.ID, &event.Operation, &callerText, &event.Entity, &block, &event.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Caller = chain.Principal(callerText)
		event.Block = uint64(block)
		events = append(events, event)
	}
	return events, rows.Err()
}
