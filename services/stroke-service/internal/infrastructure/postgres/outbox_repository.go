package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/VeyronShark/Stroke-Predictor-using-ML/pkg/events"
)

// OutboxRepository implements events.OutboxRepository using PostgreSQL.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new PostgreSQL-backed outbox.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Store stages entries outside any aggregate transaction.
func (r *OutboxRepository) Store(ctx context.Context, entries []events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return sendOutboxBatch(ctx, r.pool, entries)
}

// FetchUnpublished returns up to batchSize staged entries, oldest first.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, envelope, created_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1`,
		batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (events.OutboxEntry, error) {
		var e events.OutboxEntry
		err := row.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Envelope, &e.CreatedAt)
		e.CreatedAt = e.CreatedAt.UTC()
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox entries: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given entries so they are not relayed again.
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE event_outbox SET published_at = $1 WHERE id = ANY($2) AND published_at IS NULL`,
		time.Now().UTC(), ids,
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox entries published: %w", err)
	}
	return nil
}

type batchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func sendOutboxBatch(ctx context.Context, s batchSender, entries []events.OutboxEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO event_outbox (id, aggregate_id, aggregate_type, event_type, envelope, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, e.AggregateID, e.AggregateType, e.EventType, string(e.Envelope), e.CreatedAt,
		)
	}
	if err := s.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to stage outbox entries: %w", err)
	}
	return nil
}
