package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parishplan/parishplan/internal/database"
	"github.com/parishplan/parishplan/internal/models"
)

type OutboxRepository struct {
	db *database.DB
}

func NewOutboxRepository(db *database.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// EnqueueOutbox records pending notification entries in one batch.
func (r *OutboxRepository) EnqueueOutbox(ctx context.Context, entries []*models.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO event_outbox (id, batch_key, event_id, kind)
			 VALUES ($1, $2, $3, $4)`,
			e.ID, e.BatchKey, e.EventID, e.Kind,
		)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	for range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("enqueue outbox entry: %w", err)
		}
	}
	return br.Close()
}

// DueOutbox returns unprocessed entries, oldest first.
func (r *OutboxRepository) DueOutbox(ctx context.Context, limit int) ([]*models.OutboxEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, batch_key, event_id, kind, enqueued_at, processed_at
		 FROM event_outbox WHERE processed_at IS NULL
		 ORDER BY enqueued_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.OutboxEntry
	for rows.Next() {
		e := &models.OutboxEntry{}
		if err := rows.Scan(&e.ID, &e.BatchKey, &e.EventID, &e.Kind,
			&e.EnqueuedAt, &e.ProcessedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkOutboxProcessed stamps the given entries as handled.
func (r *OutboxRepository) MarkOutboxProcessed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE event_outbox SET processed_at = NOW() WHERE id = ANY($1)`,
		ids,
	)
	return err
}
