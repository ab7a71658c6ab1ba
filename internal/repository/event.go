package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parishplan/parishplan/internal/database"
	"github.com/parishplan/parishplan/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const eventColumns = `id, church_id, category_id, name, description, location,
	start_time, end_time, recurrence_pattern, is_root_event, generated_from,
	parent_id, customized, status, sequence, created_at, updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// GetRoot fetches a series root event by identifier.
func (r *EventRepository) GetRoot(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := r.scanOne(r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 AND is_root_event`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("root event %s: %w", id, ErrNotFound)
	}
	return event, err
}

// LatestOccurrence returns the occurrence with the maximum start time among
// those generated from the given root, or nil if none have been materialized.
func (r *EventRepository) LatestOccurrence(ctx context.Context, rootID uuid.UUID) (*models.Event, error) {
	event, err := r.scanOne(r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE generated_from = $1
		 ORDER BY start_time DESC LIMIT 1`,
		rootID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return event, err
}

// ListRecurringRoots returns all root events that carry a recurrence pattern.
func (r *EventRepository) ListRecurringRoots(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE is_root_event AND recurrence_pattern <> ''
		 ORDER BY start_time ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListForRange returns all events for a church inside [from, to], ordered by
// start time, with assignments and music items attached. If a nested load
// fails, the events fetched so far are returned alongside the error so the
// caller can still serve a partial feed.
func (r *EventRepository) ListForRange(ctx context.Context, churchID uuid.UUID, from, to time.Time) ([]*models.Event, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE church_id = $1 AND start_time >= $2 AND start_time <= $3
		 ORDER BY start_time ASC`,
		churchID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil || len(events) == 0 {
		return events, err
	}

	ids := make([]uuid.UUID, len(events))
	byID := make(map[uuid.UUID]*models.Event, len(events))
	for i, e := range events {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	if err := r.attachAssignments(ctx, ids, byID); err != nil {
		return events, fmt.Errorf("attach assignments: %w", err)
	}
	if err := r.attachMusic(ctx, ids, byID); err != nil {
		return events, fmt.Errorf("attach music items: %w", err)
	}
	return events, nil
}

func (r *EventRepository) attachAssignments(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*models.Event) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, event_id, role, first_name, last_name, status, created_at
		 FROM assignments WHERE event_id = ANY($1)
		 ORDER BY role ASC, created_at ASC`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		a := &models.Assignment{}
		if err := rows.Scan(&a.ID, &a.EventID, &a.Role, &a.FirstName,
			&a.LastName, &a.Status, &a.CreatedAt); err != nil {
			return err
		}
		if e, ok := byID[a.EventID]; ok {
			e.Assignments = append(e.Assignments, a)
		}
	}
	return rows.Err()
}

func (r *EventRepository) attachMusic(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*models.Event) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, event_id, title, composer, position, created_at
		 FROM music_items WHERE event_id = ANY($1)
		 ORDER BY position ASC, created_at ASC`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		m := &models.MusicItem{}
		if err := rows.Scan(&m.ID, &m.EventID, &m.Title, &m.Composer,
			&m.Position, &m.CreatedAt); err != nil {
			return err
		}
		if e, ok := byID[m.EventID]; ok {
			e.MusicItems = append(e.MusicItems, m)
		}
	}
	return rows.Err()
}

// CreateOccurrences inserts the given occurrence rows in one batch and
// returns the identifiers actually written. A row whose (generated_from,
// start_time) slot is already taken is skipped rather than duplicated, so a
// racing or repeated extension cannot double-materialize a tail. Each row is
// written atomically; a failure part way leaves earlier rows committed, which
// idempotent re-extension tolerates.
func (r *EventRepository) CreateOccurrences(ctx context.Context, events []*models.Event) ([]uuid.UUID, error) {
	if len(events) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(
			`INSERT INTO events (id, church_id, category_id, name, description, location,
			 start_time, end_time, recurrence_pattern, is_root_event, generated_from,
			 parent_id, customized, status, sequence)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 ON CONFLICT (generated_from, start_time) WHERE generated_from IS NOT NULL
			 DO NOTHING`,
			e.ID, e.ChurchID, e.CategoryID, e.Name, e.Description, e.Location,
			e.StartTime, e.EndTime, e.RecurrencePattern, e.IsRootEvent, e.GeneratedFrom,
			e.ParentID, e.Customized, e.Status, e.Sequence,
		)
	}

	var inserted []uuid.UUID
	br := r.db.Pool.SendBatch(ctx, batch)
	for _, e := range events {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return inserted, fmt.Errorf("insert occurrence: %w", err)
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, e.ID)
		}
	}
	return inserted, br.Close()
}

// DeleteFutureGenerated removes occurrences of a root starting after the
// given time, skipping rows a user has customized. Returns the number of
// rows removed.
func (r *EventRepository) DeleteFutureGenerated(ctx context.Context, rootID uuid.UUID, after time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM events
		 WHERE generated_from = $1 AND start_time > $2 AND NOT customized`,
		rootID, after,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CancelFutureGenerated marks future occurrences of a root cancelled and
// bumps their revision counter, returning the affected identifiers.
func (r *EventRepository) CancelFutureGenerated(ctx context.Context, rootID uuid.UUID, after time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Pool.Query(ctx,
		`UPDATE events
		 SET status = $1, sequence = sequence + 1, updated_at = NOW()
		 WHERE generated_from = $2 AND start_time > $3 AND status <> $1
		 RETURNING id`,
		models.StatusCancelled, rootID, after,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *EventRepository) scanOne(row pgx.Row) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(&e.ID, &e.ChurchID, &e.CategoryID, &e.Name, &e.Description,
		&e.Location, &e.StartTime, &e.EndTime, &e.RecurrencePattern, &e.IsRootEvent,
		&e.GeneratedFrom, &e.ParentID, &e.Customized, &e.Status, &e.Sequence,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func scanEvents(rows pgx.Rows) ([]*models.Event, error) {
	var events []*models.Event
	for rows.Next() {
		e := &models.Event{}
		if err := rows.Scan(&e.ID, &e.ChurchID, &e.CategoryID, &e.Name, &e.Description,
			&e.Location, &e.StartTime, &e.EndTime, &e.RecurrencePattern, &e.IsRootEvent,
			&e.GeneratedFrom, &e.ParentID, &e.Customized, &e.Status, &e.Sequence,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
