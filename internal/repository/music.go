package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parishplan/parishplan/internal/database"
	"github.com/parishplan/parishplan/internal/models"
)

type MusicRepository struct {
	db *database.DB
}

func NewMusicRepository(db *database.DB) *MusicRepository {
	return &MusicRepository{db: db}
}

// ListMusicItems returns one event's music list in service order.
func (r *MusicRepository) ListMusicItems(ctx context.Context, eventID uuid.UUID) ([]*models.MusicItem, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, event_id, title, composer, position, created_at
		 FROM music_items WHERE event_id = $1
		 ORDER BY position ASC, created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MusicItem
	for rows.Next() {
		m := &models.MusicItem{}
		if err := rows.Scan(&m.ID, &m.EventID, &m.Title, &m.Composer,
			&m.Position, &m.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CreateMusicItems inserts music list rows in one batch.
func (r *MusicRepository) CreateMusicItems(ctx context.Context, items []*models.MusicItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range items {
		batch.Queue(
			`INSERT INTO music_items (id, event_id, title, composer, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.EventID, m.Title, m.Composer, m.Position,
		)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert music item: %w", err)
		}
	}
	return br.Close()
}
