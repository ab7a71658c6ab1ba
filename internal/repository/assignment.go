package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/parishplan/parishplan/internal/database"
	"github.com/parishplan/parishplan/internal/models"
)

type AssignmentRepository struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListAssignments returns the assignment roster of one event.
func (r *AssignmentRepository) ListAssignments(ctx context.Context, eventID uuid.UUID) ([]*models.Assignment, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, event_id, role, first_name, last_name, status, created_at
		 FROM assignments WHERE event_id = $1
		 ORDER BY role ASC, created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*models.Assignment
	for rows.Next() {
		a := &models.Assignment{}
		if err := rows.Scan(&a.ID, &a.EventID, &a.Role, &a.FirstName,
			&a.LastName, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CreateAssignments inserts assignment rows in one batch.
func (r *AssignmentRepository) CreateAssignments(ctx context.Context, assignments []*models.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, a := range assignments {
		batch.Queue(
			`INSERT INTO assignments (id, event_id, role, first_name, last_name, status)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			a.ID, a.EventID, a.Role, a.FirstName, a.LastName, a.Status,
		)
	}

	br := r.db.Pool.SendBatch(ctx, batch)
	for range assignments {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return br.Close()
}
