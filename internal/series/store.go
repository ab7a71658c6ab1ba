package series

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parishplan/parishplan/internal/models"
)

// Store is the narrow persistence surface the series logic consumes. It is
// the sole source of truth for what has already been materialized; nothing
// here caches occurrence lists across calls.
type Store interface {
	GetRoot(ctx context.Context, id uuid.UUID) (*models.Event, error)
	LatestOccurrence(ctx context.Context, rootID uuid.UUID) (*models.Event, error)
	CreateOccurrences(ctx context.Context, events []*models.Event) ([]uuid.UUID, error)
	DeleteFutureGenerated(ctx context.Context, rootID uuid.UUID, after time.Time) (int64, error)
	CancelFutureGenerated(ctx context.Context, rootID uuid.UUID, after time.Time) ([]uuid.UUID, error)

	ListAssignments(ctx context.Context, eventID uuid.UUID) ([]*models.Assignment, error)
	CreateAssignments(ctx context.Context, assignments []*models.Assignment) error
	ListMusicItems(ctx context.Context, eventID uuid.UUID) ([]*models.MusicItem, error)
	CreateMusicItems(ctx context.Context, items []*models.MusicItem) error

	EnqueueOutbox(ctx context.Context, entries []*models.OutboxEntry) error
}
