package series

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parishplan/parishplan/internal/pattern"
	"github.com/parishplan/parishplan/internal/recur"
)

// lookAheadMonths is how far past the target date extension materializes,
// so a feed window reaching targetDate has occurrences beyond its edge.
const lookAheadMonths = 3

// Extender appends new occurrences to an already-materialized series.
type Extender struct {
	store Store
	mat   *Materializer
}

func NewExtender(store Store, mat *Materializer) *Extender {
	return &Extender{store: store, mat: mat}
}

// Extend materializes the series tail needed to reach targetDate, seeded at
// the latest existing occurrence so weekday and day-of-month phase carry
// over. It never touches existing occurrences, which makes repeated calls
// with the same target a no-op: a tail already reaching the target returns
// empty without writing anything.
//
// Concurrent extension of the same root is expected to be serialized by the
// caller or absorbed by the store's uniqueness on (generatedFrom, startTime).
func (e *Extender) Extend(ctx context.Context, rootID uuid.UUID, targetDate time.Time) ([]uuid.UUID, error) {
	root, err := e.store.GetRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}

	p := pattern.Parse(root.RecurrencePattern)
	if p.IsZero() || !p.Kind.Valid() {
		return nil, nil
	}

	latest, err := e.store.LatestOccurrence(ctx, rootID)
	if err != nil {
		return nil, err
	}
	// Extension only appends to an existing tail; first-time generation is
	// Materializer.Generate's job.
	if latest == nil {
		return nil, nil
	}
	if !latest.StartTime.Before(targetDate) {
		return nil, nil
	}

	window := targetDate.AddDate(0, lookAheadMonths, 0)
	timestamps := recur.ExpandUntil(latest.StartTime, p, window)
	if len(timestamps) == 0 {
		return nil, nil
	}

	ids, err := e.mat.Materialize(ctx, root, timestamps)
	if err != nil {
		return ids, err
	}
	if err := e.mat.copyRoster(ctx, root, ids); err != nil {
		return ids, err
	}
	return ids, nil
}
