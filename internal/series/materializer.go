// Package series turns recurrence patterns into persisted occurrence records
// and extends existing series forward in time.
package series

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parishplan/parishplan/internal/models"
	"github.com/parishplan/parishplan/internal/pattern"
	"github.com/parishplan/parishplan/internal/recur"
)

// DefaultBatchSize bounds how many occurrence rows go to the store per write.
const DefaultBatchSize = 25

// Materializer turns expanded timestamps into concrete occurrence records.
type Materializer struct {
	store     Store
	batchSize int
}

// NewMaterializer creates a materializer writing in batches of batchSize
// rows; batchSize <= 0 selects DefaultBatchSize.
func NewMaterializer(store Store, batchSize int) *Materializer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Materializer{store: store, batchSize: batchSize}
}

// Materialize persists one occurrence per timestamp, copying the root's
// descriptive fields and re-applying its duration. Returns the identifiers
// of the occurrences actually created. A store failure part way through is
// returned with the identifiers written so far; re-extension picks up from
// the new tail.
func (m *Materializer) Materialize(ctx context.Context, root *models.Event, timestamps []time.Time) ([]uuid.UUID, error) {
	occurrences := make([]*models.Event, len(timestamps))
	for i, t := range timestamps {
		occurrences[i] = occurrenceFromRoot(root, t)
	}

	var created []uuid.UUID
	for start := 0; start < len(occurrences); start += m.batchSize {
		end := start + m.batchSize
		if end > len(occurrences) {
			end = len(occurrences)
		}
		ids, err := m.store.CreateOccurrences(ctx, occurrences[start:end])
		created = append(created, ids...)
		if err != nil {
			return created, fmt.Errorf("materialize batch: %w", err)
		}
	}
	return created, nil
}

// Generate performs first-time expansion of a recurring root out to the
// horizon and copies the root's roster and music list onto each occurrence.
// A root without a usable pattern generates nothing, without error.
func (m *Materializer) Generate(ctx context.Context, root *models.Event, horizonMonths int) ([]uuid.UUID, error) {
	p := pattern.Parse(root.RecurrencePattern)
	if p.IsZero() || !p.Kind.Valid() {
		return nil, nil
	}

	timestamps := recur.Expand(root.StartTime, p, horizonMonths)
	ids, err := m.Materialize(ctx, root, timestamps)
	if err != nil {
		return ids, err
	}
	if err := m.copyRoster(ctx, root, ids); err != nil {
		return ids, err
	}
	return ids, nil
}

// RegenerateFuture rebuilds a series' future tail after its definition
// changed: occurrences after now that the user has not customized are
// dropped and re-materialized from the edited root. Customized occurrences
// are left untouched; a regenerated timestamp colliding with one is skipped
// by the store.
func (m *Materializer) RegenerateFuture(ctx context.Context, rootID uuid.UUID, horizonMonths int) ([]uuid.UUID, error) {
	root, err := m.store.GetRoot(ctx, rootID)
	if err != nil {
		return nil, err
	}

	p := pattern.Parse(root.RecurrencePattern)
	if p.IsZero() || !p.Kind.Valid() {
		return nil, nil
	}

	now := time.Now()
	if _, err := m.store.DeleteFutureGenerated(ctx, rootID, now); err != nil {
		return nil, fmt.Errorf("delete future occurrences: %w", err)
	}

	var future []time.Time
	for _, t := range recur.Expand(root.StartTime, p, horizonMonths) {
		if t.After(now) {
			future = append(future, t)
		}
	}

	ids, err := m.Materialize(ctx, root, future)
	if err != nil {
		return ids, err
	}
	if err := m.copyRoster(ctx, root, ids); err != nil {
		return ids, err
	}
	return ids, nil
}

// CancelFuture marks a series' future occurrences cancelled and enqueues one
// outbox entry per occurrence under a shared batch key, for the notification
// consumer to deliver as a single message.
func (m *Materializer) CancelFuture(ctx context.Context, rootID uuid.UUID, from time.Time) ([]uuid.UUID, error) {
	ids, err := m.store.CancelFutureGenerated(ctx, rootID, from)
	if err != nil {
		return nil, fmt.Errorf("cancel future occurrences: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	batchKey := fmt.Sprintf("cancel:%s:%s", rootID, from.UTC().Format("2006-01-02"))
	entries := make([]*models.OutboxEntry, len(ids))
	for i, id := range ids {
		entries[i] = &models.OutboxEntry{
			ID:       uuid.New(),
			BatchKey: batchKey,
			EventID:  id,
			Kind:     models.OutboxEventCancelled,
		}
	}
	if err := m.store.EnqueueOutbox(ctx, entries); err != nil {
		return ids, fmt.Errorf("enqueue cancellation notices: %w", err)
	}
	return ids, nil
}

// copyRoster copies the root's current assignments and music list onto each
// new occurrence. This is a point-in-time copy; later edits to the root do
// not reach occurrences already materialized.
func (m *Materializer) copyRoster(ctx context.Context, root *models.Event, occurrenceIDs []uuid.UUID) error {
	if len(occurrenceIDs) == 0 {
		return nil
	}

	assignments, err := m.store.ListAssignments(ctx, root.ID)
	if err != nil {
		return fmt.Errorf("load root assignments: %w", err)
	}
	musicItems, err := m.store.ListMusicItems(ctx, root.ID)
	if err != nil {
		return fmt.Errorf("load root music list: %w", err)
	}
	if len(assignments) == 0 && len(musicItems) == 0 {
		return nil
	}

	var newAssignments []*models.Assignment
	var newItems []*models.MusicItem
	for _, occID := range occurrenceIDs {
		for _, a := range assignments {
			newAssignments = append(newAssignments, &models.Assignment{
				ID:        uuid.New(),
				EventID:   occID,
				Role:      a.Role,
				FirstName: a.FirstName,
				LastName:  a.LastName,
				Status:    a.Status,
			})
		}
		for _, item := range musicItems {
			newItems = append(newItems, &models.MusicItem{
				ID:       uuid.New(),
				EventID:  occID,
				Title:    item.Title,
				Composer: item.Composer,
				Position: item.Position,
			})
		}
	}

	if err := m.store.CreateAssignments(ctx, newAssignments); err != nil {
		return fmt.Errorf("copy assignments: %w", err)
	}
	if err := m.store.CreateMusicItems(ctx, newItems); err != nil {
		return fmt.Errorf("copy music list: %w", err)
	}
	return nil
}

// occurrenceFromRoot builds one occurrence record for the given instant. The
// recurrence pattern itself is never copied onto occurrences. The root's
// status carries over, so materializing against a cancelled root does not
// resurrect it as confirmed.
func occurrenceFromRoot(root *models.Event, start time.Time) *models.Event {
	status := root.Status
	if status == "" {
		status = models.StatusConfirmed
	}
	occ := &models.Event{
		ID:            uuid.New(),
		ChurchID:      root.ChurchID,
		CategoryID:    root.CategoryID,
		Name:          root.Name,
		Description:   root.Description,
		Location:      root.Location,
		StartTime:     start,
		GeneratedFrom: &root.ID,
		ParentID:      &root.ID,
		Status:        status,
	}
	if root.EndTime != nil {
		end := start.Add(root.Duration())
		occ.EndTime = &end
	}
	return occ
}
