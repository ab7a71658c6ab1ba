package series

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/parishplan/parishplan/internal/models"
)

// MockStore implements Store for testing.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetRoot(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockStore) LatestOccurrence(ctx context.Context, rootID uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

// CreateOccurrences reports every row as inserted unless the expectation
// supplies an explicit id list.
func (m *MockStore) CreateOccurrences(ctx context.Context, events []*models.Event) ([]uuid.UUID, error) {
	args := m.Called(ctx, events)
	if args.Get(0) == nil {
		if args.Error(1) != nil {
			return nil, args.Error(1)
		}
		ids := make([]uuid.UUID, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		return ids, nil
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockStore) DeleteFutureGenerated(ctx context.Context, rootID uuid.UUID, after time.Time) (int64, error) {
	args := m.Called(ctx, rootID, after)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) CancelFutureGenerated(ctx context.Context, rootID uuid.UUID, after time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, rootID, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockStore) ListAssignments(ctx context.Context, eventID uuid.UUID) ([]*models.Assignment, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Assignment), args.Error(1)
}

func (m *MockStore) CreateAssignments(ctx context.Context, assignments []*models.Assignment) error {
	args := m.Called(ctx, assignments)
	return args.Error(0)
}

func (m *MockStore) ListMusicItems(ctx context.Context, eventID uuid.UUID) ([]*models.MusicItem, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MusicItem), args.Error(1)
}

func (m *MockStore) CreateMusicItems(ctx context.Context, items []*models.MusicItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockStore) EnqueueOutbox(ctx context.Context, entries []*models.OutboxEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}
