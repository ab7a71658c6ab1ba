package repository

import "github.com/parishplan/parishplan/internal/database"

// Store bundles the per-aggregate repositories into one value satisfying the
// narrow store interfaces consumed by the series and feed packages.
type Store struct {
	*EventRepository
	*AssignmentRepository
	*MusicRepository
	*OutboxRepository
}

func NewStore(db *database.DB) *Store {
	return &Store{
		EventRepository:      NewEventRepository(db),
		AssignmentRepository: NewAssignmentRepository(db),
		MusicRepository:      NewMusicRepository(db),
		OutboxRepository:     NewOutboxRepository(db),
	}
}
