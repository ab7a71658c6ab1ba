package models

import (
	"time"

	"github.com/google/uuid"
)

// MusicItem is one entry on an event's service music list.
type MusicItem struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	Title     string    `json:"title"`
	Composer  string    `json:"composer"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
