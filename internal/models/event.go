package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	StatusConfirmed EventStatus = "confirmed"
	StatusCancelled EventStatus = "cancelled"
)

// Event is either a root event (the user-authored series definition) or a
// concrete occurrence generated from one. Occurrences copy the root's
// descriptive fields at expansion time and carry a GeneratedFrom back-reference.
type Event struct {
	ID                uuid.UUID   `json:"id"`
	ChurchID          uuid.UUID   `json:"church_id"`
	CategoryID        *uuid.UUID  `json:"category_id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Location          string      `json:"location"`
	StartTime         time.Time   `json:"start_time"`
	EndTime           *time.Time  `json:"end_time"`
	RecurrencePattern string      `json:"recurrence_pattern"` // serialized pattern, empty = non-recurring
	IsRootEvent       bool        `json:"is_root_event"`
	GeneratedFrom     *uuid.UUID  `json:"generated_from"` // root event that produced this occurrence
	ParentID          *uuid.UUID  `json:"parent_id"`
	Customized        bool        `json:"customized"` // set when a user edits this occurrence directly
	Status            EventStatus `json:"status"`
	Sequence          int         `json:"sequence"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	Assignments []*Assignment `json:"assignments,omitempty"`
	MusicItems  []*MusicItem  `json:"music_items,omitempty"`
}

// IsRecurring returns true if this event is a series root with a recurrence pattern
func (e *Event) IsRecurring() bool {
	return e.IsRootEvent && e.RecurrencePattern != ""
}

// Duration returns the event length, or zero if the event has no end time
func (e *Event) Duration() time.Duration {
	if e.EndTime == nil {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}

func (e *Event) IsCancelled() bool {
	return e.Status == StatusCancelled
}
