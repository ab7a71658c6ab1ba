package models

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentAccepted AssignmentStatus = "accepted"
	AssignmentDeclined AssignmentStatus = "declined"
)

// Assignment is one person serving in one role at one event.
type Assignment struct {
	ID        uuid.UUID        `json:"id"`
	EventID   uuid.UUID        `json:"event_id"`
	Role      string           `json:"role"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Status    AssignmentStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

func (a *Assignment) IsAccepted() bool {
	return a.Status == AssignmentAccepted
}

// DisplayName returns "First Last", tolerating a missing half
func (a *Assignment) DisplayName() string {
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
