package domain

import "github.com/google/uuid"

// NewID returns a time-ordered identifier. Version 7 UUIDs sort by creation
// time, which keeps ids monotonic within a process.
func NewID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}
