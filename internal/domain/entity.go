// Package domain defines the core entities of the networking group and the
// lifecycle rules that govern them.
package domain

import "time"

// Entity provides the identity and audit fields shared by every stored record.
// Records in this system are never hard-deleted, so there is no tombstone.
type Entity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (e *Entity) InitTimestamps(now time.Time) {
	e.CreatedAt = now
	e.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp.
// Call this whenever the underlying entity changes.
func (e *Entity) Touch(now time.Time) {
	e.UpdatedAt = now
}
