package model

import "time"

// Item is the object handed to API and CLI callers.
// It is a pure domain model with no storage-specific fields.
type Item struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// ItemEntity is the representation held by repositories.
// SyncedAt records when the entity was last received from the authoritative store.
type ItemEntity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updated_at"`
	SyncedAt  time.Time `json:"synced_at,omitempty"`
}
