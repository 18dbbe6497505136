package domain

import (
	"context"
	"time"
)

// Event is a schedulable entity that may opt in to sponsorship.
// swagger:model Event
type Event struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	SponsorshipEnabled       bool      `json:"sponsorship_enabled"`
	SponsorshipLevelsEnabled bool      `json:"sponsorship_levels_enabled"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// EventRepository defines read access to event storage.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
}
