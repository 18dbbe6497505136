package domain

import (
	"context"
	"time"
)

// Sponsor is an organisation that can express interest in, or be linked to,
// events. Sponsor records are managed elsewhere; this engine only reads them.
// swagger:model Sponsor
type Sponsor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	CreatedAt    time.Time `json:"created_at"`
}

// SponsorRepository defines read access to sponsor records. Search matches
// case-insensitively against name and contact email.
type SponsorRepository interface {
	GetByID(ctx context.Context, id string) (*Sponsor, error)
	Search(ctx context.Context, query string, limit int) ([]*Sponsor, error)
}

// SponsorService exposes sponsor lookup for pickers and autocomplete.
type SponsorService interface {
	Search(ctx context.Context, query string) ([]*Sponsor, error)
}
