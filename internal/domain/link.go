package domain

import (
	"context"
	"time"
)

// SponsorLink records that a sponsor is associated with an event, optionally
// at an assigned level. Links live in a single relation keyed by
// (sponsor_id, event_id); both the event-side and sponsor-side views are
// projections over that one relation, so the two sides cannot disagree.
// swagger:model SponsorLink
type SponsorLink struct {
	EventID   string    `json:"event_id"`
	SponsorID string    `json:"sponsor_id"`
	LevelID   *string   `json:"level_id"`
	LinkedAt  time.Time `json:"linked_at"`
}

// LinkRepository defines storage operations for sponsor-event links.
// Create returns ErrConflict when the pair is already linked; Delete returns
// ErrNotFound when it is not.
type LinkRepository interface {
	Create(ctx context.Context, link *SponsorLink) error
	Get(ctx context.Context, sponsorID, eventID string) (*SponsorLink, error)
	Delete(ctx context.Context, sponsorID, eventID string) error
	ListByEventID(ctx context.Context, eventID string) ([]*SponsorLink, error)
	ListBySponsorID(ctx context.Context, sponsorID string) ([]*SponsorLink, error)
	CountByLevelID(ctx context.Context, levelID string) (int, error)
}

// LinkService is the direct link/unlink API used when an administrator
// associates a sponsor with an event without a prior EOI. CreateLink applies
// the same capacity gate as an approval.
type LinkService interface {
	CreateLink(ctx context.Context, eventID, sponsorID string, levelID *string) (*SponsorLink, error)
	RemoveLink(ctx context.Context, eventID, sponsorID string) error
	ListForEvent(ctx context.Context, eventID string) ([]*SponsorLink, error)
	ListForSponsor(ctx context.Context, sponsorID string) ([]*SponsorLink, error)
}
