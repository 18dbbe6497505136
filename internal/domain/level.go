package domain

import (
	"context"
	"time"
)

// UnlimitedSlots is returned by AvailableSlots when a level has no capacity
// limit (slots_total is null).
const UnlimitedSlots = -1

// SponsorshipLevel is a named capacity tier scoped to one event.
// SlotsTotal nil means unlimited capacity. SlotsFilled is adjusted only
// through LevelRepository.Increment and Decrement.
// swagger:model SponsorshipLevel
type SponsorshipLevel struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Value       float64   `json:"value"`
	SlotsTotal  *int      `json:"slots_total"`
	SlotsFilled int       `json:"slots_filled"`
	Recognition string    `json:"recognition"`
	SortOrder   int       `json:"sort_order"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSponsorshipLevel returns a new level with the given fields. ID is set by
// the repository on create.
func NewSponsorshipLevel(eventID, name, color string, value float64, slotsTotal *int, recognition string, sortOrder int, createdAt, updatedAt time.Time) *SponsorshipLevel {
	return &SponsorshipLevel{
		EventID:     eventID,
		Name:        name,
		Color:       color,
		Value:       value,
		SlotsTotal:  slotsTotal,
		Recognition: recognition,
		SortOrder:   sortOrder,
		Enabled:     true,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// LevelFields carries the caller-editable attributes for create and update.
// Nil pointer fields are left unchanged on update.
type LevelFields struct {
	Name        *string
	Color       *string
	Value       *float64
	SlotsTotal  *int
	ClearSlots  bool // set slots_total to null (unlimited)
	Recognition *string
	SortOrder   *int
	Enabled     *bool
}

// LevelRepository defines storage operations for sponsorship levels.
// Increment must be atomic with respect to the capacity check: it returns
// ErrCapacityExhausted without mutating when the level is full. Decrement
// clamps at zero.
type LevelRepository interface {
	Create(ctx context.Context, level *SponsorshipLevel) error
	GetByID(ctx context.Context, id string) (*SponsorshipLevel, error)
	Update(ctx context.Context, level *SponsorshipLevel) error
	Delete(ctx context.Context, id string) error
	ListByEventID(ctx context.Context, eventID string) ([]*SponsorshipLevel, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	Increment(ctx context.Context, id string) error
	Decrement(ctx context.Context, id string) error
}

// LevelService defines the business logic for the level registry.
type LevelService interface {
	SaveLevel(ctx context.Context, levelID, eventID string, fields LevelFields) (*SponsorshipLevel, error)
	GetLevel(ctx context.Context, levelID string) (*SponsorshipLevel, error)
	ListEventLevels(ctx context.Context, eventID string) ([]*SponsorshipLevel, error)
	DeleteLevel(ctx context.Context, levelID string) error
	PopulateDefaults(ctx context.Context, eventID string) ([]*SponsorshipLevel, error)
	AvailableSlots(ctx context.Context, levelID string) (int, error)
}
