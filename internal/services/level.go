package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sponsorengine/internal/domain"
)

type levelService struct {
	levelRepo      domain.LevelRepository
	eventRepo      domain.EventRepository
	linkRepo       domain.LinkRepository
	contextTimeout time.Duration
}

func NewLevelService(levelRepo domain.LevelRepository,
	eventRepo domain.EventRepository,
	linkRepo domain.LinkRepository,
	timeout time.Duration,
) domain.LevelService {
	return &levelService{
		levelRepo:      levelRepo,
		eventRepo:      eventRepo,
		linkRepo:       linkRepo,
		contextTimeout: timeout,
	}
}

// defaultLevel describes one seeded tier for PopulateDefaults.
type defaultLevel struct {
	name  string
	color string
	value float64
}

var defaultLevels = []defaultLevel{
	{name: "Gold", color: "#d4af37", value: 5000},
	{name: "Silver", color: "#c0c0c0", value: 2500},
	{name: "Bronze", color: "#cd7f32", value: 1000},
}

func (s *levelService) SaveLevel(ctx context.Context, levelID, eventID string, fields domain.LevelFields) (*domain.SponsorshipLevel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if levelID == "" {
		return s.createLevel(ctx, eventID, fields)
	}
	return s.updateLevel(ctx, levelID, fields)
}

func (s *levelService) createLevel(ctx context.Context, eventID string, fields domain.LevelFields) (*domain.SponsorshipLevel, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidInput
	}
	if fields.Name == nil || *fields.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if fields.SlotsTotal != nil && *fields.SlotsTotal < 0 {
		return nil, domain.ErrInvalidInput
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.SponsorshipEnabled {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	level := domain.NewSponsorshipLevel(eventID, *fields.Name, stringOr(fields.Color, ""),
		floatOr(fields.Value, 0), fields.SlotsTotal, stringOr(fields.Recognition, ""),
		intOr(fields.SortOrder, 0), now, now)
	if fields.Enabled != nil {
		level.Enabled = *fields.Enabled
	}
	if err := s.levelRepo.Create(ctx, level); err != nil {
		return nil, fmt.Errorf("create level: %w", err)
	}
	return level, nil
}

func (s *levelService) updateLevel(ctx context.Context, levelID string, fields domain.LevelFields) (*domain.SponsorshipLevel, error) {
	level, err := s.levelRepo.GetByID(ctx, levelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get level: %w", err)
	}
	if fields.Name != nil {
		if *fields.Name == "" {
			return nil, domain.ErrInvalidInput
		}
		level.Name = *fields.Name
	}
	if fields.Color != nil {
		level.Color = *fields.Color
	}
	if fields.Value != nil {
		level.Value = *fields.Value
	}
	if fields.ClearSlots {
		level.SlotsTotal = nil
	} else if fields.SlotsTotal != nil {
		// Shrinking capacity below the filled count would break the
		// slots_filled <= slots_total invariant.
		if *fields.SlotsTotal < level.SlotsFilled {
			return nil, domain.ErrConflict
		}
		level.SlotsTotal = fields.SlotsTotal
	}
	if fields.Recognition != nil {
		level.Recognition = *fields.Recognition
	}
	if fields.SortOrder != nil {
		level.SortOrder = *fields.SortOrder
	}
	if fields.Enabled != nil {
		level.Enabled = *fields.Enabled
	}
	level.UpdatedAt = time.Now()
	if err := s.levelRepo.Update(ctx, level); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update level: %w", err)
	}
	return level, nil
}

func (s *levelService) GetLevel(ctx context.Context, levelID string) (*domain.SponsorshipLevel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	level, err := s.levelRepo.GetByID(ctx, levelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get level: %w", err)
	}
	return level, nil
}

func (s *levelService) ListEventLevels(ctx context.Context, eventID string) ([]*domain.SponsorshipLevel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	levels, err := s.levelRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	if levels == nil {
		levels = []*domain.SponsorshipLevel{}
	}
	return levels, nil
}

// DeleteLevel refuses to delete a level that is in use: either slots are
// filled or links still reference it.
func (s *levelService) DeleteLevel(ctx context.Context, levelID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	level, err := s.levelRepo.GetByID(ctx, levelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get level: %w", err)
	}
	if level.SlotsFilled > 0 {
		return domain.ErrConflict
	}
	linked, err := s.linkRepo.CountByLevelID(ctx, levelID)
	if err != nil {
		return fmt.Errorf("count links for level: %w", err)
	}
	if linked > 0 {
		return domain.ErrConflict
	}
	if err := s.levelRepo.Delete(ctx, levelID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete level: %w", err)
	}
	return nil
}

// PopulateDefaults seeds the fixed Gold/Silver/Bronze tiers for an event that
// has none yet. Seeding twice is a conflict.
func (s *levelService) PopulateDefaults(ctx context.Context, eventID string) ([]*domain.SponsorshipLevel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.SponsorshipEnabled {
		return nil, domain.ErrInvalidInput
	}
	count, err := s.levelRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("count levels: %w", err)
	}
	if count > 0 {
		return nil, domain.ErrConflict
	}

	created := make([]*domain.SponsorshipLevel, 0, len(defaultLevels))
	for i, d := range defaultLevels {
		now := time.Now()
		level := domain.NewSponsorshipLevel(eventID, d.name, d.color, d.value, nil, "", i, now, now)
		if err := s.levelRepo.Create(ctx, level); err != nil {
			return nil, fmt.Errorf("create default level %s: %w", d.name, err)
		}
		created = append(created, level)
	}
	return created, nil
}

// AvailableSlots reports the remaining capacity, or domain.UnlimitedSlots for
// a level with no cap.
func (s *levelService) AvailableSlots(ctx context.Context, levelID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	level, err := s.levelRepo.GetByID(ctx, levelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("get level: %w", err)
	}
	if level.SlotsTotal == nil {
		return domain.UnlimitedSlots, nil
	}
	remaining := *level.SlotsTotal - level.SlotsFilled
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func stringOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

func floatOr(p *float64, fallback float64) float64 {
	if p != nil {
		return *p
	}
	return fallback
}

func intOr(p *int, fallback int) int {
	if p != nil {
		return *p
	}
	return fallback
}
