package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sponsorengine/internal/domain"
)

type linkService struct {
	linkRepo       domain.LinkRepository
	levelRepo      domain.LevelRepository
	sponsorRepo    domain.SponsorRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

func NewLinkService(linkRepo domain.LinkRepository,
	levelRepo domain.LevelRepository,
	sponsorRepo domain.SponsorRepository,
	eventRepo domain.EventRepository,
	timeout time.Duration,
) domain.LinkService {
	return &linkService{
		linkRepo:       linkRepo,
		levelRepo:      levelRepo,
		sponsorRepo:    sponsorRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

// CreateLink associates a sponsor with an event without an EOI. It applies
// the same capacity gate as an approval: the slot is taken atomically before
// the link row is written, and given back if the write conflicts.
func (s *linkService) CreateLink(ctx context.Context, eventID, sponsorID string, levelID *string) (*domain.SponsorLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if eventID == "" || sponsorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.sponsorRepo.GetByID(ctx, sponsorID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sponsor: %w", err)
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

	if levelID != nil {
		level, err := s.levelRepo.GetByID(ctx, *levelID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, fmt.Errorf("get level: %w", err)
		}
		if level.EventID != eventID {
			return nil, domain.ErrInvalidInput
		}
		if err := s.levelRepo.Increment(ctx, *levelID); err != nil {
			if errors.Is(err, domain.ErrCapacityExhausted) {
				return nil, domain.ErrCapacityExhausted
			}
			return nil, fmt.Errorf("increment level: %w", err)
		}
	}

	link := &domain.SponsorLink{
		EventID:   eventID,
		SponsorID: sponsorID,
		LevelID:   levelID,
		LinkedAt:  time.Now(),
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		if levelID != nil {
			if decErr := s.levelRepo.Decrement(ctx, *levelID); decErr != nil && !errors.Is(decErr, domain.ErrNotFound) {
				return nil, fmt.Errorf("release slot after link failure: %w", decErr)
			}
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create link: %w", err)
	}
	return link, nil
}

// RemoveLink removes the association and releases the assigned level's slot,
// if any. The ledger itself never touches slot counts; this orchestration is
// what pairs the two.
func (s *linkService) RemoveLink(ctx context.Context, eventID, sponsorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	link, err := s.linkRepo.Get(ctx, sponsorID, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get link: %w", err)
	}
	if err := s.linkRepo.Delete(ctx, sponsorID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete link: %w", err)
	}
	if link.LevelID != nil {
		if err := s.levelRepo.Decrement(ctx, *link.LevelID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("release slot: %w", err)
		}
	}
	return nil
}

func (s *linkService) ListForEvent(ctx context.Context, eventID string) ([]*domain.SponsorLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	links, err := s.linkRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list links for event: %w", err)
	}
	if links == nil {
		links = []*domain.SponsorLink{}
	}
	return links, nil
}

func (s *linkService) ListForSponsor(ctx context.Context, sponsorID string) ([]*domain.SponsorLink, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	links, err := s.linkRepo.ListBySponsorID(ctx, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("list links for sponsor: %w", err)
	}
	if links == nil {
		links = []*domain.SponsorLink{}
	}
	return links, nil
}
