package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sponsorengine/internal/domain"
)

type eoiService struct {
	eoiRepo        domain.EOIRepository
	levelRepo      domain.LevelRepository
	linkRepo       domain.LinkRepository
	sponsorRepo    domain.SponsorRepository
	eventRepo      domain.EventRepository
	emailService   domain.EmailService
	contextTimeout time.Duration
}

func NewEOIService(eoiRepo domain.EOIRepository,
	levelRepo domain.LevelRepository,
	linkRepo domain.LinkRepository,
	sponsorRepo domain.SponsorRepository,
	eventRepo domain.EventRepository,
	emailService domain.EmailService,
	timeout time.Duration,
) domain.EOIService {
	return &eoiService{
		eoiRepo:        eoiRepo,
		levelRepo:      levelRepo,
		linkRepo:       linkRepo,
		sponsorRepo:    sponsorRepo,
		eventRepo:      eventRepo,
		emailService:   emailService,
		contextTimeout: timeout,
	}
}

func (s *eoiService) Submit(ctx context.Context, sponsorID, eventID, preferredLevel string, disclosures json.RawMessage) (*domain.EOI, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if sponsorID == "" || eventID == "" {
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

	eoi := domain.NewEOI(sponsorID, eventID, preferredLevel, disclosures, time.Now())
	if err := s.eoiRepo.Create(ctx, eoi); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create eoi: %w", err)
	}
	return eoi, nil
}

// Approve transitions an EOI to approved, taking a slot on the given level
// (when one is supplied) and linking the sponsor to the event. Approving an
// already-approved EOI is a no-op. The slot is taken before the status is
// written, so a full level fails the whole transition; later failures give
// the slot and link back before returning.
func (s *eoiService) Approve(ctx context.Context, eoiID string, levelID *string, reviewerID string) (*domain.EOI, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	eoi, err := s.eoiRepo.GetByID(ctx, eoiID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get eoi: %w", err)
	}
	if eoi.Status == domain.EOIStatusApproved {
		return eoi, false, nil
	}

	if levelID != nil {
		level, err := s.levelRepo.GetByID(ctx, *levelID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, false, domain.ErrNotFound
			}
			return nil, false, fmt.Errorf("get level: %w", err)
		}
		if level.EventID != eoi.EventID {
			return nil, false, domain.ErrInvalidInput
		}
		if err := s.levelRepo.Increment(ctx, *levelID); err != nil {
			if errors.Is(err, domain.ErrCapacityExhausted) {
				return nil, false, domain.ErrCapacityExhausted
			}
			return nil, false, fmt.Errorf("increment level: %w", err)
		}
	}

	link := &domain.SponsorLink{
		EventID:   eoi.EventID,
		SponsorID: eoi.SponsorID,
		LevelID:   levelID,
		LinkedAt:  time.Now(),
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		s.releaseSlot(ctx, levelID)
		if errors.Is(err, domain.ErrConflict) {
			return nil, false, domain.ErrConflict
		}
		return nil, false, fmt.Errorf("create link: %w", err)
	}

	updated, err := s.eoiRepo.UpdateReview(ctx, eoiID, domain.EOIReview{
		Status:     domain.EOIStatusApproved,
		LevelID:    levelID,
		ReviewerID: reviewerID,
		ReviewedAt: time.Now(),
	})
	if err != nil {
		// Give back the side effects so the pair is not left linked with the
		// EOI still pending.
		if delErr := s.linkRepo.Delete(ctx, eoi.SponsorID, eoi.EventID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			log.Printf("[EOI] failed to undo link for eoi %s after review write failure: %v", eoiID, delErr)
		}
		s.releaseSlot(ctx, levelID)
		return nil, false, fmt.Errorf("update eoi review: %w", err)
	}

	s.notifyDecision(ctx, updated, "")
	return updated, true, nil
}

// Reject transitions an EOI to rejected. A previously approved EOI is fully
// reversed first: the assigned level's slot is released and the link removed.
// Rejecting an already-rejected EOI is a no-op, which is what keeps repeated
// clicks from double-decrementing.
func (s *eoiService) Reject(ctx context.Context, eoiID, reason, reviewerID string) (*domain.EOI, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	eoi, err := s.eoiRepo.GetByID(ctx, eoiID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get eoi: %w", err)
	}
	if eoi.Status == domain.EOIStatusRejected {
		return eoi, false, nil
	}

	if eoi.Status == domain.EOIStatusApproved {
		// Delete the link before releasing the slot. If the delete fails the
		// reversal is left fully unapplied and a retry starts from scratch;
		// releasing first would let a retried Reject decrement twice.
		if err := s.linkRepo.Delete(ctx, eoi.SponsorID, eoi.EventID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("remove link: %w", err)
		}
		s.releaseSlot(ctx, eoi.LevelID)
	}

	updated, err := s.eoiRepo.UpdateReview(ctx, eoiID, domain.EOIReview{
		Status:      domain.EOIStatusRejected,
		ReviewerID:  reviewerID,
		ReviewedAt:  time.Now(),
		ReviewNotes: reason,
	})
	if err != nil {
		return nil, false, fmt.Errorf("update eoi review: %w", err)
	}

	s.notifyDecision(ctx, updated, reason)
	return updated, true, nil
}

func (s *eoiService) RequestInfo(ctx context.Context, eoiID, message, reviewerID string) (*domain.EOI, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if message == "" {
		return nil, domain.ErrInvalidInput
	}
	eoi, err := s.eoiRepo.GetByID(ctx, eoiID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get eoi: %w", err)
	}

	updated, err := s.eoiRepo.UpdateReview(ctx, eoiID, domain.EOIReview{
		Status:      domain.EOIStatusInfoRequested,
		LevelID:     eoi.LevelID,
		ReviewerID:  reviewerID,
		ReviewedAt:  time.Now(),
		ReviewNotes: message,
	})
	if err != nil {
		return nil, fmt.Errorf("update eoi review: %w", err)
	}

	if sponsor, event, ok := s.lookupParties(ctx, updated); ok {
		data := &domain.InfoRequestEmailData{
			Email:       sponsor.ContactEmail,
			SponsorName: sponsor.Name,
			EventName:   event.Name,
			Message:     message,
		}
		if err := s.emailService.SendInfoRequest(ctx, data); err != nil {
			log.Printf("[EOI] info request email failed for eoi %s: %v", updated.ID, err)
		}
	}
	return updated, nil
}

func (s *eoiService) GetEOI(ctx context.Context, eoiID string) (*domain.EOI, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	eoi, err := s.eoiRepo.GetByID(ctx, eoiID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get eoi: %w", err)
	}
	return eoi, nil
}

func (s *eoiService) ListEventEOIs(ctx context.Context, eventID string) ([]*domain.EOI, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	eois, err := s.eoiRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list eois: %w", err)
	}
	if eois == nil {
		eois = []*domain.EOI{}
	}
	return eois, nil
}

// BulkApply fans one action out over many EOIs. Each item is independent: an
// item that is already in the target state is reported as skipped, a failing
// item is reported with its error, and neither stops the rest of the batch.
func (s *eoiService) BulkApply(ctx context.Context, action string, eoiIDs []string, reviewerID string) (*domain.BulkResult, error) {
	if action != domain.BulkActionApprove && action != domain.BulkActionReject {
		return nil, domain.ErrInvalidInput
	}
	if len(eoiIDs) == 0 {
		return nil, domain.ErrInvalidInput
	}

	result := &domain.BulkResult{Items: make([]domain.BulkItemResult, 0, len(eoiIDs))}
	for _, id := range eoiIDs {
		var changed bool
		var err error
		switch action {
		case domain.BulkActionApprove:
			_, changed, err = s.Approve(ctx, id, nil, reviewerID)
		case domain.BulkActionReject:
			_, changed, err = s.Reject(ctx, id, "", reviewerID)
		}
		item := domain.BulkItemResult{EOIID: id}
		switch {
		case err != nil:
			item.Outcome = domain.BulkOutcomeError
			item.Message = err.Error()
			result.Failed++
		case !changed:
			item.Outcome = domain.BulkOutcomeSkipped
			result.Skipped++
		default:
			item.Outcome = domain.BulkOutcomeApplied
			result.Applied++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// releaseSlot decrements the level if one is set. Decrement clamps at zero,
// so releasing is tolerant of having nothing to release.
func (s *eoiService) releaseSlot(ctx context.Context, levelID *string) {
	if levelID == nil {
		return
	}
	if err := s.levelRepo.Decrement(ctx, *levelID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Printf("[EOI] failed to release slot on level %s: %v", *levelID, err)
	}
}

func (s *eoiService) lookupParties(ctx context.Context, eoi *domain.EOI) (*domain.Sponsor, *domain.Event, bool) {
	sponsor, err := s.sponsorRepo.GetByID(ctx, eoi.SponsorID)
	if err != nil || sponsor.ContactEmail == "" {
		return nil, nil, false
	}
	event, err := s.eventRepo.GetByID(ctx, eoi.EventID)
	if err != nil {
		return nil, nil, false
	}
	return sponsor, event, true
}

// notifyDecision sends the approval or rejection email. Failure is logged and
// never fails the transition.
func (s *eoiService) notifyDecision(ctx context.Context, eoi *domain.EOI, reason string) {
	sponsor, event, ok := s.lookupParties(ctx, eoi)
	if !ok {
		return
	}
	levelName := ""
	if eoi.LevelID != nil {
		if level, err := s.levelRepo.GetByID(ctx, *eoi.LevelID); err == nil {
			levelName = level.Name
		}
	}
	data := &domain.EOIDecisionEmailData{
		Email:       sponsor.ContactEmail,
		SponsorName: sponsor.Name,
		EventName:   event.Name,
		LevelName:   levelName,
		Reason:      reason,
	}
	var err error
	if eoi.Status == domain.EOIStatusApproved {
		err = s.emailService.SendEOIApproved(ctx, data)
	} else {
		err = s.emailService.SendEOIRejected(ctx, data)
	}
	if err != nil {
		log.Printf("[EOI] decision email failed for eoi %s: %v", eoi.ID, err)
	}
}
