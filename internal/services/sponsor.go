package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sponsorengine/internal/domain"
)

// searchResultLimit caps autocomplete results.
const searchResultLimit = 10

// minSearchLength is the minimum query length for sponsor search.
const minSearchLength = 2

type sponsorService struct {
	sponsorRepo    domain.SponsorRepository
	contextTimeout time.Duration
}

func NewSponsorService(sponsorRepo domain.SponsorRepository, timeout time.Duration) domain.SponsorService {
	return &sponsorService{
		sponsorRepo:    sponsorRepo,
		contextTimeout: timeout,
	}
}

func (s *sponsorService) Search(ctx context.Context, query string) ([]*domain.Sponsor, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		return nil, domain.ErrInvalidInput
	}
	sponsors, err := s.sponsorRepo.Search(ctx, query, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search sponsors: %w", err)
	}
	if sponsors == nil {
		sponsors = []*domain.Sponsor{}
	}
	return sponsors, nil
}
