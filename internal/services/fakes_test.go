package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sponsorengine/internal/domain"
)

// fakeLevelRepo is an in-memory LevelRepository. Increment and Decrement
// take the mutex around the whole check-and-mutate, mirroring the atomic
// UPDATE the real repository issues.
type fakeLevelRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.SponsorshipLevel
	nextID    int
	createErr error
	updateErr error
	deleteErr error
}

func newFakeLevelRepo() *fakeLevelRepo {
	return &fakeLevelRepo{
		byID:   make(map[string]*domain.SponsorshipLevel),
		nextID: 1,
	}
}

func (f *fakeLevelRepo) add(l *domain.SponsorshipLevel) *domain.SponsorshipLevel {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = fmt.Sprintf("lvl-%d", f.nextID)
	f.nextID++
	f.byID[l.ID] = l
	return l
}

func (f *fakeLevelRepo) Create(ctx context.Context, l *domain.SponsorshipLevel) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(l)
	return nil
}

func (f *fakeLevelRepo) GetByID(ctx context.Context, id string) (*domain.SponsorshipLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.byID[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLevelRepo) Update(ctx context.Context, l *domain.SponsorshipLevel) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[l.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *l
	f.byID[l.ID] = &cp
	return nil
}

func (f *fakeLevelRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeLevelRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.SponsorshipLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.SponsorshipLevel
	for _, l := range f.byID {
		if l.EventID == eventID {
			cp := *l
			out = append(out, &cp)
		}
	}
	// Sort by SortOrder to match repo ordering.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SortOrder < out[i].SortOrder {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeLevelRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, l := range f.byID {
		if l.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLevelRepo) Increment(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.SlotsTotal != nil && l.SlotsFilled >= *l.SlotsTotal {
		return domain.ErrCapacityExhausted
	}
	l.SlotsFilled++
	return nil
}

func (f *fakeLevelRepo) Decrement(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	if l.SlotsFilled > 0 {
		l.SlotsFilled--
	}
	return nil
}

func (f *fakeLevelRepo) filled(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].SlotsFilled
}

// fakeLinkRepo is an in-memory LinkRepository keyed by (sponsor, event).
type fakeLinkRepo struct {
	mu        sync.Mutex
	byPair    map[string]*domain.SponsorLink
	createErr error
	deleteErr error
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{byPair: make(map[string]*domain.SponsorLink)}
}

func pairKey(sponsorID, eventID string) string {
	return sponsorID + "|" + eventID
}

func (f *fakeLinkRepo) Create(ctx context.Context, link *domain.SponsorLink) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey(link.SponsorID, link.EventID)
	if _, ok := f.byPair[key]; ok {
		return domain.ErrConflict
	}
	cp := *link
	f.byPair[key] = &cp
	return nil
}

func (f *fakeLinkRepo) Get(ctx context.Context, sponsorID, eventID string) (*domain.SponsorLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if link, ok := f.byPair[pairKey(sponsorID, eventID)]; ok {
		cp := *link
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeLinkRepo) Delete(ctx context.Context, sponsorID, eventID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey(sponsorID, eventID)
	if _, ok := f.byPair[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byPair, key)
	return nil
}

func (f *fakeLinkRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.SponsorLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.SponsorLink
	for key, link := range f.byPair {
		if strings.HasSuffix(key, "|"+eventID) {
			cp := *link
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) ListBySponsorID(ctx context.Context, sponsorID string) ([]*domain.SponsorLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.SponsorLink
	for key, link := range f.byPair {
		if strings.HasPrefix(key, sponsorID+"|") {
			cp := *link
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) CountByLevelID(ctx context.Context, levelID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, link := range f.byPair {
		if link.LevelID != nil && *link.LevelID == levelID {
			count++
		}
	}
	return count, nil
}

func (f *fakeLinkRepo) has(sponsorID, eventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byPair[pairKey(sponsorID, eventID)]
	return ok
}

// fakeEOIRepo is an in-memory EOIRepository enforcing pair uniqueness.
type fakeEOIRepo struct {
	byID      map[string]*domain.EOI
	nextID    int
	createErr error
	updateErr error
}

func newFakeEOIRepo() *fakeEOIRepo {
	return &fakeEOIRepo{
		byID:   make(map[string]*domain.EOI),
		nextID: 1,
	}
}

func (f *fakeEOIRepo) add(e *domain.EOI) *domain.EOI {
	e.ID = fmt.Sprintf("eoi-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return e
}

func (f *fakeEOIRepo) Create(ctx context.Context, e *domain.EOI) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.SponsorID == e.SponsorID && existing.EventID == e.EventID {
			return domain.ErrConflict
		}
	}
	f.add(e)
	return nil
}

func (f *fakeEOIRepo) GetByID(ctx context.Context, id string) (*domain.EOI, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEOIRepo) UpdateReview(ctx context.Context, id string, review domain.EOIReview) (*domain.EOI, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Status = review.Status
	e.LevelID = review.LevelID
	e.ReviewerID = review.ReviewerID
	reviewedAt := review.ReviewedAt
	e.ReviewedAt = &reviewedAt
	e.ReviewNotes = review.ReviewNotes
	cp := *e
	return &cp, nil
}

func (f *fakeEOIRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.EOI, error) {
	var out []*domain.EOI
	for _, e := range f.byID {
		if e.EventID == eventID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeSponsorRepo is an in-memory SponsorRepository.
type fakeSponsorRepo struct {
	byID      map[string]*domain.Sponsor
	searchErr error
}

func newFakeSponsorRepo() *fakeSponsorRepo {
	return &fakeSponsorRepo{byID: make(map[string]*domain.Sponsor)}
}

func (f *fakeSponsorRepo) GetByID(ctx context.Context, id string) (*domain.Sponsor, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSponsorRepo) Search(ctx context.Context, query string, limit int) ([]*domain.Sponsor, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []*domain.Sponsor
	q := strings.ToLower(query)
	for _, s := range f.byID {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.ContactEmail), q) {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// fakeEventRepo is an in-memory EventRepository.
type fakeEventRepo struct {
	byID map[string]*domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEmailService records sends; err makes every send fail.
type fakeEmailService struct {
	approved     []*domain.EOIDecisionEmailData
	rejected     []*domain.EOIDecisionEmailData
	infoRequests []*domain.InfoRequestEmailData
	err          error
}

func (f *fakeEmailService) SendEOIApproved(ctx context.Context, data *domain.EOIDecisionEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.approved = append(f.approved, data)
	return nil
}

func (f *fakeEmailService) SendEOIRejected(ctx context.Context, data *domain.EOIDecisionEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.rejected = append(f.rejected, data)
	return nil
}

func (f *fakeEmailService) SendInfoRequest(ctx context.Context, data *domain.InfoRequestEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.infoRequests = append(f.infoRequests, data)
	return nil
}
