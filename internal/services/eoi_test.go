package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sponsorengine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eoiFixture struct {
	eois     *fakeEOIRepo
	levels   *fakeLevelRepo
	links    *fakeLinkRepo
	sponsors *fakeSponsorRepo
	events   *fakeEventRepo
	emails   *fakeEmailService
	svc      domain.EOIService
}

func newEOIFixture() *eoiFixture {
	f := &eoiFixture{
		eois:     newFakeEOIRepo(),
		levels:   newFakeLevelRepo(),
		links:    newFakeLinkRepo(),
		sponsors: newFakeSponsorRepo(),
		events:   newFakeEventRepo(),
		emails:   &fakeEmailService{},
	}
	f.svc = NewEOIService(f.eois, f.levels, f.links, f.sponsors, f.events, f.emails, 5*time.Second)
	f.sponsors.byID["sp-1"] = &domain.Sponsor{ID: "sp-1", Name: "Acme Corp", ContactEmail: "sponsor@acme.test"}
	f.events.byID["ev-1"] = &domain.Event{ID: "ev-1", Name: "GopherConf", SponsorshipEnabled: true, SponsorshipLevelsEnabled: true}
	return f
}

func (f *eoiFixture) seedLevel(t *testing.T, slotsTotal *int, slotsFilled int) *domain.SponsorshipLevel {
	t.Helper()
	now := time.Now()
	l := domain.NewSponsorshipLevel("ev-1", "Gold", "#d4af37", 5000, slotsTotal, "", 0, now, now)
	l.SlotsFilled = slotsFilled
	return f.levels.add(l)
}

func (f *eoiFixture) seedEOI(t *testing.T, status string) *domain.EOI {
	t.Helper()
	e := domain.NewEOI("sp-1", "ev-1", "Gold", nil, time.Now())
	e.Status = status
	return f.eois.add(e)
}

func intPtr(v int) *int { return &v }

func TestEOIService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending eoi", func(t *testing.T) {
		f := newEOIFixture()
		eoi, err := f.svc.Submit(ctx, "sp-1", "ev-1", "Gold", []byte(`{"website":"acme.test"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.EOIStatusPending, eoi.Status)
		assert.NotEmpty(t, eoi.ID)
		assert.Equal(t, "Gold", eoi.PreferredLevel)
	})

	t.Run("duplicate pair conflicts", func(t *testing.T) {
		f := newEOIFixture()
		_, err := f.svc.Submit(ctx, "sp-1", "ev-1", "", nil)
		require.NoError(t, err)
		_, err = f.svc.Submit(ctx, "sp-1", "ev-1", "", nil)
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("unknown sponsor", func(t *testing.T) {
		f := newEOIFixture()
		_, err := f.svc.Submit(ctx, "sp-missing", "ev-1", "", nil)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("sponsorship disabled", func(t *testing.T) {
		f := newEOIFixture()
		f.events.byID["ev-2"] = &domain.Event{ID: "ev-2", Name: "NoSponsors", SponsorshipEnabled: false}
		_, err := f.svc.Submit(ctx, "sp-1", "ev-2", "", nil)
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEOIService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("approves with level, takes slot, links, notifies", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 0)
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		updated, changed, err := f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.EOIStatusApproved, updated.Status)
		require.NotNil(t, updated.LevelID)
		assert.Equal(t, level.ID, *updated.LevelID)
		assert.Equal(t, "reviewer-1", updated.ReviewerID)
		assert.NotNil(t, updated.ReviewedAt)
		assert.Equal(t, 1, f.levels.filled(level.ID))
		assert.True(t, f.links.has("sp-1", "ev-1"))
		require.Len(t, f.emails.approved, 1)
		assert.Equal(t, "sponsor@acme.test", f.emails.approved[0].Email)
		assert.Equal(t, "Gold", f.emails.approved[0].LevelName)
	})

	t.Run("approve is idempotent", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 0)
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		_, changed, err := f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.NoError(t, err)
		assert.True(t, changed)

		_, changed, err = f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 1, f.levels.filled(level.ID))
		assert.Len(t, f.emails.approved, 1)
	})

	t.Run("full level fails the whole transition", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 3)
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		_, _, err := f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.ErrorIs(t, err, domain.ErrCapacityExhausted)
		assert.Equal(t, 3, f.levels.filled(level.ID))

		current, err := f.eois.GetByID(ctx, eoi.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EOIStatusPending, current.Status)
		assert.False(t, f.links.has("sp-1", "ev-1"))
	})

	t.Run("level from another event is rejected", func(t *testing.T) {
		f := newEOIFixture()
		now := time.Now()
		other := f.levels.add(domain.NewSponsorshipLevel("ev-other", "Gold", "", 0, nil, "", 0, now, now))
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		_, _, err := f.svc.Approve(ctx, eoi.ID, &other.ID, "reviewer-1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("existing link conflicts and releases the slot", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 0)
		eoi := f.seedEOI(t, domain.EOIStatusPending)
		require.NoError(t, f.links.Create(ctx, &domain.SponsorLink{SponsorID: "sp-1", EventID: "ev-1", LinkedAt: time.Now()}))

		_, _, err := f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, 0, f.levels.filled(level.ID))
	})

	t.Run("review write failure undoes slot and link", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 0)
		eoi := f.seedEOI(t, domain.EOIStatusPending)
		f.eois.updateErr = errors.New("db gone")

		_, _, err := f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.Error(t, err)
		assert.Equal(t, 0, f.levels.filled(level.ID))
		assert.False(t, f.links.has("sp-1", "ev-1"))
	})

	t.Run("missing eoi", func(t *testing.T) {
		f := newEOIFixture()
		_, _, err := f.svc.Approve(ctx, "eoi-missing", nil, "reviewer-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("notification failure does not fail the transition", func(t *testing.T) {
		f := newEOIFixture()
		f.emails.err = errors.New("smtp down")
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		updated, changed, err := f.svc.Approve(ctx, eoi.ID, nil, "reviewer-1")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.EOIStatusApproved, updated.Status)
	})
}

func TestEOIService_Reject(t *testing.T) {
	ctx := context.Background()

	t.Run("rejecting a pending eoi touches no slots or links", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 2)
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		updated, changed, err := f.svc.Reject(ctx, eoi.ID, "not a fit", "reviewer-1")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.EOIStatusRejected, updated.Status)
		assert.Equal(t, "not a fit", updated.ReviewNotes)
		assert.Equal(t, 2, f.levels.filled(level.ID))
		require.Len(t, f.emails.rejected, 1)
		assert.Equal(t, "not a fit", f.emails.rejected[0].Reason)
	})

	t.Run("reject after approve fully reverses once", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 1)
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		_, _, err := f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.NoError(t, err)
		assert.Equal(t, 2, f.levels.filled(level.ID))

		updated, changed, err := f.svc.Reject(ctx, eoi.ID, "changed our mind", "reviewer-1")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, domain.EOIStatusRejected, updated.Status)
		assert.Equal(t, 1, f.levels.filled(level.ID))
		assert.False(t, f.links.has("sp-1", "ev-1"))

		// A second reject must not decrement again.
		_, changed, err = f.svc.Reject(ctx, eoi.ID, "", "reviewer-1")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, 1, f.levels.filled(level.ID))
	})

	t.Run("failed reversal leaves slot untouched and a retry releases once", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 2)
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		_, _, err := f.svc.Approve(ctx, eoi.ID, &level.ID, "reviewer-1")
		require.NoError(t, err)
		assert.Equal(t, 3, f.levels.filled(level.ID))

		f.links.deleteErr = errors.New("connection reset")
		_, _, err = f.svc.Reject(ctx, eoi.ID, "", "reviewer-1")
		require.Error(t, err)
		assert.Equal(t, 3, f.levels.filled(level.ID))
		assert.True(t, f.links.has("sp-1", "ev-1"))

		f.links.deleteErr = nil
		_, changed, err := f.svc.Reject(ctx, eoi.ID, "", "reviewer-1")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 2, f.levels.filled(level.ID))
		assert.False(t, f.links.has("sp-1", "ev-1"))
	})

	t.Run("reject of approved eoi without level removes only the link", func(t *testing.T) {
		f := newEOIFixture()
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		_, _, err := f.svc.Approve(ctx, eoi.ID, nil, "reviewer-1")
		require.NoError(t, err)
		assert.True(t, f.links.has("sp-1", "ev-1"))

		_, _, err = f.svc.Reject(ctx, eoi.ID, "", "reviewer-1")
		require.NoError(t, err)
		assert.False(t, f.links.has("sp-1", "ev-1"))
	})

	t.Run("missing eoi", func(t *testing.T) {
		f := newEOIFixture()
		_, _, err := f.svc.Reject(ctx, "eoi-missing", "", "reviewer-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEOIService_RequestInfo(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps status and notes, no side effects", func(t *testing.T) {
		f := newEOIFixture()
		level := f.seedLevel(t, intPtr(3), 1)
		eoi := f.seedEOI(t, domain.EOIStatusPending)

		updated, err := f.svc.RequestInfo(ctx, eoi.ID, "please send your logo", "reviewer-1")
		require.NoError(t, err)
		assert.Equal(t, domain.EOIStatusInfoRequested, updated.Status)
		assert.Equal(t, "please send your logo", updated.ReviewNotes)
		assert.Equal(t, 1, f.levels.filled(level.ID))
		assert.False(t, f.links.has("sp-1", "ev-1"))
		require.Len(t, f.emails.infoRequests, 1)
		assert.Equal(t, "please send your logo", f.emails.infoRequests[0].Message)
	})

	t.Run("empty message is invalid", func(t *testing.T) {
		f := newEOIFixture()
		eoi := f.seedEOI(t, domain.EOIStatusPending)
		_, err := f.svc.RequestInfo(ctx, eoi.ID, "", "reviewer-1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEOIService_BulkApply(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid action", func(t *testing.T) {
		f := newEOIFixture()
		_, err := f.svc.BulkApply(ctx, "delete", []string{"eoi-1"}, "reviewer-1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty ids", func(t *testing.T) {
		f := newEOIFixture()
		_, err := f.svc.BulkApply(ctx, domain.BulkActionApprove, nil, "reviewer-1")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("mixes applied, skipped, and failed items", func(t *testing.T) {
		f := newEOIFixture()
		f.sponsors.byID["sp-2"] = &domain.Sponsor{ID: "sp-2", Name: "Globex"}
		pending := f.seedEOI(t, domain.EOIStatusPending)
		approved := f.eois.add(&domain.EOI{SponsorID: "sp-2", EventID: "ev-1", Status: domain.EOIStatusApproved})

		result, err := f.svc.BulkApply(ctx, domain.BulkActionApprove, []string{pending.ID, approved.ID, "eoi-missing"}, "reviewer-1")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Applied)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Items, 3)
		assert.Equal(t, domain.BulkOutcomeApplied, result.Items[0].Outcome)
		assert.Equal(t, domain.BulkOutcomeSkipped, result.Items[1].Outcome)
		assert.Equal(t, domain.BulkOutcomeError, result.Items[2].Outcome)
		assert.NotEmpty(t, result.Items[2].Message)

		current, err := f.eois.GetByID(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.EOIStatusApproved, current.Status)
	})
}

func TestEOIService_ConcurrentApprove(t *testing.T) {
	ctx := context.Background()
	f := newEOIFixture()
	f.sponsors.byID["sp-2"] = &domain.Sponsor{ID: "sp-2", Name: "Globex"}
	level := f.seedLevel(t, intPtr(1), 0)
	first := f.seedEOI(t, domain.EOIStatusPending)
	second := f.eois.add(&domain.EOI{SponsorID: "sp-2", EventID: "ev-1", Status: domain.EOIStatusPending})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, errs[0] = f.svc.Approve(ctx, first.ID, &level.ID, "reviewer-1")
	}()
	go func() {
		defer wg.Done()
		_, _, errs[1] = f.svc.Approve(ctx, second.ID, &level.ID, "reviewer-1")
	}()
	wg.Wait()

	succeeded := 0
	exhausted := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrCapacityExhausted):
			exhausted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, exhausted)
	assert.Equal(t, 1, f.levels.filled(level.ID))
}
