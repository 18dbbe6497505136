package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EOI statuses. Pending is the initial state; approved and rejected are
// mutually convertible via re-review.
const (
	EOIStatusPending       = "pending"
	EOIStatusApproved      = "approved"
	EOIStatusRejected      = "rejected"
	EOIStatusInfoRequested = "info_requested"
)

// EOI is a sponsor's expression of interest in sponsoring one event.
// Disclosures are opaque to the engine and passed through unexamined.
// LevelID is the level assigned at approval time, if any; it is what a later
// rejection reverses.
// swagger:model EOI
type EOI struct {
	ID             string          `json:"id"`
	SponsorID      string          `json:"sponsor_id"`
	EventID        string          `json:"event_id"`
	Status         string          `json:"status"`
	PreferredLevel string          `json:"preferred_level"`
	LevelID        *string         `json:"level_id"`
	Disclosures    json.RawMessage `json:"disclosures"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	ReviewedAt     *time.Time      `json:"reviewed_at"`
	ReviewerID     string          `json:"reviewer_id"`
	ReviewNotes    string          `json:"review_notes"`
}

// NewEOI returns a pending EOI for the given sponsor and event. ID is set by
// the repository on create.
func NewEOI(sponsorID, eventID, preferredLevel string, disclosures json.RawMessage, submittedAt time.Time) *EOI {
	return &EOI{
		SponsorID:      sponsorID,
		EventID:        eventID,
		Status:         EOIStatusPending,
		PreferredLevel: preferredLevel,
		Disclosures:    disclosures,
		SubmittedAt:    submittedAt,
	}
}

// EOIReview carries the fields written by a review transition.
type EOIReview struct {
	Status      string
	LevelID     *string
	ReviewerID  string
	ReviewedAt  time.Time
	ReviewNotes string
}

// EOIRepository defines storage operations for expressions of interest.
// Create returns ErrConflict when an EOI already exists for the
// (sponsor, event) pair.
type EOIRepository interface {
	Create(ctx context.Context, eoi *EOI) error
	GetByID(ctx context.Context, id string) (*EOI, error)
	UpdateReview(ctx context.Context, id string, review EOIReview) (*EOI, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EOI, error)
}

// Bulk actions accepted by BulkApply.
const (
	BulkActionApprove = "approve"
	BulkActionReject  = "reject"
)

// Per-item outcomes of a bulk operation.
const (
	BulkOutcomeApplied = "applied"
	BulkOutcomeSkipped = "skipped"
	BulkOutcomeError   = "error"
)

// BulkItemResult is the outcome of one EOI within a bulk operation.
// swagger:model BulkItemResult
type BulkItemResult struct {
	EOIID   string `json:"eoi_id"`
	Outcome string `json:"outcome"`
	Message string `json:"message,omitempty"`
}

// BulkResult aggregates a bulk operation: per-item outcomes plus summary
// counts. A bulk operation never aborts on an item failure.
// swagger:model BulkResult
type BulkResult struct {
	Applied int              `json:"applied"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Items   []BulkItemResult `json:"items"`
}

// EOIService owns the EOI state machine and its side effects on the level
// registry and the linkage ledger. Approve and Reject report changed=false
// when the EOI was already in the target state.
type EOIService interface {
	Submit(ctx context.Context, sponsorID, eventID, preferredLevel string, disclosures json.RawMessage) (*EOI, error)
	Approve(ctx context.Context, eoiID string, levelID *string, reviewerID string) (eoi *EOI, changed bool, err error)
	Reject(ctx context.Context, eoiID, reason, reviewerID string) (eoi *EOI, changed bool, err error)
	RequestInfo(ctx context.Context, eoiID, message, reviewerID string) (*EOI, error)
	GetEOI(ctx context.Context, eoiID string) (*EOI, error)
	ListEventEOIs(ctx context.Context, eventID string) ([]*EOI, error)
	BulkApply(ctx context.Context, action string, eoiIDs []string, reviewerID string) (*BulkResult, error)
}
