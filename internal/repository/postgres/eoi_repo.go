package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sponsorengine/internal/domain"
)

type eoiRepository struct {
	DB *sql.DB
}

func NewEOIRepository(db *sql.DB) domain.EOIRepository {
	return &eoiRepository{
		DB: db,
	}
}

func (r *eoiRepository) Create(ctx context.Context, e *domain.EOI) error {
	query := `
		INSERT INTO sponsor_eois (sponsor_id, event_id, status, preferred_level, disclosures, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.SponsorID, e.EventID, e.Status, e.PreferredLevel, []byte(e.Disclosures), e.SubmittedAt,
	).Scan(&e.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *eoiRepository) GetByID(ctx context.Context, id string) (*domain.EOI, error) {
	query := `
		SELECT id, sponsor_id, event_id, status, preferred_level, level_id, disclosures, submitted_at, reviewed_at, reviewer_id, review_notes
		FROM sponsor_eois
		WHERE id = $1
	`
	return scanEOI(r.DB.QueryRowContext(ctx, query, id))
}

func scanEOI(row *sql.Row) (*domain.EOI, error) {
	e := &domain.EOI{}
	var levelID, reviewerID, reviewNotes sql.NullString
	var reviewedAt sql.NullTime
	var disclosures []byte
	err := row.Scan(
		&e.ID, &e.SponsorID, &e.EventID, &e.Status, &e.PreferredLevel,
		&levelID, &disclosures, &e.SubmittedAt, &reviewedAt, &reviewerID, &reviewNotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if levelID.Valid {
		e.LevelID = &levelID.String
	}
	if reviewedAt.Valid {
		e.ReviewedAt = &reviewedAt.Time
	}
	e.ReviewerID = reviewerID.String
	e.ReviewNotes = reviewNotes.String
	e.Disclosures = disclosures
	return e, nil
}

func (r *eoiRepository) UpdateReview(ctx context.Context, id string, review domain.EOIReview) (*domain.EOI, error) {
	query := `
		UPDATE sponsor_eois
		SET status = $2, level_id = $3, reviewer_id = $4, reviewed_at = $5, review_notes = $6
		WHERE id = $1
		RETURNING id, sponsor_id, event_id, status, preferred_level, level_id, disclosures, submitted_at, reviewed_at, reviewer_id, review_notes
	`
	var levelID sql.NullString
	if review.LevelID != nil {
		levelID = sql.NullString{String: *review.LevelID, Valid: true}
	}
	return scanEOI(r.DB.QueryRowContext(ctx, query,
		id, review.Status, levelID, review.ReviewerID, review.ReviewedAt, review.ReviewNotes,
	))
}

func (r *eoiRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.EOI, error) {
	query := `
		SELECT id, sponsor_id, event_id, status, preferred_level, level_id, disclosures, submitted_at, reviewed_at, reviewer_id, review_notes
		FROM sponsor_eois
		WHERE event_id = $1
		ORDER BY submitted_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	eois := make([]*domain.EOI, 0)
	for rows.Next() {
		e := &domain.EOI{}
		var levelID, reviewerID, reviewNotes sql.NullString
		var reviewedAt sql.NullTime
		var disclosures []byte
		if err := rows.Scan(
			&e.ID, &e.SponsorID, &e.EventID, &e.Status, &e.PreferredLevel,
			&levelID, &disclosures, &e.SubmittedAt, &reviewedAt, &reviewerID, &reviewNotes,
		); err != nil {
			return nil, err
		}
		if levelID.Valid {
			e.LevelID = &levelID.String
		}
		if reviewedAt.Valid {
			e.ReviewedAt = &reviewedAt.Time
		}
		e.ReviewerID = reviewerID.String
		e.ReviewNotes = reviewNotes.String
		e.Disclosures = disclosures
		eois = append(eois, e)
	}
	return eois, rows.Err()
}
