package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"sponsorengine/internal/domain"
)

// linkRepository stores sponsor-event links in a single relation keyed by
// (sponsor_id, event_id). Event-side and sponsor-side listings are queries
// over the same rows, so they cannot diverge.
type linkRepository struct {
	DB *sql.DB
}

func NewLinkRepository(db *sql.DB) domain.LinkRepository {
	return &linkRepository{
		DB: db,
	}
}

func (r *linkRepository) Create(ctx context.Context, link *domain.SponsorLink) error {
	query := `
		INSERT INTO sponsor_event_links (sponsor_id, event_id, level_id, linked_at)
		VALUES ($1, $2, $3, $4)
	`
	var levelID sql.NullString
	if link.LevelID != nil {
		levelID = sql.NullString{String: *link.LevelID, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query, link.SponsorID, link.EventID, levelID, link.LinkedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *linkRepository) Get(ctx context.Context, sponsorID, eventID string) (*domain.SponsorLink, error) {
	query := `
		SELECT sponsor_id, event_id, level_id, linked_at
		FROM sponsor_event_links
		WHERE sponsor_id = $1 AND event_id = $2
	`
	link := &domain.SponsorLink{}
	var levelID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, sponsorID, eventID).
		Scan(&link.SponsorID, &link.EventID, &levelID, &link.LinkedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if levelID.Valid {
		link.LevelID = &levelID.String
	}
	return link, nil
}

func (r *linkRepository) Delete(ctx context.Context, sponsorID, eventID string) error {
	query := `DELETE FROM sponsor_event_links WHERE sponsor_id = $1 AND event_id = $2`
	result, err := r.DB.ExecContext(ctx, query, sponsorID, eventID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *linkRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.SponsorLink, error) {
	query := `
		SELECT sponsor_id, event_id, level_id, linked_at
		FROM sponsor_event_links
		WHERE event_id = $1
		ORDER BY linked_at DESC
	`
	return r.list(ctx, query, eventID)
}

func (r *linkRepository) ListBySponsorID(ctx context.Context, sponsorID string) ([]*domain.SponsorLink, error) {
	query := `
		SELECT sponsor_id, event_id, level_id, linked_at
		FROM sponsor_event_links
		WHERE sponsor_id = $1
		ORDER BY linked_at DESC
	`
	return r.list(ctx, query, sponsorID)
}

func (r *linkRepository) list(ctx context.Context, query string, arg string) ([]*domain.SponsorLink, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]*domain.SponsorLink, 0)
	for rows.Next() {
		link := &domain.SponsorLink{}
		var levelID sql.NullString
		if err := rows.Scan(&link.SponsorID, &link.EventID, &levelID, &link.LinkedAt); err != nil {
			return nil, err
		}
		if levelID.Valid {
			link.LevelID = &levelID.String
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (r *linkRepository) CountByLevelID(ctx context.Context, levelID string) (int, error) {
	query := `SELECT COUNT(*) FROM sponsor_event_links WHERE level_id = $1`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, levelID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
