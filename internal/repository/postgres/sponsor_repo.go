package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sponsorengine/internal/domain"
)

type sponsorRepository struct {
	DB *sql.DB
}

func NewSponsorRepository(db *sql.DB) domain.SponsorRepository {
	return &sponsorRepository{
		DB: db,
	}
}

func (r *sponsorRepository) GetByID(ctx context.Context, id string) (*domain.Sponsor, error) {
	query := `
		SELECT id, name, contact_email, created_at
		FROM sponsors
		WHERE id = $1
	`
	s := &domain.Sponsor{}
	var contactEmail sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&s.ID, &s.Name, &contactEmail, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	s.ContactEmail = contactEmail.String
	return s, nil
}

func (r *sponsorRepository) Search(ctx context.Context, query string, limit int) ([]*domain.Sponsor, error) {
	stmt := `
		SELECT id, name, contact_email, created_at
		FROM sponsors
		WHERE name ILIKE '%' || $1 || '%' OR contact_email ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`
	rows, err := r.DB.QueryContext(ctx, stmt, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sponsors := make([]*domain.Sponsor, 0)
	for rows.Next() {
		s := &domain.Sponsor{}
		var contactEmail sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &contactEmail, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.ContactEmail = contactEmail.String
		sponsors = append(sponsors, s)
	}
	return sponsors, rows.Err()
}
