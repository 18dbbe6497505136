package postgres

import (
	"context"
	"database/sql"
	"errors"

	"sponsorengine/internal/domain"
)

type levelRepository struct {
	DB *sql.DB
}

func NewLevelRepository(db *sql.DB) domain.LevelRepository {
	return &levelRepository{
		DB: db,
	}
}

func (r *levelRepository) Create(ctx context.Context, l *domain.SponsorshipLevel) error {
	query := `
		INSERT INTO sponsorship_levels (event_id, name, color, value, slots_total, slots_filled, recognition, sort_order, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	var slotsTotal sql.NullInt64
	if l.SlotsTotal != nil {
		slotsTotal = sql.NullInt64{Int64: int64(*l.SlotsTotal), Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		l.EventID, l.Name, l.Color, l.Value, slotsTotal, l.SlotsFilled,
		l.Recognition, l.SortOrder, l.Enabled, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
}

func (r *levelRepository) GetByID(ctx context.Context, id string) (*domain.SponsorshipLevel, error) {
	query := `
		SELECT id, event_id, name, color, value, slots_total, slots_filled, recognition, sort_order, enabled, created_at, updated_at
		FROM sponsorship_levels
		WHERE id = $1
	`
	return r.scanLevel(r.DB.QueryRowContext(ctx, query, id))
}

func (r *levelRepository) scanLevel(row *sql.Row) (*domain.SponsorshipLevel, error) {
	l := &domain.SponsorshipLevel{}
	var slotsTotal sql.NullInt64
	err := row.Scan(
		&l.ID, &l.EventID, &l.Name, &l.Color, &l.Value, &slotsTotal, &l.SlotsFilled,
		&l.Recognition, &l.SortOrder, &l.Enabled, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if slotsTotal.Valid {
		v := int(slotsTotal.Int64)
		l.SlotsTotal = &v
	}
	return l, nil
}

func (r *levelRepository) Update(ctx context.Context, l *domain.SponsorshipLevel) error {
	query := `
		UPDATE sponsorship_levels
		SET name = $2, color = $3, value = $4, slots_total = $5, recognition = $6, sort_order = $7, enabled = $8, updated_at = $9
		WHERE id = $1
	`
	var slotsTotal sql.NullInt64
	if l.SlotsTotal != nil {
		slotsTotal = sql.NullInt64{Int64: int64(*l.SlotsTotal), Valid: true}
	}
	result, err := r.DB.ExecContext(ctx, query,
		l.ID, l.Name, l.Color, l.Value, slotsTotal,
		l.Recognition, l.SortOrder, l.Enabled, l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *levelRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sponsorship_levels WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *levelRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.SponsorshipLevel, error) {
	query := `
		SELECT id, event_id, name, color, value, slots_total, slots_filled, recognition, sort_order, enabled, created_at, updated_at
		FROM sponsorship_levels
		WHERE event_id = $1
		ORDER BY sort_order, created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make([]*domain.SponsorshipLevel, 0)
	for rows.Next() {
		l := &domain.SponsorshipLevel{}
		var slotsTotal sql.NullInt64
		if err := rows.Scan(
			&l.ID, &l.EventID, &l.Name, &l.Color, &l.Value, &slotsTotal, &l.SlotsFilled,
			&l.Recognition, &l.SortOrder, &l.Enabled, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if slotsTotal.Valid {
			v := int(slotsTotal.Int64)
			l.SlotsTotal = &v
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

func (r *levelRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM sponsorship_levels WHERE event_id = $1`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Increment takes one slot. The capacity check and the mutation are a single
// statement, so two concurrent callers cannot both pass the check on the last
// slot.
func (r *levelRepository) Increment(ctx context.Context, id string) error {
	query := `
		UPDATE sponsorship_levels
		SET slots_filled = slots_filled + 1, updated_at = NOW()
		WHERE id = $1 AND (slots_total IS NULL OR slots_filled < slots_total)
	`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Zero rows means the level is missing or full; re-read to tell apart.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrCapacityExhausted
	}
	return nil
}

// Decrement releases one slot, clamped at zero so a double reversal cannot
// drive the counter negative.
func (r *levelRepository) Decrement(ctx context.Context, id string) error {
	query := `
		UPDATE sponsorship_levels
		SET slots_filled = GREATEST(slots_filled - 1, 0), updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
