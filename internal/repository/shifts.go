package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/shopspring/decimal"
)

const shiftColumns = `
	id, carer_id, client_id, category, shift_date, start_time, end_time,
	manual_cost, total_cost, notes, calendar_event_id, created_at, version
`

func scanShift(row rowScanner) (*domain.Shift, error) {
	s := &domain.Shift{}
	var manualCost decimal.NullDecimal

	dst := []any{
		&s.ID,
		&s.CarerID,
		&s.ClientID,
		&s.Category,
		&s.ShiftDate,
		&s.StartTime,
		&s.EndTime,
		&manualCost,
		&s.TotalCost,
		&s.Notes,
		&s.CalendarEventID,
		&s.CreatedAt,
		&s.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	if manualCost.Valid {
		s.ManualCost = &manualCost.Decimal
	}

	return s, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (r *Repository) GetShifts(ctx context.Context, filter domain.ShiftFilter) ([]*domain.Shift, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !filter.From.IsZero() {
		add("shift_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("shift_date <= $%d", filter.To)
	}
	if filter.CarerID != nil {
		add("carer_id = $%d", *filter.CarerID)
	}
	if filter.ClientID != nil {
		add("client_id = $%d", *filter.ClientID)
	}

	query := `SELECT ` + shiftColumns + ` FROM shifts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_time, id`

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanShift(r.dbpool.QueryRowContext(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id))
}

func (r *Repository) CreateShift(ctx context.Context, s *domain.Shift) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO shifts (carer_id, client_id, category, shift_date, start_time, end_time, manual_cost, total_cost, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version
	`

	args := []any{
		s.CarerID,
		s.ClientID,
		s.Category,
		s.ShiftDate,
		s.StartTime,
		s.EndTime,
		nullDecimal(s.ManualCost),
		s.TotalCost,
		s.Notes,
	}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.Version)
}

func (r *Repository) UpdateShift(ctx context.Context, s *domain.Shift) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE shifts
		SET
			carer_id = $1,
			client_id = $2,
			category = $3,
			shift_date = $4,
			start_time = $5,
			end_time = $6,
			manual_cost = $7,
			total_cost = $8,
			notes = $9,
			version = version + 1
		WHERE id = $10 AND version = $11
		RETURNING version
	`

	args := []any{
		s.CarerID,
		s.ClientID,
		s.Category,
		s.ShiftDate,
		s.StartTime,
		s.EndTime,
		nullDecimal(s.ManualCost),
		s.TotalCost,
		s.Notes,
		s.ID,
		s.Version,
	}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.Version)
}

// SetShiftCalendarEventID records the calendar event a shift was pushed to.
// It does not bump the version so a concurrent edit is not invalidated.
func (r *Repository) SetShiftCalendarEventID(ctx context.Context, id int64, eventID string) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `UPDATE shifts SET calendar_event_id = $1 WHERE id = $2`, eventID, id)
	return err
}

func (r *Repository) DeleteShift(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1`, id)
	return err
}
