package repository

import (
	"context"
	"database/sql"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
)

const lineItemColumns = `
	id, category, description, code, time_from, time_to,
	applies_weekday, applies_saturday, applies_sunday, is_sleepover,
	billed_rate, created_at, version
`

func scanLineItem(row rowScanner) (*domain.LineItem, error) {
	it := &domain.LineItem{}
	var timeFrom, timeTo sql.NullString

	dst := []any{
		&it.ID,
		&it.Category,
		&it.Description,
		&it.Code,
		&timeFrom,
		&timeTo,
		&it.AppliesWeekday,
		&it.AppliesSaturday,
		&it.AppliesSunday,
		&it.IsSleepover,
		&it.BilledRate,
		&it.CreatedAt,
		&it.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	var err error
	if it.TimeFrom, err = timeOfDayFromNull(timeFrom); err != nil {
		return nil, err
	}
	if it.TimeTo, err = timeOfDayFromNull(timeTo); err != nil {
		return nil, err
	}

	return it, nil
}

func timeOfDayFromNull(s sql.NullString) (*billing.TimeOfDay, error) {
	if !s.Valid {
		return nil, nil
	}
	// postgres renders 24:00 as "24:00:00", which ParseTimeOfDay accepts
	t, err := billing.ParseTimeOfDay(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func timeOfDayToNull(t *billing.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func (r *Repository) queryLineItems(ctx context.Context, query string, args ...any) ([]*domain.LineItem, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.LineItem, 0)
	for rows.Next() {
		it, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetAllLineItems(ctx context.Context) ([]*domain.LineItem, error) {
	return r.queryLineItems(ctx, `SELECT `+lineItemColumns+` FROM line_items ORDER BY category, time_from NULLS FIRST, id`)
}

func (r *Repository) GetLineItemsByCategory(ctx context.Context, category string) ([]*domain.LineItem, error) {
	return r.queryLineItems(ctx, `SELECT `+lineItemColumns+` FROM line_items WHERE category = $1 ORDER BY time_from NULLS FIRST, id`, category)
}

func (r *Repository) GetLineItemByID(ctx context.Context, id int64) (*domain.LineItem, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanLineItem(r.dbpool.QueryRowContext(ctx, `SELECT `+lineItemColumns+` FROM line_items WHERE id = $1`, id))
}

func (r *Repository) GetLineItemCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, `SELECT DISTINCT category FROM line_items ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *Repository) CreateLineItem(ctx context.Context, it *domain.LineItem) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO line_items (
			category, description, code, time_from, time_to,
			applies_weekday, applies_saturday, applies_sunday, is_sleepover, billed_rate
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`

	args := []any{
		it.Category,
		it.Description,
		it.Code,
		timeOfDayToNull(it.TimeFrom),
		timeOfDayToNull(it.TimeTo),
		it.AppliesWeekday,
		it.AppliesSaturday,
		it.AppliesSunday,
		it.IsSleepover,
		it.BilledRate,
	}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&it.ID, &it.CreatedAt, &it.Version)
}

func (r *Repository) UpdateLineItem(ctx context.Context, it *domain.LineItem) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE line_items
		SET
			category = $1,
			description = $2,
			code = $3,
			time_from = $4,
			time_to = $5,
			applies_weekday = $6,
			applies_saturday = $7,
			applies_sunday = $8,
			is_sleepover = $9,
			billed_rate = $10,
			version = version + 1
		WHERE id = $11 AND version = $12
		RETURNING version
	`

	args := []any{
		it.Category,
		it.Description,
		it.Code,
		timeOfDayToNull(it.TimeFrom),
		timeOfDayToNull(it.TimeTo),
		it.AppliesWeekday,
		it.AppliesSaturday,
		it.AppliesSunday,
		it.IsSleepover,
		it.BilledRate,
		it.ID,
		it.Version,
	}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&it.Version)
}

func (r *Repository) DeleteLineItem(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM line_items WHERE id = $1`, id)
	return err
}
