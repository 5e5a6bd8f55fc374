package repository

import (
	"context"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
)

const carerColumns = `id, first_name, last_name, email, phone, is_active, created_at, version`

func scanCarer(row rowScanner) (*domain.Carer, error) {
	c := &domain.Carer{}
	dst := []any{&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.IsActive, &c.CreatedAt, &c.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) GetAllCarers(ctx context.Context, activeOnly bool) ([]*domain.Carer, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + carerColumns + ` FROM carers WHERE ($1 = false OR is_active) ORDER BY last_name, first_name`

	rows, err := r.dbpool.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	carers := make([]*domain.Carer, 0)
	for rows.Next() {
		c, err := scanCarer(rows)
		if err != nil {
			return nil, err
		}
		carers = append(carers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return carers, nil
}

func (r *Repository) GetCarerByID(ctx context.Context, id int64) (*domain.Carer, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanCarer(r.dbpool.QueryRowContext(ctx, `SELECT `+carerColumns+` FROM carers WHERE id = $1`, id))
}

func (r *Repository) CreateCarer(ctx context.Context, c *domain.Carer) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO carers (first_name, last_name, email, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, created_at, version
	`

	args := []any{c.FirstName, c.LastName, c.Email, c.Phone}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.IsActive, &c.CreatedAt, &c.Version)
}

func (r *Repository) UpdateCarer(ctx context.Context, c *domain.Carer) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE carers
		SET
			first_name = $1,
			last_name = $2,
			email = $3,
			phone = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{c.FirstName, c.LastName, c.Email, c.Phone, c.IsActive, c.ID, c.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.Version)
}

func (r *Repository) DeleteCarer(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM carers WHERE id = $1`, id)
	return err
}
