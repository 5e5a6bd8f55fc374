package repository

import (
	"context"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
)

const clientColumns = `id, first_name, last_name, ndis_number, address, invoice_email, is_active, created_at, version`

func scanClient(row rowScanner) (*domain.Client, error) {
	c := &domain.Client{}
	dst := []any{&c.ID, &c.FirstName, &c.LastName, &c.NDISNumber, &c.Address, &c.InvoiceEmail, &c.IsActive, &c.CreatedAt, &c.Version}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repository) GetAllClients(ctx context.Context, activeOnly bool) ([]*domain.Client, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + clientColumns + ` FROM clients WHERE ($1 = false OR is_active) ORDER BY last_name, first_name`

	rows, err := r.dbpool.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *Repository) GetClientByID(ctx context.Context, id int64) (*domain.Client, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return scanClient(r.dbpool.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
}

func (r *Repository) CreateClient(ctx context.Context, c *domain.Client) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO clients (first_name, last_name, ndis_number, address, invoice_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_active, created_at, version
	`

	args := []any{c.FirstName, c.LastName, c.NDISNumber, c.Address, c.InvoiceEmail}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.IsActive, &c.CreatedAt, &c.Version)
}

func (r *Repository) UpdateClient(ctx context.Context, c *domain.Client) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE clients
		SET
			first_name = $1,
			last_name = $2,
			ndis_number = $3,
			address = $4,
			invoice_email = $5,
			is_active = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{c.FirstName, c.LastName, c.NDISNumber, c.Address, c.InvoiceEmail, c.IsActive, c.ID, c.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&c.Version)
}

func (r *Repository) DeleteClient(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return err
}
