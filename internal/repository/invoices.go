package repository

import (
	"context"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
)

const invoiceColumns = `
	id, invoice_number, client_id, period_start, period_end,
	shift_count, total, sent_at, created_at, version
`

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	dst := []any{
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.ClientID,
		&inv.PeriodStart,
		&inv.PeriodEnd,
		&inv.ShiftCount,
		&inv.Total,
		&inv.SentAt,
		&inv.CreatedAt,
		&inv.Version,
	}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvoices lists invoice headers, optionally for a single client.
func (r *Repository) GetInvoices(ctx context.Context, clientID *int64) ([]*domain.Invoice, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + invoiceColumns + ` FROM invoices
		WHERE ($1::BIGINT IS NULL OR client_id = $1)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return invoices, nil
}

// GetInvoiceByID loads the header and its lines.
func (r *Repository) GetInvoiceByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	inv, err := scanInvoice(r.dbpool.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, shift_id, shift_date, carer_name, description, code, hours, rate, cost
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY position
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inv.Lines = make([]domain.InvoiceLine, 0)
	for rows.Next() {
		var l domain.InvoiceLine
		if err := rows.Scan(&l.ID, &l.ShiftID, &l.ShiftDate, &l.CarerName, &l.Description, &l.Code, &l.Hours, &l.Rate, &l.Cost); err != nil {
			return nil, err
		}
		inv.Lines = append(inv.Lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return inv, nil
}

// CreateInvoice inserts the header and every line in one transaction.
func (r *Repository) CreateInvoice(ctx context.Context, inv *domain.Invoice) error {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO invoices (invoice_number, client_id, period_start, period_end, shift_count, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{inv.InvoiceNumber, inv.ClientID, inv.PeriodStart, inv.PeriodEnd, inv.ShiftCount, inv.Total}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&inv.ID, &inv.CreatedAt, &inv.Version); err != nil {
		return err
	}

	for i := range inv.Lines {
		l := &inv.Lines[i]

		query := `
			INSERT INTO invoice_lines (invoice_id, position, shift_id, shift_date, carer_name, description, code, hours, rate, cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`

		args := []any{inv.ID, i, l.ShiftID, l.ShiftDate, l.CarerName, l.Description, l.Code, l.Hours, l.Rate, l.Cost}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&l.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) MarkInvoiceSent(ctx context.Context, inv *domain.Invoice, sentAt time.Time) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE invoices
		SET sent_at = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING sent_at, version
	`

	return r.dbpool.QueryRowContext(ctx, query, sentAt, inv.ID, inv.Version).Scan(&inv.SentAt, &inv.Version)
}

func (r *Repository) DeleteInvoice(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	return err
}
