package handler

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/carelink-ndis/care-roster/backend/internal/invoice"
	"github.com/carelink-ndis/care-roster/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID    int64  `json:"clientID" validate:"required,gt=0"`
		PeriodStart string `json:"periodStart" validate:"required"`
		PeriodEnd   string `json:"periodEnd" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	periodStart, err := utils.ParseDate(req.PeriodStart)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	periodEnd, err := utils.ParseDate(req.PeriodEnd)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidatePeriod(periodStart, periodEnd); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.repository.GetClientByID(r.Context(), req.ClientID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "client not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	shifts, err := h.repository.GetShifts(r.Context(), domain.ShiftFilter{
		From:     periodStart,
		To:       periodEnd,
		ClientID: &req.ClientID,
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	carers, err := h.repository.GetAllCarers(r.Context(), false)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	carerNames := make(map[int64]string, len(carers))
	for _, c := range carers {
		carerNames[c.ID] = c.FullName()
	}

	rateCard := func(category string) ([]billing.LineItem, error) {
		return h.rateCards.Items(r.Context(), category)
	}

	lines, total, err := invoice.Compose(shifts, carerNames, rateCard, h.location)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrNoShifts), errors.Is(err, billing.ErrInvalidInput):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	inv := &domain.Invoice{
		InvoiceNumber: invoice.NewNumber(time.Now().In(h.location)),
		ClientID:      req.ClientID,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		ShiftCount:    int32(len(shifts)),
		Total:         total,
		Lines:         lines,
	}

	if err := h.repository.CreateInvoice(r.Context(), inv); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "invoices_invoice_number_key":
			h.errorResponse(w, r, "invoice number collision, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "invoice generated", inv)
}

func (h *Handler) GetInvoices(w http.ResponseWriter, r *http.Request) {
	var clientID *int64
	if v := r.URL.Query().Get("clientID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "invalid clientID")
			return
		}
		clientID = &id
	}

	invoices, err := h.repository.GetInvoices(r.Context(), clientID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched invoices", invoices)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv := r.Context().Value(InvoiceCtx).(*domain.Invoice)
	h.successResponse(w, r, "fetched invoice", inv)
}

func (h *Handler) renderInvoice(ctx context.Context, inv *domain.Invoice) (*domain.Client, []byte, error) {
	client, err := h.repository.GetClientByID(ctx, inv.ClientID)
	if err != nil {
		return nil, nil, err
	}

	doc := &invoice.Document{
		Number:       inv.InvoiceNumber,
		InvoiceDate:  inv.CreatedAt.In(h.location),
		ClientName:   client.FullName(),
		NDISNumber:   client.NDISNumber,
		PeriodStart:  inv.PeriodStart,
		PeriodEnd:    inv.PeriodEnd,
		ProviderName: h.config.Invoice.ProviderName,
		ProviderABN:  h.config.Invoice.ProviderABN,
		Total:        inv.Total,
		Lines:        inv.Lines,
	}

	out, err := h.invoices.Render(doc)
	if err != nil {
		return nil, nil, err
	}
	return client, out, nil
}

func (h *Handler) DownloadInvoice(w http.ResponseWriter, r *http.Request) {
	inv := r.Context().Value(InvoiceCtx).(*domain.Invoice)

	_, out, err := h.renderInvoice(r.Context(), inv)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, invoice.FileName(inv.InvoiceNumber)))
	http.ServeContent(w, r, invoice.FileName(inv.InvoiceNumber), inv.CreatedAt, bytes.NewReader(out))
}

func (h *Handler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	inv := r.Context().Value(InvoiceCtx).(*domain.Invoice)

	client, out, err := h.renderInvoice(r.Context(), inv)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if client.InvoiceEmail == "" {
		h.errorResponse(w, r, "client has no invoice email")
		return
	}

	mail := domain.MailMessage{
		Type: domain.MailTypeInvoice,
		To:   client.InvoiceEmail,
		Data: domain.InvoiceMailData{
			ClientName:    client.FullName(),
			InvoiceNumber: inv.InvoiceNumber,
			PeriodStart:   inv.PeriodStart.Format("02/01/2006"),
			PeriodEnd:     inv.PeriodEnd.Format("02/01/2006"),
			Total:         inv.Total.StringFixed(2),
			ProviderName:  h.config.Invoice.ProviderName,
			FileName:      invoice.FileName(inv.InvoiceNumber),
			Attachment:    out,
		},
	}

	if err := h.publishMail(r.Context(), mail); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.MarkInvoiceSent(r.Context(), inv, time.Now()); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "invoice was queued but could not be marked as sent, please refresh")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "invoice queued for delivery to "+client.InvoiceEmail, inv)
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	inv := r.Context().Value(InvoiceCtx).(*domain.Invoice)

	if err := h.repository.DeleteInvoice(r.Context(), inv.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "invoice deleted", nil)
}
