package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

func (h *Handler) clientConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "clients_ndis_number_key":
			h.badRequest(w, r, errors.New("a client with this NDIS number already exists"))
		case "shifts_client_id_fkey", "invoices_client_id_fkey":
			h.errorResponse(w, r, "client has shifts or invoices, deactivate them instead")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "failed to update client, please retry")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllClients(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	clients, err := h.repository.GetAllClients(r.Context(), activeOnly)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched clients", clients)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName    string `json:"firstName" validate:"required"`
		LastName     string `json:"lastName" validate:"required"`
		NDISNumber   string `json:"ndisNumber" validate:"required,numeric,len=9"`
		Address      string `json:"address"`
		InvoiceEmail string `json:"invoiceEmail" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	client := &domain.Client{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		NDISNumber:   req.NDISNumber,
		Address:      req.Address,
		InvoiceEmail: req.InvoiceEmail,
	}

	if err := h.repository.CreateClient(r.Context(), client); err != nil {
		h.clientConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "client created", client)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientCtx).(*domain.Client)
	h.successResponse(w, r, "fetched client", client)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName    *string `json:"firstName" validate:"omitempty,min=1"`
		LastName     *string `json:"lastName" validate:"omitempty,min=1"`
		NDISNumber   *string `json:"ndisNumber" validate:"omitempty,numeric,len=9"`
		Address      *string `json:"address"`
		InvoiceEmail *string `json:"invoiceEmail" validate:"omitempty,email"`
		IsActive     *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	client := r.Context().Value(ClientCtx).(*domain.Client)

	if req.FirstName != nil {
		client.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		client.LastName = *req.LastName
	}
	if req.NDISNumber != nil {
		client.NDISNumber = *req.NDISNumber
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.InvoiceEmail != nil {
		client.InvoiceEmail = *req.InvoiceEmail
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateClient(r.Context(), client); err != nil {
		h.clientConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "client updated", client)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	client := r.Context().Value(ClientCtx).(*domain.Client)

	if err := h.repository.DeleteClient(r.Context(), client.ID); err != nil {
		h.clientConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "client deleted", nil)
}
