package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

func (h *Handler) carerConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "carers_email_key":
			h.badRequest(w, r, errors.New("a carer with this email already exists"))
		case "shifts_carer_id_fkey":
			h.errorResponse(w, r, "carer has rostered shifts, deactivate them instead")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "failed to update carer, please retry")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllCarers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	carers, err := h.repository.GetAllCarers(r.Context(), activeOnly)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched carers", carers)
}

func (h *Handler) CreateCarer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstName" validate:"required"`
		LastName  string `json:"lastName" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Phone     string `json:"phone" validate:"omitempty,max=20"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	carer := &domain.Carer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	if err := h.repository.CreateCarer(r.Context(), carer); err != nil {
		h.carerConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "carer created", carer)
}

func (h *Handler) GetCarer(w http.ResponseWriter, r *http.Request) {
	carer := r.Context().Value(CarerCtx).(*domain.Carer)
	h.successResponse(w, r, "fetched carer", carer)
}

func (h *Handler) UpdateCarer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName *string `json:"firstName" validate:"omitempty,min=1"`
		LastName  *string `json:"lastName" validate:"omitempty,min=1"`
		Email     *string `json:"email" validate:"omitempty,email"`
		Phone     *string `json:"phone" validate:"omitempty,max=20"`
		IsActive  *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	carer := r.Context().Value(CarerCtx).(*domain.Carer)

	if req.FirstName != nil {
		carer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		carer.LastName = *req.LastName
	}
	if req.Email != nil {
		carer.Email = *req.Email
	}
	if req.Phone != nil {
		carer.Phone = *req.Phone
	}
	if req.IsActive != nil {
		carer.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateCarer(r.Context(), carer); err != nil {
		h.carerConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "carer updated", carer)
}

func (h *Handler) DeleteCarer(w http.ResponseWriter, r *http.Request) {
	carer := r.Context().Value(CarerCtx).(*domain.Carer)

	if err := h.repository.DeleteCarer(r.Context(), carer.ID); err != nil {
		h.carerConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "carer deleted", nil)
}
