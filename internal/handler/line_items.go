package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/carelink-ndis/care-roster/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

func (h *Handler) lineItemConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "line_items_category_code_key":
			h.badRequest(w, r, errors.New("this category already has a line item with that code"))
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "failed to update line item, please retry")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetLineItems(w http.ResponseWriter, r *http.Request) {
	var (
		items []*domain.LineItem
		err   error
	)

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		items, err = h.repository.GetLineItemsByCategory(r.Context(), category)
	} else {
		items, err = h.repository.GetAllLineItems(r.Context())
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched line items", items)
}

// GetLineItemCategories lists the rate card categories plus the manual-entry
// category, which has no rows of its own.
func (h *Handler) GetLineItemCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repository.GetLineItemCategories(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if !slices.Contains(categories, billing.ManualEntryCode) {
		categories = append(categories, billing.ManualEntryCode)
	}

	h.successResponse(w, r, "fetched categories", categories)
}

func (h *Handler) CreateLineItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category        string          `json:"category" validate:"required"`
		Description     string          `json:"description" validate:"required"`
		Code            string          `json:"code" validate:"required"`
		TimeFrom        string          `json:"timeFrom"`
		TimeTo          string          `json:"timeTo"`
		AppliesWeekday  bool            `json:"appliesWeekday"`
		AppliesSaturday bool            `json:"appliesSaturday"`
		AppliesSunday   bool            `json:"appliesSunday"`
		IsSleepover     bool            `json:"isSleepover"`
		BilledRate      decimal.Decimal `json:"billedRate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	timeFrom, err := utils.ParseOptionalTimeOfDay(req.TimeFrom)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	timeTo, err := utils.ParseOptionalTimeOfDay(req.TimeTo)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := &domain.LineItem{
		LineItem: billing.LineItem{
			Category:        strings.TrimSpace(req.Category),
			Description:     req.Description,
			Code:            strings.TrimSpace(req.Code),
			TimeFrom:        timeFrom,
			TimeTo:          timeTo,
			AppliesWeekday:  req.AppliesWeekday,
			AppliesSaturday: req.AppliesSaturday,
			AppliesSunday:   req.AppliesSunday,
			IsSleepover:     req.IsSleepover,
			BilledRate:      req.BilledRate,
		},
	}

	if err := utils.ValidateLineItem(&item.LineItem); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateLineItem(r.Context(), item); err != nil {
		h.lineItemConstraintError(w, r, err)
		return
	}

	h.rateCards.Invalidate(r.Context(), item.Category)

	h.successResponse(w, r, "line item created", item)
}

func (h *Handler) GetLineItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(LineItemCtx).(*domain.LineItem)
	h.successResponse(w, r, "fetched line item", item)
}

func (h *Handler) UpdateLineItem(w http.ResponseWriter, r *http.Request) {
	// an empty timeFrom/timeTo clears that edge of the window
	var req struct {
		Category        *string          `json:"category" validate:"omitempty,min=1"`
		Description     *string          `json:"description" validate:"omitempty,min=1"`
		Code            *string          `json:"code" validate:"omitempty,min=1"`
		TimeFrom        *string          `json:"timeFrom"`
		TimeTo          *string          `json:"timeTo"`
		AppliesWeekday  *bool            `json:"appliesWeekday"`
		AppliesSaturday *bool            `json:"appliesSaturday"`
		AppliesSunday   *bool            `json:"appliesSunday"`
		IsSleepover     *bool            `json:"isSleepover"`
		BilledRate      *decimal.Decimal `json:"billedRate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	item := r.Context().Value(LineItemCtx).(*domain.LineItem)
	oldCategory := item.Category

	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Code != nil {
		item.Code = strings.TrimSpace(*req.Code)
	}
	if req.TimeFrom != nil {
		t, err := utils.ParseOptionalTimeOfDay(*req.TimeFrom)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		item.TimeFrom = t
	}
	if req.TimeTo != nil {
		t, err := utils.ParseOptionalTimeOfDay(*req.TimeTo)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		item.TimeTo = t
	}
	if req.AppliesWeekday != nil {
		item.AppliesWeekday = *req.AppliesWeekday
	}
	if req.AppliesSaturday != nil {
		item.AppliesSaturday = *req.AppliesSaturday
	}
	if req.AppliesSunday != nil {
		item.AppliesSunday = *req.AppliesSunday
	}
	if req.IsSleepover != nil {
		item.IsSleepover = *req.IsSleepover
	}
	if req.BilledRate != nil {
		item.BilledRate = *req.BilledRate
	}

	if err := utils.ValidateLineItem(&item.LineItem); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateLineItem(r.Context(), item); err != nil {
		h.lineItemConstraintError(w, r, err)
		return
	}

	h.rateCards.Invalidate(r.Context(), oldCategory, item.Category)

	h.successResponse(w, r, "line item updated", item)
}

func (h *Handler) DeleteLineItem(w http.ResponseWriter, r *http.Request) {
	item := r.Context().Value(LineItemCtx).(*domain.LineItem)

	if err := h.repository.DeleteLineItem(r.Context(), item.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.rateCards.Invalidate(r.Context(), item.Category)

	h.successResponse(w, r, "line item deleted", nil)
}
