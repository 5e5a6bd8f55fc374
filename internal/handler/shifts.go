package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/carelink-ndis/care-roster/backend/internal/utils"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// costInput accepts a manual cost sent either as a JSON number or a string.
type costInput string

func (c *costInput) UnmarshalJSON(data []byte) error {
	*c = costInput(strings.Trim(string(data), `"`))
	return nil
}

// shiftStore is the persistence the shift handlers write through.
type shiftStore interface {
	GetCarerByID(ctx context.Context, id int64) (*domain.Carer, error)
	GetClientByID(ctx context.Context, id int64) (*domain.Client, error)
	GetShifts(ctx context.Context, filter domain.ShiftFilter) ([]*domain.Shift, error)
	CreateShift(ctx context.Context, s *domain.Shift) error
	UpdateShift(ctx context.Context, s *domain.Shift) error
	SetShiftCalendarEventID(ctx context.Context, id int64, eventID string) error
	DeleteShift(ctx context.Context, id int64) error
}

// parseShiftInterval also rejects clock times that do not exist in loc, so the
// stored timestamps always read back as the times that were priced.
func parseShiftInterval(date, start, end string, loc *time.Location) (billing.Shift, error) {
	d, err := utils.ParseDate(date)
	if err != nil {
		return billing.Shift{}, err
	}
	from, err := billing.ParseTimeOfDay(start)
	if err != nil {
		return billing.Shift{}, err
	}
	to, err := billing.ParseTimeOfDay(end)
	if err != nil {
		return billing.Shift{}, err
	}
	if from == billing.MinutesPerDay {
		return billing.Shift{}, errors.New("a shift cannot start at 24:00")
	}
	shift := billing.Shift{Date: d, Start: from, End: to}
	if err := shift.CheckBounds(loc); err != nil {
		return billing.Shift{}, err
	}
	return shift, nil
}

// resolveManualCost returns the cost to pass to the allocator. Rate card
// categories never carry one.
func resolveManualCost(category string, raw *costInput) (*decimal.Decimal, error) {
	if !billing.IsManualEntry(category) {
		return nil, nil
	}
	if raw == nil {
		return nil, nil // the allocator reports the missing cost
	}
	cost, err := billing.ParseManualCost(string(*raw))
	if err != nil {
		return nil, err
	}
	return &cost, nil
}

func (h *Handler) priceShift(ctx context.Context, interval billing.Shift, categoryName string, manualCost *decimal.Decimal) (billing.Breakdown, error) {
	category := billing.ParseCategory(categoryName)

	var items []billing.LineItem
	if _, ok := category.(billing.RateCardCategory); ok {
		var err error
		if items, err = h.rateCards.Items(ctx, category.Name()); err != nil {
			return billing.Breakdown{}, err
		}
	}

	return billing.Allocate(interval, category, manualCost, items)
}

func warnUncovered(shiftID int64, interval billing.Shift, category string, b billing.Breakdown) {
	if b.UncoveredMinutes == 0 {
		return
	}
	slog.Warn("shift time not covered by the rate card",
		"shift", shiftID,
		"date", interval.Date.Format(utils.DateLayout),
		"start", interval.Start.String(),
		"end", interval.End.String(),
		"category", category,
		"minutes", b.UncoveredMinutes,
	)
}

type shiftPreview struct {
	DurationMinutes int               `json:"durationMinutes"`
	Breakdown       billing.Breakdown `json:"breakdown"`
}

func (h *Handler) PreviewShiftCost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShiftDate  string     `json:"shiftDate" validate:"required"`
		StartTime  string     `json:"startTime" validate:"required"`
		EndTime    string     `json:"endTime" validate:"required"`
		Category   string     `json:"category" validate:"required"`
		ManualCost *costInput `json:"manualCost"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	interval, err := parseShiftInterval(req.ShiftDate, req.StartTime, req.EndTime, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	manualCost, err := resolveManualCost(req.Category, req.ManualCost)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	breakdown, err := h.priceShift(r.Context(), interval, req.Category, manualCost)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidInput):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift cost calculated", shiftPreview{
		DurationMinutes: interval.DurationMinutes(),
		Breakdown:       breakdown,
	})
}

func (h *Handler) shiftConstraintError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "shifts_carer_id_fkey":
			h.errorResponse(w, r, "carer not found")
		case "shifts_client_id_fkey":
			h.errorResponse(w, r, "client not found")
		case "invoice_lines_shift_id_fkey":
			h.errorResponse(w, r, "shift has been invoiced and cannot be deleted")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "failed to update shift, please retry")
	default:
		h.internalServerError(w, r, err)
	}
}

// checkParticipants makes sure both people exist and are active. It writes
// the response and returns false otherwise.
func (h *Handler) checkParticipants(w http.ResponseWriter, r *http.Request, carerID, clientID int64) bool {
	carer, err := h.shifts.GetCarerByID(r.Context(), carerID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "carer not found")
		default:
			h.internalServerError(w, r, err)
		}
		return false
	}
	if !carer.IsActive {
		h.errorResponse(w, r, "carer is inactive")
		return false
	}

	client, err := h.shifts.GetClientByID(r.Context(), clientID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "client not found")
		default:
			h.internalServerError(w, r, err)
		}
		return false
	}
	if !client.IsActive {
		h.errorResponse(w, r, "client is inactive")
		return false
	}

	return true
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CarerID    int64      `json:"carerID" validate:"required,gt=0"`
		ClientID   int64      `json:"clientID" validate:"required,gt=0"`
		ShiftDate  string     `json:"shiftDate" validate:"required"`
		StartTime  string     `json:"startTime" validate:"required"`
		EndTime    string     `json:"endTime" validate:"required"`
		Category   string     `json:"category" validate:"required"`
		ManualCost *costInput `json:"manualCost"`
		Notes      string     `json:"notes" validate:"max=2000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	interval, err := parseShiftInterval(req.ShiftDate, req.StartTime, req.EndTime, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	category := strings.TrimSpace(req.Category)
	manualCost, err := resolveManualCost(category, req.ManualCost)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if !h.checkParticipants(w, r, req.CarerID, req.ClientID) {
		return
	}

	// price before writing anything so invalid manual entries never persist
	breakdown, err := h.priceShift(r.Context(), interval, category, manualCost)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidInput):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	start, end := interval.Bounds(h.location)
	shift := &domain.Shift{
		CarerID:    req.CarerID,
		ClientID:   req.ClientID,
		Category:   category,
		ShiftDate:  interval.Date,
		StartTime:  start,
		EndTime:    end,
		ManualCost: manualCost,
		TotalCost:  breakdown.Total,
		Notes:      req.Notes,
	}

	if err := h.shifts.CreateShift(r.Context(), shift); err != nil {
		h.shiftConstraintError(w, r, err)
		return
	}

	warnUncovered(shift.ID, interval, category, breakdown)
	shift.Breakdown = &breakdown

	h.successResponse(w, r, "shift created", shift)
}

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ShiftFilter{}

	if v := q.Get("from"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		filter.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := utils.ParseDate(v)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		filter.To = d
	}
	if !filter.From.IsZero() && !filter.To.IsZero() {
		if err := utils.ValidatePeriod(filter.From, filter.To); err != nil {
			h.badRequest(w, r, err)
			return
		}
	}
	for param, dst := range map[string]**int64{"carerID": &filter.CarerID, "clientID": &filter.ClientID} {
		v := q.Get(param)
		if v == "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "invalid "+param)
			return
		}
		*dst = &id
	}

	shifts, err := h.shifts.GetShifts(r.Context(), filter)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched shifts", shifts)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	breakdown, err := h.priceShift(r.Context(), shift.Interval(h.location), shift.Category, shift.ManualCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	shift.Breakdown = &breakdown

	h.successResponse(w, r, "fetched shift", shift)
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CarerID    *int64     `json:"carerID" validate:"omitempty,gt=0"`
		ClientID   *int64     `json:"clientID" validate:"omitempty,gt=0"`
		ShiftDate  *string    `json:"shiftDate"`
		StartTime  *string    `json:"startTime"`
		EndTime    *string    `json:"endTime"`
		Category   *string    `json:"category" validate:"omitempty,min=1"`
		ManualCost *costInput `json:"manualCost"`
		Notes      *string    `json:"notes" validate:"omitempty,max=2000"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := r.Context().Value(ShiftCtx).(*domain.Shift)
	current := shift.Interval(h.location)

	date := current.Date.Format(utils.DateLayout)
	start, end := current.Start.String(), current.End.String()
	if req.ShiftDate != nil {
		date = *req.ShiftDate
	}
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}

	interval, err := parseShiftInterval(date, start, end, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Category != nil {
		shift.Category = strings.TrimSpace(*req.Category)
	}

	manualCost := shift.ManualCost
	switch {
	case !billing.IsManualEntry(shift.Category):
		manualCost = nil
	case req.ManualCost != nil:
		if manualCost, err = resolveManualCost(shift.Category, req.ManualCost); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
	}

	if req.CarerID != nil || req.ClientID != nil {
		carerID, clientID := shift.CarerID, shift.ClientID
		if req.CarerID != nil {
			carerID = *req.CarerID
		}
		if req.ClientID != nil {
			clientID = *req.ClientID
		}
		if !h.checkParticipants(w, r, carerID, clientID) {
			return
		}
		shift.CarerID, shift.ClientID = carerID, clientID
	}

	breakdown, err := h.priceShift(r.Context(), interval, shift.Category, manualCost)
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidInput):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	startAt, endAt := interval.Bounds(h.location)
	shift.ShiftDate = interval.Date
	shift.StartTime = startAt
	shift.EndTime = endAt
	shift.ManualCost = manualCost
	shift.TotalCost = breakdown.Total
	if req.Notes != nil {
		shift.Notes = *req.Notes
	}

	if err := h.shifts.UpdateShift(r.Context(), shift); err != nil {
		h.shiftConstraintError(w, r, err)
		return
	}

	warnUncovered(shift.ID, interval, shift.Category, breakdown)
	shift.Breakdown = &breakdown

	h.successResponse(w, r, "shift updated", shift)
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	if err := h.shifts.DeleteShift(r.Context(), shift.ID); err != nil {
		h.shiftConstraintError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift deleted", nil)
}

func (h *Handler) SyncShiftToCalendar(w http.ResponseWriter, r *http.Request) {
	if h.calendar == nil {
		h.errorResponse(w, r, "calendar sync is not configured")
		return
	}

	shift := r.Context().Value(ShiftCtx).(*domain.Shift)

	carer, err := h.shifts.GetCarerByID(r.Context(), shift.CarerID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	client, err := h.shifts.GetClientByID(r.Context(), shift.ClientID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	eventID, err := h.calendar.Push(ctx, shift, carer, client)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.shifts.SetShiftCalendarEventID(r.Context(), shift.ID, eventID); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	shift.CalendarEventID = &eventID

	h.successResponse(w, r, "shift synced to calendar", shift)
}
