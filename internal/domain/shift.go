package domain

import (
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/shopspring/decimal"
)

type Shift struct {
	ID              int64              `json:"id"`
	CarerID         int64              `json:"carerID"`
	ClientID        int64              `json:"clientID"`
	Category        string             `json:"category"`
	ShiftDate       time.Time          `json:"shiftDate"`
	StartTime       time.Time          `json:"startTime"`
	EndTime         time.Time          `json:"endTime"`
	ManualCost      *decimal.Decimal   `json:"manualCost"`
	TotalCost       decimal.Decimal    `json:"totalCost"`
	Notes           string             `json:"notes"`
	CalendarEventID *string            `json:"calendarEventID"`
	Breakdown       *billing.Breakdown `json:"breakdown,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	Version         int32              `json:"-"`
}

// Interval rebuilds the allocator input from the stored timestamps, which are
// kept in loc.
func (s *Shift) Interval(loc *time.Location) billing.Shift {
	start := s.StartTime.In(loc)
	end := s.EndTime.In(loc)
	return billing.Shift{
		Date:  s.ShiftDate,
		Start: billing.NewTimeOfDay(start.Hour(), start.Minute()),
		End:   billing.NewTimeOfDay(end.Hour(), end.Minute()),
	}
}

type ShiftFilter struct {
	From     time.Time
	To       time.Time
	CarerID  *int64
	ClientID *int64
}
