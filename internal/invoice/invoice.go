// Package invoice turns a client's shifts into invoice lines and renders them
// as a spreadsheet.
package invoice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNoShifts = errors.New("no shifts in period")

// NewNumber returns an invoice number of the form INV-YYYYMM-xxxxxxxx.
func NewNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("INV-%s-%s", now.Format("200601"), strings.ToUpper(suffix))
}

func FileName(number string) string {
	return number + ".xlsx"
}

// RateCardFunc returns the line items of a category.
type RateCardFunc func(category string) ([]billing.LineItem, error)

// Compose prices every shift against the current rate card and flattens the
// breakdowns into invoice lines. Manual-entry shifts use their stored cost.
func Compose(shifts []*domain.Shift, carerNames map[int64]string, rateCard RateCardFunc, loc *time.Location) ([]domain.InvoiceLine, decimal.Decimal, error) {
	if len(shifts) == 0 {
		return nil, decimal.Zero, ErrNoShifts
	}

	lines := make([]domain.InvoiceLine, 0, len(shifts))
	total := decimal.Zero

	for _, s := range shifts {
		category := billing.ParseCategory(s.Category)

		var items []billing.LineItem
		if _, ok := category.(billing.RateCardCategory); ok {
			var err error
			if items, err = rateCard(category.Name()); err != nil {
				return nil, decimal.Zero, err
			}
		}

		breakdown, err := billing.Allocate(s.Interval(loc), category, s.ManualCost, items)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("shift %d: %w", s.ID, err)
		}

		for _, l := range breakdown.Lines {
			lines = append(lines, domain.InvoiceLine{
				ShiftID:     s.ID,
				ShiftDate:   s.ShiftDate,
				CarerName:   carerNames[s.CarerID],
				Description: l.Description,
				Code:        l.Code,
				Hours:       l.Hours,
				Rate:        l.Rate,
				Cost:        l.Cost,
			})
		}
		total = total.Add(breakdown.Total)
	}

	return lines, total, nil
}
