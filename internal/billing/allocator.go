package billing

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a manual-entry shift has no usable cost.
var ErrInvalidInput = errors.New("invalid input")

// ErrNonexistentTime is returned for a wall-clock time skipped by a daylight
// saving change.
var ErrNonexistentTime = errors.New("time does not exist")

var sixty = decimal.NewFromInt(60)

type DayType int

const (
	Weekday DayType = iota
	Saturday
	Sunday
)

func (d DayType) String() string {
	switch d {
	case Saturday:
		return "saturday"
	case Sunday:
		return "sunday"
	default:
		return "weekday"
	}
}

func DayTypeOf(date time.Time) DayType {
	switch date.Weekday() {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	default:
		return Weekday
	}
}

// LineItem is one row of the rate card.
type LineItem struct {
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Code            string          `json:"code"`
	TimeFrom        *TimeOfDay      `json:"timeFrom"`
	TimeTo          *TimeOfDay      `json:"timeTo"`
	AppliesWeekday  bool            `json:"appliesWeekday"`
	AppliesSaturday bool            `json:"appliesSaturday"`
	AppliesSunday   bool            `json:"appliesSunday"`
	IsSleepover     bool            `json:"isSleepover"`
	BilledRate      decimal.Decimal `json:"billedRate"`
}

func (it LineItem) AppliesOn(d DayType) bool {
	switch d {
	case Saturday:
		return it.AppliesSaturday
	case Sunday:
		return it.AppliesSunday
	default:
		return it.AppliesWeekday
	}
}

func (it LineItem) from() int {
	if it.TimeFrom == nil {
		return 0
	}
	return int(*it.TimeFrom)
}

// window returns the item's span on the day it starts. A window whose end is
// not after its start runs into the following day.
func (it LineItem) window() interval {
	w := interval{start: it.from(), end: MinutesPerDay}
	if it.TimeTo != nil {
		w.end = int(*it.TimeTo)
	}
	if w.end <= w.start {
		w.end += MinutesPerDay
	}
	return w
}

// Shift is the interval being priced. End at or before Start crosses midnight.
type Shift struct {
	Date  time.Time `json:"date"`
	Start TimeOfDay `json:"startTime"`
	End   TimeOfDay `json:"endTime"`
}

// interval is a half-open [start, end) span in minutes from midnight of the
// shift date.
type interval struct {
	start, end int
}

func (a interval) shift(days int) interval {
	return interval{start: a.start + days*MinutesPerDay, end: a.end + days*MinutesPerDay}
}

func (a interval) overlap(b interval) int {
	return max(0, min(a.end, b.end)-max(a.start, b.start))
}

func (s Shift) complete() bool {
	return !s.Date.IsZero() && s.Start.Valid() && s.End.Valid()
}

func (s Shift) span() interval {
	iv := interval{start: int(s.Start), end: int(s.End)}
	if iv.end <= iv.start {
		iv.end += MinutesPerDay
	}
	return iv
}

// DurationMinutes is the length of the shift, rolling over midnight when needed.
func (s Shift) DurationMinutes() int {
	if !s.complete() {
		return 0
	}
	iv := s.span()
	return iv.end - iv.start
}

// Bounds places the shift on the calendar in loc. Both ends are wall-clock
// times, so a shift spanning a daylight saving change keeps its civil end.
func (s Shift) Bounds(loc *time.Location) (time.Time, time.Time) {
	y, m, d := s.Date.Date()
	iv := s.span()
	return time.Date(y, m, d, 0, iv.start, 0, 0, loc), time.Date(y, m, d, 0, iv.end, 0, 0, loc)
}

// CheckBounds fails when Bounds would move Start or End, which happens when
// either falls in a spring-forward gap in loc.
func (s Shift) CheckBounds(loc *time.Location) error {
	start, end := s.Bounds(loc)
	if NewTimeOfDay(start.Hour(), start.Minute()) != s.Start {
		return fmt.Errorf("%w: %s on %s in %s", ErrNonexistentTime, s.Start, start.Format(time.DateOnly), loc)
	}
	if NewTimeOfDay(end.Hour(), end.Minute()) != s.End%MinutesPerDay {
		return fmt.Errorf("%w: %s on %s in %s", ErrNonexistentTime, s.End, end.Format(time.DateOnly), loc)
	}
	return nil
}

// Line is one rate-card item's share of a shift. Hours is rounded to 4 places
// and Cost is rate × minutes / 60 rounded to cents, so Cost can differ from
// Hours × Rate in the last cent.
type Line struct {
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	Hours       decimal.Decimal `json:"hours"`
	Cost        decimal.Decimal `json:"cost"`
}

type Breakdown struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
	// UncoveredMinutes is shift time no rate-card window covered. It is
	// reported, never billed.
	UncoveredMinutes int `json:"uncoveredMinutes"`
}

func emptyBreakdown() Breakdown {
	return Breakdown{Lines: []Line{}, Total: decimal.Zero}
}

// ParseManualCost reads a manual-entry cost typed by a user.
func ParseManualCost(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: manual cost is required", ErrInvalidInput)
	}
	cost, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: manual cost %q is not a number", ErrInvalidInput, raw)
	}
	if !cost.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: manual cost must be greater than zero", ErrInvalidInput)
	}
	return cost, nil
}

// Allocate prices a shift. Manual-entry categories take manualCost as the whole
// breakdown; rate-card categories spread the shift over the matching items.
func Allocate(shift Shift, category Category, manualCost *decimal.Decimal, items []LineItem) (Breakdown, error) {
	switch c := category.(type) {
	case ManualEntryCategory:
		return allocateManual(manualCost)
	case RateCardCategory:
		return allocateRateCard(shift, c.Name(), items), nil
	default:
		return emptyBreakdown(), nil
	}
}

func allocateManual(manualCost *decimal.Decimal) (Breakdown, error) {
	if manualCost == nil {
		return Breakdown{}, fmt.Errorf("%w: manual cost is required", ErrInvalidInput)
	}
	if !manualCost.IsPositive() {
		return Breakdown{}, fmt.Errorf("%w: manual cost must be greater than zero", ErrInvalidInput)
	}

	cost := *manualCost
	return Breakdown{
		Lines: []Line{{
			Description: ManualEntryCode + " shift",
			Code:        ManualEntryCode,
			Rate:        cost,
			Hours:       decimal.Zero,
			Cost:        cost,
		}},
		Total: cost,
	}, nil
}

func allocateRateCard(shift Shift, category string, items []LineItem) Breakdown {
	b := emptyBreakdown()
	if !shift.complete() || category == "" {
		return b
	}

	day := DayTypeOf(shift.Date)
	matched := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Category == category && it.AppliesOn(day) {
			matched = append(matched, it)
		}
	}
	if len(matched) == 0 {
		return b
	}

	slices.SortStableFunc(matched, func(a, c LineItem) int {
		if a.IsSleepover != c.IsSleepover {
			if a.IsSleepover {
				return -1
			}
			return 1
		}
		if a.IsSleepover {
			return 0
		}
		return cmp.Compare(a.from(), c.from())
	})

	span := shift.span()
	remaining := span.end - span.start

	for _, it := range matched {
		if remaining == 0 {
			break
		}

		w := it.window()
		minutes := 0
		for _, d := range []int{-1, 0, 1} {
			minutes += span.overlap(w.shift(d))
		}
		minutes = min(minutes, remaining)
		if minutes <= 0 {
			continue
		}

		m := decimal.NewFromInt(int64(minutes))
		line := Line{
			Description: it.Description,
			Code:        it.Code,
			Rate:        it.BilledRate,
			Hours:       m.DivRound(sixty, 4),
			Cost:        it.BilledRate.Mul(m).DivRound(sixty, 2),
		}
		b.Lines = append(b.Lines, line)
		b.Total = b.Total.Add(line.Cost)
		remaining -= minutes
	}

	b.UncoveredMinutes = remaining
	return b
}
