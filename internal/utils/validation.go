package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
)

const DateLayout = "2006-01-02"

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ParseOptionalTimeOfDay treats an empty string as an open window edge.
func ParseOptionalTimeOfDay(s string) (*billing.TimeOfDay, error) {
	if s == "" {
		return nil, nil
	}
	t, err := billing.ParseTimeOfDay(s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return &t, nil
}

func ValidateLineItem(it *billing.LineItem) error {
	if billing.IsManualEntry(it.Category) {
		return fmt.Errorf("category %s is priced manually and cannot have rate card items", billing.ManualEntryCode)
	}

	if !it.AppliesWeekday && !it.AppliesSaturday && !it.AppliesSunday {
		return errors.New("line item must apply to at least one of weekday, saturday or sunday")
	}

	if !it.BilledRate.IsPositive() {
		return errors.New("billed rate must be greater than zero")
	}

	if it.TimeFrom != nil && !it.TimeFrom.Valid() {
		return errors.New("time from is out of range")
	}
	if it.TimeFrom != nil && *it.TimeFrom == billing.MinutesPerDay {
		return errors.New("time from cannot be 24:00, use 00:00 instead")
	}
	if it.TimeTo != nil && !it.TimeTo.Valid() {
		return errors.New("time to is out of range")
	}

	return nil
}

func ValidatePeriod(start, end time.Time) error {
	if end.Before(start) {
		return errors.New("period end cannot be before period start")
	}
	return nil
}
