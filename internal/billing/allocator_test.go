package billing_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(t *testing.T, s string) *billing.TimeOfDay {
	t.Helper()
	v, err := billing.ParseTimeOfDay(s)
	require.NoError(t, err)
	return &v
}

func shiftOn(t *testing.T, date, start, end string) billing.Shift {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return billing.Shift{Date: d, Start: *tod(t, start), End: *tod(t, end)}
}

func weekdayItem(t *testing.T, code, from, to, rate string) billing.LineItem {
	t.Helper()
	it := billing.LineItem{
		Category:       "Personal Care",
		Description:    "Assistance with self-care " + code,
		Code:           code,
		AppliesWeekday: true,
		BilledRate:     decimal.RequireFromString(rate),
	}
	if from != "" {
		it.TimeFrom = tod(t, from)
	}
	if to != "" {
		it.TimeTo = tod(t, to)
	}
	return it
}

func personalCare() billing.Category {
	return billing.ParseCategory("Personal Care")
}

func sumHours(lines []billing.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Hours)
	}
	return total
}

func sumCost(lines []billing.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Cost)
	}
	return total
}

func TestAllocate_WednesdayDayShift(t *testing.T) {
	// 2025-03-05 is a Wednesday.
	shift := shiftOn(t, "2025-03-05", "09:00", "17:00")
	items := []billing.LineItem{weekdayItem(t, "01_011_0107_1_1", "06:00", "22:00", "85.50")}

	b, err := billing.Allocate(shift, personalCare(), nil, items)
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)

	line := b.Lines[0]
	assert.Equal(t, "01_011_0107_1_1", line.Code)
	assert.True(t, line.Hours.Equal(decimal.NewFromInt(8)), "hours = %s", line.Hours)
	assert.True(t, line.Rate.Equal(decimal.RequireFromString("85.50")))
	assert.True(t, line.Cost.Equal(decimal.RequireFromString("684.00")), "cost = %s", line.Cost)
	assert.True(t, b.Total.Equal(decimal.RequireFromString("684.00")), "total = %s", b.Total)
	assert.Zero(t, b.UncoveredMinutes)
}

func TestAllocate_SplitsAcrossWindows(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "18:00", "23:00")
	items := []billing.LineItem{
		weekdayItem(t, "EVENING", "20:00", "", "94.12"),
		weekdayItem(t, "DAYTIME", "06:00", "20:00", "67.56"),
	}

	b, err := billing.Allocate(shift, personalCare(), nil, items)
	require.NoError(t, err)
	require.Len(t, b.Lines, 2)

	// sorted by window start, not by input order
	assert.Equal(t, "DAYTIME", b.Lines[0].Code)
	assert.True(t, b.Lines[0].Hours.Equal(decimal.NewFromInt(2)))
	assert.True(t, b.Lines[0].Cost.Equal(decimal.RequireFromString("135.12")))
	assert.Equal(t, "EVENING", b.Lines[1].Code)
	assert.True(t, b.Lines[1].Hours.Equal(decimal.NewFromInt(3)))
	assert.True(t, b.Lines[1].Cost.Equal(decimal.RequireFromString("282.36")))

	assert.True(t, sumHours(b.Lines).Equal(decimal.NewFromInt(5)))
	assert.True(t, b.Total.Equal(sumCost(b.Lines)))
}

func TestAllocate_HoursSumToDurationWhenFullyCovered(t *testing.T) {
	items := []billing.LineItem{weekdayItem(t, "ALLDAY", "", "", "70.00")}

	cases := []struct {
		start, end string
		hours      string
	}{
		{"09:00", "17:00", "8"},
		{"00:00", "00:30", "0.5"},
		{"07:15", "07:35", "0.3333"},
		{"13:10", "23:55", "10.75"},
	}

	for _, tc := range cases {
		t.Run(tc.start+"-"+tc.end, func(t *testing.T) {
			shift := shiftOn(t, "2025-03-04", tc.start, tc.end)
			b, err := billing.Allocate(shift, personalCare(), nil, items)
			require.NoError(t, err)
			require.NotEmpty(t, b.Lines)

			want := decimal.RequireFromString(tc.hours)
			assert.True(t, sumHours(b.Lines).Sub(want).Abs().LessThan(decimal.RequireFromString("0.001")), "hours = %s", sumHours(b.Lines))
			assert.True(t, b.Total.Equal(sumCost(b.Lines)))
			assert.Zero(t, b.UncoveredMinutes)
		})
	}
}

func TestAllocate_MidnightRollover(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "22:00", "06:00")
	assert.Equal(t, 8*60, shift.DurationMinutes())

	items := []billing.LineItem{weekdayItem(t, "ALLDAY", "", "", "50.00")}
	b, err := billing.Allocate(shift, personalCare(), nil, items)
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)
	assert.True(t, b.Lines[0].Hours.Equal(decimal.NewFromInt(8)), "hours = %s", b.Lines[0].Hours)
	assert.True(t, b.Total.Equal(decimal.NewFromInt(400)))
}

func TestAllocate_EqualStartAndEndIsAFullDay(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "08:00", "08:00")
	assert.Equal(t, 24*60, shift.DurationMinutes())
}

func TestAllocate_SleepoverTakesPriority(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "23:00", "05:00")

	night := weekdayItem(t, "NIGHT", "00:00", "06:00", "98.00")
	sleepover := weekdayItem(t, "SLEEPOVER", "22:00", "06:00", "40.00")
	sleepover.IsSleepover = true

	b, err := billing.Allocate(shift, personalCare(), nil, []billing.LineItem{night, sleepover})
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, "SLEEPOVER", b.Lines[0].Code)
	assert.True(t, b.Lines[0].Hours.Equal(decimal.NewFromInt(6)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(240)))
}

func TestAllocate_UncoveredTimeIsNotBilled(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "05:00", "09:00")
	items := []billing.LineItem{weekdayItem(t, "DAYTIME", "06:00", "20:00", "60.00")}

	b, err := billing.Allocate(shift, personalCare(), nil, items)
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)
	assert.True(t, b.Lines[0].Hours.Equal(decimal.NewFromInt(3)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, 60, b.UncoveredMinutes)
}

func TestAllocate_EarlyMorningCoveredByPreviousNightWindow(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "02:00", "04:00")
	items := []billing.LineItem{weekdayItem(t, "OVERNIGHT", "22:00", "06:00", "100.00")}

	b, err := billing.Allocate(shift, personalCare(), nil, items)
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)
	assert.True(t, b.Lines[0].Hours.Equal(decimal.NewFromInt(2)))
}

func TestAllocate_NoMatchingItems(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "09:00", "17:00")

	t.Run("unknown category", func(t *testing.T) {
		items := []billing.LineItem{weekdayItem(t, "X", "", "", "10")}
		b, err := billing.Allocate(shift, billing.ParseCategory("Transport"), nil, items)
		require.NoError(t, err)
		assert.Empty(t, b.Lines)
		assert.True(t, b.Total.IsZero())
	})

	t.Run("wrong day of week", func(t *testing.T) {
		sat := shiftOn(t, "2025-03-08", "09:00", "17:00")
		items := []billing.LineItem{weekdayItem(t, "X", "", "", "10")}
		b, err := billing.Allocate(sat, personalCare(), nil, items)
		require.NoError(t, err)
		assert.Empty(t, b.Lines)
		assert.True(t, b.Total.IsZero())
	})

	t.Run("empty rate card", func(t *testing.T) {
		b, err := billing.Allocate(shift, personalCare(), nil, nil)
		require.NoError(t, err)
		assert.NotNil(t, b.Lines)
		assert.Empty(t, b.Lines)
	})
}

func TestAllocate_MissingTimeFields(t *testing.T) {
	items := []billing.LineItem{weekdayItem(t, "X", "", "", "10")}

	missing := []billing.Shift{
		{Start: billing.NewTimeOfDay(9, 0), End: billing.NewTimeOfDay(17, 0)},
		{Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Start: billing.MissingTime, End: billing.NewTimeOfDay(17, 0)},
		{Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), Start: billing.NewTimeOfDay(9, 0), End: billing.MissingTime},
	}
	for _, shift := range missing {
		b, err := billing.Allocate(shift, personalCare(), nil, items)
		require.NoError(t, err)
		assert.Empty(t, b.Lines)
		assert.True(t, b.Total.IsZero())
	}
}

func TestAllocate_WeekendFlags(t *testing.T) {
	sat := weekdayItem(t, "SAT", "", "", "120.00")
	sat.AppliesWeekday = false
	sat.AppliesSaturday = true
	sun := weekdayItem(t, "SUN", "", "", "150.00")
	sun.AppliesWeekday = false
	sun.AppliesSunday = true
	items := []billing.LineItem{weekdayItem(t, "WEEKDAY", "", "", "70.00"), sat, sun}

	cases := map[string]string{
		"2025-03-07": "WEEKDAY",
		"2025-03-08": "SAT",
		"2025-03-09": "SUN",
	}
	for date, code := range cases {
		b, err := billing.Allocate(shiftOn(t, date, "10:00", "12:00"), personalCare(), nil, items)
		require.NoError(t, err)
		require.Len(t, b.Lines, 1, date)
		assert.Equal(t, code, b.Lines[0].Code, date)
	}
}

func TestAllocate_IsDeterministic(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "18:00", "23:00")
	items := []billing.LineItem{
		weekdayItem(t, "EVENING", "20:00", "", "94.12"),
		weekdayItem(t, "DAYTIME", "06:00", "20:00", "67.56"),
	}

	first, err := billing.Allocate(shift, personalCare(), nil, items)
	require.NoError(t, err)
	second, err := billing.Allocate(shift, personalCare(), nil, items)
	require.NoError(t, err)

	require.Len(t, second.Lines, len(first.Lines))
	for i := range first.Lines {
		assert.Equal(t, first.Lines[i].Code, second.Lines[i].Code)
		assert.Equal(t, first.Lines[i].Hours.String(), second.Lines[i].Hours.String())
		assert.Equal(t, first.Lines[i].Cost.String(), second.Lines[i].Cost.String())
	}
	assert.Equal(t, first.Total.String(), second.Total.String())
	assert.Equal(t, first.UncoveredMinutes, second.UncoveredMinutes)
}

func TestAllocate_ManualEntry(t *testing.T) {
	shift := shiftOn(t, "2025-03-05", "09:00", "17:00")
	hireup := billing.ParseCategory("HIREUP")

	cost := decimal.RequireFromString("150.0")
	b, err := billing.Allocate(shift, hireup, &cost, nil)
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, billing.Line{
		Description: "HIREUP shift",
		Code:        "HIREUP",
		Rate:        cost,
		Hours:       decimal.Zero,
		Cost:        cost,
	}, b.Lines[0])
	assert.True(t, b.Total.Equal(cost))

	negative := decimal.NewFromInt(-5)
	_, err = billing.Allocate(shift, hireup, &negative, nil)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	zero := decimal.Zero
	_, err = billing.Allocate(shift, hireup, &zero, nil)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)

	_, err = billing.Allocate(shift, hireup, nil, nil)
	assert.ErrorIs(t, err, billing.ErrInvalidInput)
}

func TestParseManualCost(t *testing.T) {
	cost, err := billing.ParseManualCost(" 99.95 ")
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.RequireFromString("99.95")))

	for _, raw := range []string{"", "abc", "0", "-1"} {
		_, err := billing.ParseManualCost(raw)
		assert.ErrorIs(t, err, billing.ErrInvalidInput, raw)
	}
}

func TestParseCategory(t *testing.T) {
	assert.IsType(t, billing.ManualEntryCategory{}, billing.ParseCategory("HIREUP"))
	assert.IsType(t, billing.RateCardCategory{}, billing.ParseCategory("Personal Care"))
	assert.Equal(t, "Personal Care", billing.ParseCategory(" Personal Care ").Name())
	assert.True(t, billing.IsManualEntry("HIREUP"))
	assert.False(t, billing.IsManualEntry("hireup"))
}

func TestShiftBounds(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	start, end := shiftOn(t, "2025-03-05", "22:00", "06:00").Bounds(loc)
	assert.Equal(t, time.Date(2025, 3, 5, 22, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 3, 6, 6, 0, 0, 0, loc), end)
}

func TestShiftBoundsAcrossDaylightSavingEnd(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// clocks go back an hour at 03:00 on 2025-04-06
	start, end := shiftOn(t, "2025-04-05", "22:00", "06:00").Bounds(loc)
	assert.Equal(t, 6, end.Hour())
	assert.Equal(t, 6, end.Day())
	assert.Equal(t, 9*time.Hour, end.Sub(start))
}

func TestShiftBoundsInDaylightSavingGap(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	// clocks jump from 02:00 to 03:00 on 2025-10-05
	gapStart := shiftOn(t, "2025-10-05", "02:30", "06:00")
	assert.ErrorIs(t, gapStart.CheckBounds(loc), billing.ErrNonexistentTime)

	gapEnd := shiftOn(t, "2025-10-04", "22:00", "02:30")
	assert.ErrorIs(t, gapEnd.CheckBounds(loc), billing.ErrNonexistentTime)

	around := shiftOn(t, "2025-10-04", "22:00", "06:00")
	require.NoError(t, around.CheckBounds(loc))
	start, end := around.Bounds(loc)
	assert.Equal(t, 7*time.Hour, end.Sub(start))

	// the same clock times are fine on an ordinary day
	assert.NoError(t, shiftOn(t, "2025-10-12", "02:30", "06:00").CheckBounds(loc))
	assert.NoError(t, shiftOn(t, "2025-10-12", "09:00", "24:00").CheckBounds(loc))
}

func TestLineCostIsRoundedFromMinutes(t *testing.T) {
	item := billing.LineItem{
		Category:       "SIL",
		Code:           "01_011",
		AppliesWeekday: true,
		BilledRate:     decimal.RequireFromString("70"),
	}

	b, err := billing.Allocate(shiftOn(t, "2025-03-05", "09:00", "09:20"), billing.ParseCategory("SIL"), nil, []billing.LineItem{item})
	require.NoError(t, err)
	require.Len(t, b.Lines, 1)

	line := b.Lines[0]
	assert.Equal(t, "0.3333", line.Hours.String())
	assert.Equal(t, "23.33", line.Cost.StringFixed(2))
	// hours × rate would give 23.331
	assert.False(t, line.Hours.Mul(line.Rate).Equal(line.Cost))
}
