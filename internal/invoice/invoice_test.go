package invoice

import (
	"bytes"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func shiftOn(id int64, date time.Time, fromH, toH int, category string, manual *decimal.Decimal) *domain.Shift {
	return &domain.Shift{
		ID:         id,
		CarerID:    7,
		ClientID:   3,
		Category:   category,
		ShiftDate:  date,
		StartTime:  date.Add(time.Duration(fromH) * time.Hour),
		EndTime:    date.Add(time.Duration(toH) * time.Hour),
		ManualCost: manual,
	}
}

func TestNewNumber(t *testing.T) {
	n := NewNumber(time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^INV-202503-[0-9A-F]{8}$`), n)
	assert.NotEqual(t, n, NewNumber(time.Date(2025, time.March, 31, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, n+".xlsx", FileName(n))
}

func TestComposeWithoutShifts(t *testing.T) {
	_, _, err := Compose(nil, nil, nil, time.UTC)
	assert.ErrorIs(t, err, ErrNoShifts)
}

func TestComposeMixesRateCardAndManualShifts(t *testing.T) {
	cost := decimal.NewFromInt(150)
	shifts := []*domain.Shift{
		shiftOn(1, day(2025, time.March, 5), 9, 17, "SIL", nil),
		shiftOn(2, day(2025, time.March, 6), 9, 12, billing.ManualEntryCode, &cost),
	}

	requested := []string{}
	rateCard := func(category string) ([]billing.LineItem, error) {
		requested = append(requested, category)
		return []billing.LineItem{{
			Category:       "SIL",
			Description:    "Weekday daytime",
			Code:           "01_011_0107_1_1",
			AppliesWeekday: true,
			BilledRate:     decimal.RequireFromString("85.50"),
		}}, nil
	}

	lines, total, err := Compose(shifts, map[int64]string{7: "Jane Carer"}, rateCard, time.UTC)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, []string{"SIL"}, requested)
	assert.Equal(t, int64(1), lines[0].ShiftID)
	assert.Equal(t, "Jane Carer", lines[0].CarerName)
	assert.Equal(t, "684", lines[0].Cost.String())
	assert.Equal(t, billing.ManualEntryCode, lines[1].Code)
	assert.Equal(t, "150", lines[1].Cost.String())
	assert.Equal(t, "834", total.String())
}

func TestComposeRejectsManualShiftWithoutCost(t *testing.T) {
	shifts := []*domain.Shift{shiftOn(9, day(2025, time.March, 6), 9, 12, billing.ManualEntryCode, nil)}

	_, _, err := Compose(shifts, nil, nil, time.UTC)
	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrInvalidInput))
}

func sampleDocument() *Document {
	return &Document{
		Number:       "INV-202503-ABCDEF12",
		InvoiceDate:  day(2025, time.April, 1),
		ClientName:   "Sam Client",
		NDISNumber:   "430000001",
		PeriodStart:  day(2025, time.March, 1),
		PeriodEnd:    day(2025, time.March, 31),
		ProviderName: "Care Roster Pty Ltd",
		ProviderABN:  "12 345 678 901",
		Total:        decimal.RequireFromString("834.00"),
		Lines: []domain.InvoiceLine{
			{ShiftDate: day(2025, time.March, 5), CarerName: "Jane Carer", Description: "Weekday daytime", Code: "01_011", Hours: decimal.NewFromInt(6), Rate: decimal.RequireFromString("85.50"), Cost: decimal.RequireFromString("513.00")},
			{ShiftDate: day(2025, time.March, 5), CarerName: "Jane Carer", Description: "Weekday evening", Code: "01_015", Hours: decimal.NewFromInt(2), Rate: decimal.RequireFromString("85.50"), Cost: decimal.RequireFromString("171.00")},
			{ShiftDate: day(2025, time.March, 6), CarerName: "Jane Carer", Description: "HIREUP shift", Code: "HIREUP", Hours: decimal.Zero, Rate: decimal.NewFromInt(150), Cost: decimal.NewFromInt(150)},
		},
	}
}

func TestRenderDefaultTemplate(t *testing.T) {
	out, err := NewRenderer("").Render(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	const sheet = "Invoice"
	cell := func(name string) string {
		v, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Care Roster Pty Ltd", cell("A2"))
	assert.Equal(t, "ABN: 12 345 678 901", cell("A3"))
	assert.Equal(t, "INV-202503-ABCDEF12", cell("B5"))
	assert.Equal(t, "01/04/2025", cell("B6"))
	assert.Equal(t, "Sam Client", cell("B7"))
	assert.Equal(t, "430000001", cell("B8"))
	assert.Equal(t, "01/03/2025 to 31/03/2025", cell("B9"))

	assert.Equal(t, "05/03/2025", cell("A12"))
	assert.Equal(t, "Weekday daytime", cell("C12"))
	assert.Equal(t, "85.5", cell("F12"))
	assert.Equal(t, "513", cell("G12"))
	assert.Equal(t, "Weekday evening", cell("C13"))
	assert.Equal(t, "HIREUP", cell("D14"))
	assert.Equal(t, "0", cell("E14"))

	// footer moved down by the two inserted rows
	assert.Equal(t, "Total", cell("F16"))
	assert.Equal(t, "834", cell("G16"))
}

func TestRenderWithoutLinesClearsItemsRow(t *testing.T) {
	doc := sampleDocument()
	doc.Lines = nil
	doc.Total = decimal.Zero

	out, err := NewRenderer("").Render(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Invoice", "A12")
	require.NoError(t, err)
	assert.Empty(t, v)

	v, err = f.GetCellValue("Invoice", "F14")
	require.NoError(t, err)
	assert.Equal(t, "Total", v)
}

func TestRenderCustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")

	tpl := excelize.NewFile()
	require.NoError(t, tpl.SetCellValue("Sheet1", "B2", "Invoice {{invoice_number}} for {{client_name}}"))
	require.NoError(t, tpl.SetCellValue("Sheet1", "B4", itemsToken))
	require.NoError(t, tpl.SaveAs(path))
	require.NoError(t, tpl.Close())

	out, err := NewRenderer(path).Render(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-202503-ABCDEF12 for Sam Client", v)

	// items start at the token's column
	v, err = f.GetCellValue("Sheet1", "C6")
	require.NoError(t, err)
	assert.Equal(t, "Jane Carer", v)
}

func TestRenderTemplateWithoutItemsRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")

	tpl := excelize.NewFile()
	require.NoError(t, tpl.SetCellValue("Sheet1", "A1", "{{client_name}}"))
	require.NoError(t, tpl.SaveAs(path))
	require.NoError(t, tpl.Close())

	_, err := NewRenderer(path).Render(sampleDocument())
	assert.ErrorContains(t, err, itemsToken)
}

func TestRenderMissingTemplate(t *testing.T) {
	_, err := NewRenderer(filepath.Join(t.TempDir(), "nope.xlsx")).Render(sampleDocument())
	assert.Error(t, err)
}
