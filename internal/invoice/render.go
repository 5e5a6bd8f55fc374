package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	itemsToken = "{{items}}"
	totalToken = "{{total}}"
	dateLayout = "02/01/2006"
)

// Document is everything printed on an invoice.
type Document struct {
	Number       string
	InvoiceDate  time.Time
	ClientName   string
	NDISNumber   string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	ProviderName string
	ProviderABN  string
	Total        decimal.Decimal
	Lines        []domain.InvoiceLine
}

func (d *Document) tokens() map[string]string {
	return map[string]string{
		"{{invoice_number}}": d.Number,
		"{{invoice_date}}":   d.InvoiceDate.Format(dateLayout),
		"{{client_name}}":    d.ClientName,
		"{{ndis_number}}":    d.NDISNumber,
		"{{period_start}}":   d.PeriodStart.Format(dateLayout),
		"{{period_end}}":     d.PeriodEnd.Format(dateLayout),
		"{{provider_name}}":  d.ProviderName,
		"{{provider_abn}}":   d.ProviderABN,
		totalToken:           d.Total.StringFixed(2),
	}
}

// Renderer fills a workbook template. The first sheet is used; its {{token}}
// cells are substituted and the row holding {{items}} grows into one row per
// invoice line.
type Renderer struct {
	templatePath string
}

// NewRenderer uses the workbook at templatePath, or a built-in layout when
// the path is empty.
func NewRenderer(templatePath string) *Renderer {
	return &Renderer{templatePath: templatePath}
}

func (r *Renderer) open() (*excelize.File, error) {
	if r.templatePath == "" {
		return DefaultTemplate()
	}
	f, err := excelize.OpenFile(r.templatePath)
	if err != nil {
		return nil, fmt.Errorf("open invoice template: %w", err)
	}
	return f, nil
}

func (r *Renderer) Render(doc *Document) ([]byte, error) {
	f, err := r.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, err
	}
	hoursFmt := "0.00##"
	hours, err := f.NewStyle(&excelize.Style{CustomNumFmt: &hoursFmt})
	if err != nil {
		return nil, err
	}

	tokens := doc.tokens()
	itemsRow, itemsCol := 0, 0

	for r, row := range rows {
		for c, value := range row {
			if !strings.Contains(value, "{{") {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}

			switch strings.TrimSpace(value) {
			case itemsToken:
				if itemsRow == 0 {
					itemsRow, itemsCol = r+1, c+1
				}
				continue
			case totalToken:
				if err := f.SetCellValue(sheet, cell, doc.Total.InexactFloat64()); err != nil {
					return nil, err
				}
				if err := f.SetCellStyle(sheet, cell, cell, money); err != nil {
					return nil, err
				}
				continue
			}

			for token, replacement := range tokens {
				value = strings.ReplaceAll(value, token, replacement)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	if itemsRow == 0 {
		return nil, fmt.Errorf("invoice template has no %s row", itemsToken)
	}

	if err := writeLines(f, sheet, itemsRow, itemsCol, doc.Lines, money, hours); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLines(f *excelize.File, sheet string, row, col int, lines []domain.InvoiceLine, money, hours int) error {
	first, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return f.SetCellValue(sheet, first, "")
	}

	if len(lines) > 1 {
		if err := f.InsertRows(sheet, row+1, len(lines)-1); err != nil {
			return err
		}
	}

	for i, l := range lines {
		values := []any{
			l.ShiftDate.Format(dateLayout),
			l.CarerName,
			l.Description,
			l.Code,
			l.Hours.InexactFloat64(),
			l.Rate.InexactFloat64(),
			l.Cost.InexactFloat64(),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+j, row+i)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}

		hoursCell, _ := excelize.CoordinatesToCellName(col+4, row+i)
		if err := f.SetCellStyle(sheet, hoursCell, hoursCell, hours); err != nil {
			return err
		}
		rateCell, _ := excelize.CoordinatesToCellName(col+5, row+i)
		costCell, _ := excelize.CoordinatesToCellName(col+6, row+i)
		if err := f.SetCellStyle(sheet, rateCell, costCell, money); err != nil {
			return err
		}
	}

	return nil
}

// DefaultTemplate builds the layout used when no template workbook is
// configured.
func DefaultTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Invoice"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	cells := map[string]string{
		"A1":  "TAX INVOICE",
		"A2":  "{{provider_name}}",
		"A3":  "ABN: {{provider_abn}}",
		"A5":  "Invoice number",
		"B5":  "{{invoice_number}}",
		"A6":  "Invoice date",
		"B6":  "{{invoice_date}}",
		"A7":  "Participant",
		"B7":  "{{client_name}}",
		"A8":  "NDIS number",
		"B8":  "{{ndis_number}}",
		"A9":  "Period",
		"B9":  "{{period_start}} to {{period_end}}",
		"A12": itemsToken,
		"F14": "Total",
		"G14": totalToken,
	}
	for cell, value := range cells {
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return nil, err
		}
	}

	headers := []string{"Date", "Carer", "Description", "Code", "Hours", "Rate", "Cost"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 11)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for _, rng := range [][2]string{{"A1", "A1"}, {"A11", "G11"}, {"F14", "F14"}} {
		if err := f.SetCellStyle(sheet, rng[0], rng[1], bold); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 16); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "C", "C", 48); err != nil {
		return nil, err
	}

	return f, nil
}
