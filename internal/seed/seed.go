package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/carelink-ndis/care-roster/backend/internal/utils"
	"github.com/shopspring/decimal"
)

var rateCardHeader = []string{
	"category", "description", "code", "time_from", "time_to",
	"weekday", "saturday", "sunday", "sleepover", "billed_rate",
}

// LineItemStore is the part of the repository the rate card import writes to.
type LineItemStore interface {
	CreateLineItem(ctx context.Context, it *domain.LineItem) error
}

// ParseRateCard reads rate card rows. Empty time columns leave the window open
// at that edge.
func ParseRateCard(r io.Reader) ([]billing.LineItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(rateCardHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(rateCardHeader), len(header))
	}
	for i, name := range rateCardHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != name {
			return nil, fmt.Errorf("column %d: expected %q, got %q", i+1, name, header[i])
		}
	}

	items := make([]billing.LineItem, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		it, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, it)
	}

	return items, nil
}

func parseRow(row []string) (billing.LineItem, error) {
	it := billing.LineItem{
		Category:    strings.TrimSpace(row[0]),
		Description: strings.TrimSpace(row[1]),
		Code:        strings.TrimSpace(row[2]),
	}

	var err error
	if it.TimeFrom, err = utils.ParseOptionalTimeOfDay(strings.TrimSpace(row[3])); err != nil {
		return it, err
	}
	if it.TimeTo, err = utils.ParseOptionalTimeOfDay(strings.TrimSpace(row[4])); err != nil {
		return it, err
	}

	flags := []*bool{&it.AppliesWeekday, &it.AppliesSaturday, &it.AppliesSunday, &it.IsSleepover}
	for i, dst := range flags {
		v, err := strconv.ParseBool(strings.TrimSpace(row[5+i]))
		if err != nil {
			return it, fmt.Errorf("column %s: %w", rateCardHeader[5+i], err)
		}
		*dst = v
	}

	if it.BilledRate, err = decimal.NewFromString(strings.TrimSpace(row[9])); err != nil {
		return it, fmt.Errorf("column billed_rate: %w", err)
	}

	if it.Category == "" || it.Code == "" {
		return it, errors.New("category and code are required")
	}

	return it, utils.ValidateLineItem(&it)
}

// ImportRateCard loads the CSV at path into the store and returns how many rows
// were written. Rows that fail to insert are logged and skipped.
func ImportRateCard(ctx context.Context, store LineItemStore, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	items, err := ParseRateCard(file)
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, it := range items {
		if err := store.CreateLineItem(ctx, &domain.LineItem{LineItem: it}); err != nil {
			slog.Error("failed to insert line item", slog.String("category", it.Category), slog.String("code", it.Code), slog.String("error", err.Error()))
			continue
		}
		cnt++
	}

	return cnt, nil
}
