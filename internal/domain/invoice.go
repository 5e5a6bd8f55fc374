package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID            int64           `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	ClientID      int64           `json:"clientID"`
	PeriodStart   time.Time       `json:"periodStart"`
	PeriodEnd     time.Time       `json:"periodEnd"`
	ShiftCount    int32           `json:"shiftCount"`
	Total         decimal.Decimal `json:"total"`
	SentAt        *time.Time      `json:"sentAt"`
	Lines         []InvoiceLine   `json:"lines,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	Version       int32           `json:"-"`
}

// InvoiceLine is a breakdown line frozen at the time the invoice was generated.
type InvoiceLine struct {
	ID          int64           `json:"id"`
	ShiftID     int64           `json:"shiftID"`
	ShiftDate   time.Time       `json:"shiftDate"`
	CarerName   string          `json:"carerName"`
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
	Cost        decimal.Decimal `json:"cost"`
}
