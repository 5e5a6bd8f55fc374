package domain

import "time"

// Client is an NDIS participant receiving care.
type Client struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	NDISNumber   string    `json:"ndisNumber"`
	Address      string    `json:"address"`
	InvoiceEmail string    `json:"invoiceEmail"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
