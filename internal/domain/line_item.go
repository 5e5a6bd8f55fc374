package domain

import (
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
)

type LineItem struct {
	ID int64 `json:"id"`
	billing.LineItem
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

func RateCard(items []*LineItem) []billing.LineItem {
	card := make([]billing.LineItem, 0, len(items))
	for _, it := range items {
		card = append(card, it.LineItem)
	}
	return card
}
