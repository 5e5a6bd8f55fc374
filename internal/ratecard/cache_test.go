package ratecard

import (
	"context"
	"testing"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls int
	items map[string][]*domain.LineItem
}

func (f *fakeSource) GetLineItemsByCategory(_ context.Context, category string) ([]*domain.LineItem, error) {
	f.calls++
	return f.items[category], nil
}

func tod(h, m int) *billing.TimeOfDay {
	t := billing.NewTimeOfDay(h, m)
	return &t
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ratecard:SIL", Key("SIL"))
}

func TestEncodeDecodeKeepsOpenWindows(t *testing.T) {
	items := []billing.LineItem{
		{Category: "SIL", Code: "01_011", TimeFrom: tod(6, 0), TimeTo: tod(20, 0), AppliesWeekday: true, BilledRate: decimal.RequireFromString("67.56")},
		{Category: "SIL", Code: "01_002", AppliesSunday: true, BilledRate: decimal.RequireFromString("119.04")},
	}

	raw, err := encode(items)
	require.NoError(t, err)

	got, err := decode(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NotNil(t, got[0].TimeFrom)
	assert.Equal(t, "06:00", got[0].TimeFrom.String())
	assert.Equal(t, "20:00", got[0].TimeTo.String())
	assert.Nil(t, got[1].TimeFrom)
	assert.Nil(t, got[1].TimeTo)
	assert.True(t, got[1].BilledRate.Equal(decimal.RequireFromString("119.04")))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode([]byte("not json"))
	assert.Error(t, err)
}

func TestItemsFallsBackToSourceWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	src := &fakeSource{items: map[string][]*domain.LineItem{
		"SIL": {{ID: 1, LineItem: billing.LineItem{Category: "SIL", Code: "01_011", AppliesWeekday: true, BilledRate: decimal.NewFromInt(60)}}},
	}}
	cache := NewCache(rdb, src, time.Minute)

	items, err := cache.Items(context.Background(), "SIL")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "01_011", items[0].Code)
	assert.Equal(t, 1, src.calls)

	// invalidation failures are only logged
	cache.Invalidate(context.Background(), "SIL")
}
