package billing_test

import (
	"encoding/json"
	"testing"

	"github.com/carelink-ndis/care-roster/backend/internal/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := map[string]billing.TimeOfDay{
		"00:00":    0,
		"06:30":    390,
		"17:45:00": 1065,
		"23:59":    1439,
		"24:00":    billing.MinutesPerDay,
	}
	for in, want := range cases {
		got, err := billing.ParseTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "25:00", "9am", "12:60"} {
		_, err := billing.ParseTimeOfDay(in)
		assert.Error(t, err, in)
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	var payload struct {
		From billing.TimeOfDay  `json:"from"`
		To   *billing.TimeOfDay `json:"to"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"from":"06:00","to":null}`), &payload))
	assert.Equal(t, billing.NewTimeOfDay(6, 0), payload.From)
	assert.Nil(t, payload.To)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"06:00","to":null}`, string(out))
}
