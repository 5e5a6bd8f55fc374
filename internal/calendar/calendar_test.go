package calendar

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	_ "time/tzdata"
)

func TestBuildEvent(t *testing.T) {
	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	start := time.Date(2025, time.March, 5, 22, 0, 0, 0, loc)
	shift := &domain.Shift{
		ID:        42,
		Category:  "SIL",
		ShiftDate: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
		StartTime: start.UTC(),
		EndTime:   start.Add(8 * time.Hour).UTC(),
		Notes:     "Bring the lifting belt",
	}
	carer := &domain.Carer{FirstName: "Jane", LastName: "Carer", Email: "jane@example.com"}
	client := &domain.Client{FirstName: "Sam", LastName: "Client", Address: "1 George St, Sydney"}

	event := BuildEvent(shift, carer, client, loc)

	assert.Equal(t, "Sam Client with Jane Carer", event.Summary)
	assert.Equal(t, "2025-03-05T22:00:00+11:00", event.Start.DateTime)
	assert.Equal(t, "2025-03-06T06:00:00+11:00", event.End.DateTime)
	assert.Equal(t, "Australia/Sydney", event.Start.TimeZone)
	assert.Equal(t, "1 George St, Sydney", event.Location)
	assert.Contains(t, event.Description, "Category: SIL")
	assert.Contains(t, event.Description, "Bring the lifting belt")
	assert.Equal(t, "42", event.ExtendedProperties.Private["shiftID"])
	require.Len(t, event.Attendees, 1)
	assert.Equal(t, "jane@example.com", event.Attendees[0].Email)
}

func TestBuildEventWithoutCarerEmail(t *testing.T) {
	shift := &domain.Shift{StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	event := BuildEvent(shift, &domain.Carer{FirstName: "A", LastName: "B"}, &domain.Client{FirstName: "C", LastName: "D"}, time.UTC)

	assert.Empty(t, event.Attendees)
	assert.NotContains(t, event.Description, "Address:")
}

func TestIsGone(t *testing.T) {
	assert.True(t, isGone(&googleapi.Error{Code: http.StatusNotFound}))
	assert.True(t, isGone(fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusGone})))
	assert.False(t, isGone(&googleapi.Error{Code: http.StatusForbidden}))
	assert.False(t, isGone(fmt.Errorf("boom")))
}
