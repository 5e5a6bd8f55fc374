// Package calendar pushes rostered shifts to a Google Calendar.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/carelink-ndis/care-roster/backend/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
}

type Syncer struct {
	svc        *calendar.Service
	calendarID string
	loc        *time.Location
}

// NewSyncer builds a calendar client that refreshes its access token from
// the stored refresh token.
func NewSyncer(ctx context.Context, creds Credentials, loc *time.Location) (*Syncer, error) {
	cfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Scopes:       []string{calendar.CalendarEventsScope},
		Endpoint:     google.Endpoint,
	}
	token := &oauth2.Token{RefreshToken: creds.RefreshToken}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	calendarID := creds.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Syncer{svc: svc, calendarID: calendarID, loc: loc}, nil
}

// BuildEvent describes a shift as a calendar event in loc.
func BuildEvent(shift *domain.Shift, carer *domain.Carer, client *domain.Client, loc *time.Location) *calendar.Event {
	desc := []string{
		"Category: " + shift.Category,
		"Carer: " + carer.FullName(),
		"Participant: " + client.FullName(),
	}
	if client.Address != "" {
		desc = append(desc, "Address: "+client.Address)
	}
	if shift.Notes != "" {
		desc = append(desc, "", shift.Notes)
	}

	event := &calendar.Event{
		Summary:     fmt.Sprintf("%s with %s", client.FullName(), carer.FullName()),
		Description: strings.Join(desc, "\n"),
		Location:    client.Address,
		Start: &calendar.EventDateTime{
			DateTime: shift.StartTime.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: shift.EndTime.In(loc).Format(time.RFC3339),
			TimeZone: loc.String(),
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{"shiftID": strconv.FormatInt(shift.ID, 10)},
		},
	}
	if carer.Email != "" {
		event.Attendees = []*calendar.EventAttendee{{Email: carer.Email, DisplayName: carer.FullName()}}
	}

	return event
}

// Push creates the shift's event, or updates it when the shift already has
// one. An event deleted on the calendar side is recreated. It returns the
// event ID to store on the shift.
func (s *Syncer) Push(ctx context.Context, shift *domain.Shift, carer *domain.Carer, client *domain.Client) (string, error) {
	event := BuildEvent(shift, carer, client, s.loc)

	if shift.CalendarEventID != nil && *shift.CalendarEventID != "" {
		updated, err := s.svc.Events.Update(s.calendarID, *shift.CalendarEventID, event).Context(ctx).Do()
		if err == nil {
			return updated.Id, nil
		}
		if !isGone(err) {
			return "", fmt.Errorf("update calendar event: %w", err)
		}
	}

	created, err := s.svc.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.Id, nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
}
