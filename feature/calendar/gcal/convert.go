package gcal

import (
	"fmt"
	"strings"
	"time"

	"calendar-sync/core/reconcile"

	"google.golang.org/api/calendar/v3"
)

const (
	statusCancelled = "cancelled"
	entryPointVideo = "video"

	// mirrorProperty tags copies on the server side. A copy keeps being recognised
	// after someone strips the marker from its description.
	mirrorProperty = "calendarSyncMirror"
)

func toEvent(ev *calendar.Event) (reconcile.CalendarEvent, error) {
	start, err := toEventTime(ev.Start)
	if err != nil {
		return reconcile.CalendarEvent{}, fmt.Errorf("event %s start: %w", ev.Id, err)
	}
	end, err := toEventTime(ev.End)
	if err != nil {
		return reconcile.CalendarEvent{}, fmt.Errorf("event %s end: %w", ev.Id, err)
	}

	out := reconcile.CalendarEvent{
		ID:             ev.Id,
		Summary:        ev.Summary,
		Start:          start,
		End:            end,
		Location:       ev.Location,
		Description:    ev.Description,
		ConferenceLink: conferenceLink(ev),
		Transparency:   reconcile.Transparency(ev.Transparency),
		Status:         ev.Status,
	}
	if isMirror(ev) && !reconcile.IsSyncedCopy(out) {
		out.Description = strings.TrimRight(out.Description, "\n") + "\n\n" + reconcile.SyncMarker
	}
	for _, a := range ev.Attendees {
		if a == nil {
			continue
		}
		out.Attendees = append(out.Attendees, reconcile.Attendee{
			Email:       a.Email,
			DisplayName: a.DisplayName,
			IsResource:  a.Resource,
		})
	}
	return out, nil
}

func isMirror(ev *calendar.Event) bool {
	return ev.ExtendedProperties != nil && ev.ExtendedProperties.Private[mirrorProperty] == "true"
}

func toEventTime(edt *calendar.EventDateTime) (reconcile.EventTime, error) {
	switch {
	case edt == nil:
		return nil, nil
	case edt.DateTime != "":
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return nil, err
		}
		return reconcile.At(t, edt.TimeZone), nil
	case edt.Date != "":
		return reconcile.ParseEventTime(edt.Date)
	default:
		return nil, nil
	}
}

func conferenceLink(ev *calendar.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData == nil {
		return ""
	}
	for _, ep := range ev.ConferenceData.EntryPoints {
		if ep != nil && ep.EntryPointType == entryPointVideo && ep.Uri != "" {
			return ep.Uri
		}
	}
	return ""
}

// fromEvent builds the request body for a copy. Attendees are never sent.
func fromEvent(ev reconcile.CalendarEvent) *calendar.Event {
	out := &calendar.Event{
		Summary:      ev.Summary,
		Description:  ev.Description,
		Location:     ev.Location,
		Start:        fromEventTime(ev.Start),
		End:          fromEventTime(ev.End),
		Transparency: string(ev.Transparency),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{mirrorProperty: "true"},
		},
	}
	return out
}

func fromEventTime(t reconcile.EventTime) *calendar.EventDateTime {
	switch v := t.(type) {
	case reconcile.Instant:
		return &calendar.EventDateTime{DateTime: v.At.Format(time.RFC3339), TimeZone: v.TimeZone}
	case reconcile.AllDay:
		return &calendar.EventDateTime{Date: v.String()}
	default:
		return nil
	}
}
