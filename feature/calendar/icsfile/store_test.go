package icsfile

import (
	"context"
	"os"
	"testing"
	"time"

	"calendar-sync/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var window = reconcile.Window{
	Start: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 11, 17, 0, 0, 0, 0, time.UTC),
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func meeting(summary string, start time.Time) reconcile.CalendarEvent {
	return reconcile.CalendarEvent{
		Summary:     summary,
		Start:       reconcile.At(start, "Europe/Paris"),
		End:         reconcile.At(start.Add(time.Hour), "Europe/Paris"),
		Location:    "Room 1, floor 2",
		Description: "Agenda:\n\n1. status; 2. risks",
	}
}

func TestStore_RoundTripKeepsSignature(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	ev := meeting("Standup", start)
	ev.ConferenceLink = "https://meet.example.com/abc"
	ev.Transparency = reconcile.TransparencyTransparent

	id, err := s.CreateEvent(ctx, "a@example.com", ev)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	events, err := s.ListEvents(ctx, "a@example.com", window, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Europe/Paris", got.Start.(reconcile.Instant).TimeZone)
	assert.True(t, start.Equal(got.Start.Time()))
	ev.ID = id
	assert.Equal(t, reconcile.ComputeSignature(ev), reconcile.ComputeSignature(got))
}

func TestStore_AllDayAndOrdering(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.CreateEvent(ctx, "a@example.com", meeting("Late", time.Date(2026, 10, 25, 15, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = s.CreateEvent(ctx, "a@example.com", reconcile.CalendarEvent{
		Summary: "Holiday",
		Start:   reconcile.OnDate(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)),
		End:     reconcile.OnDate(time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	_, err = s.CreateEvent(ctx, "a@example.com", meeting("Past", time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	events, err := s.ListEvents(ctx, "a@example.com", window, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Holiday", events[0].Summary)
	assert.Equal(t, "2026-10-20", events[0].Start.String())
	assert.Equal(t, "Late", events[1].Summary)

	capped, err := s.ListEvents(ctx, "a@example.com", window, 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}

func TestStore_UpdateDeleteGone(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.CreateEvent(ctx, "b@example.com", meeting("Review", time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	updated := meeting("Review (moved)", time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.UpdateEvent(ctx, "b@example.com", id, updated))

	events, err := s.ListEvents(ctx, "b@example.com", window, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Review (moved)", events[0].Summary)

	require.NoError(t, s.DeleteEvent(ctx, "b@example.com", id))
	assert.ErrorIs(t, s.DeleteEvent(ctx, "b@example.com", id), reconcile.ErrEventGone)
	assert.ErrorIs(t, s.UpdateEvent(ctx, "b@example.com", id, updated), reconcile.ErrEventGone)
}

func TestStore_ReadsForeignFile(t *testing.T) {
	s := newStore(t)
	body := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:ext-1\r\n" +
		"SUMMARY:Board meeting\r\n" +
		"DTSTART;TZID=Europe/Paris:20261019T110000\r\n" +
		"DTEND;TZID=Europe/Paris:20261019T120000\r\n" +
		"ATTENDEE;CN=Boardroom;CUTYPE=ROOM:mailto:boardroom@resource.example.com\r\n" +
		"ATTENDEE;CN=Bob:mailto:b@example.com\r\n" +
		"END:VEVENT\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:ext-2\r\n" +
		"SUMMARY:Cancelled\r\n" +
		"STATUS:CANCELLED\r\n" +
		"DTSTART:20261019T130000Z\r\n" +
		"DTEND:20261019T140000Z\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	require.NoError(t, os.WriteFile(s.Path("a@example.com"), []byte(body), 0o644))

	events, err := s.ListEvents(context.Background(), "a@example.com", window, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "ext-1", ev.ID)
	assert.Equal(t, "2026-10-19T09:00:00Z", ev.Start.String())
	require.Len(t, ev.Attendees, 2)
	assert.True(t, ev.Attendees[0].IsResource)
	assert.Equal(t, "Boardroom", ev.Attendees[0].DisplayName)
	assert.True(t, reconcile.IsTargetInAttendees(ev, "b@example.com"))
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := newStore(t)
	events, err := s.ListEvents(context.Background(), "nobody@example.com", window, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_CancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateEvent(ctx, "a@example.com", reconcile.CalendarEvent{Summary: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
