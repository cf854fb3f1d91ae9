package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var standupStart = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func standup() CalendarEvent {
	return CalendarEvent{
		ID:          "e1",
		Summary:     "Standup",
		Start:       At(standupStart, "Europe/Paris"),
		End:         At(standupStart.Add(30*time.Minute), "Europe/Paris"),
		Location:    "Room 1",
		Description: "Daily sync",
	}
}

func TestComputeSignature_Deterministic(t *testing.T) {
	a := ComputeSignature(standup())
	b := ComputeSignature(standup())

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestComputeSignature_IgnoresNonContentFields(t *testing.T) {
	base := standup()
	sig := ComputeSignature(base)

	changed := base
	changed.Attendees = []Attendee{{Email: "bob@example.com"}, {Email: "room@resource.example.com", IsResource: true}}
	changed.Status = "tentative"
	changed.ID = "other"

	assert.Equal(t, sig, ComputeSignature(changed))
}

func TestComputeSignature_DetectsContentChanges(t *testing.T) {
	base := standup()
	sig := ComputeSignature(base)

	tests := []struct {
		name   string
		modify func(*CalendarEvent)
	}{
		{"Title", func(e *CalendarEvent) { e.Summary = "Standup (moved)" }},
		{"Start", func(e *CalendarEvent) { e.Start = At(standupStart.Add(time.Hour), "Europe/Paris") }},
		{"End", func(e *CalendarEvent) { e.End = At(standupStart.Add(time.Hour), "Europe/Paris") }},
		{"TimeZone", func(e *CalendarEvent) { e.Start = At(standupStart, "UTC") }},
		{"AllDay", func(e *CalendarEvent) { e.Start = OnDate(standupStart) }},
		{"Location", func(e *CalendarEvent) { e.Location = "Room 2" }},
		{"Transparency", func(e *CalendarEvent) { e.Transparency = TransparencyTransparent }},
		{"ConferenceLink", func(e *CalendarEvent) { e.ConferenceLink = "https://meet.example.com/abc" }},
		{"Description", func(e *CalendarEvent) { e.Description = "Weekly sync" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := standup()
			tt.modify(&e)
			assert.NotEqual(t, sig, ComputeSignature(e))
		})
	}
}

func TestComputeSignature_DefaultTransparencyIsOpaque(t *testing.T) {
	unset := standup()
	opaque := standup()
	opaque.Transparency = TransparencyOpaque

	assert.Equal(t, ComputeSignature(unset), ComputeSignature(opaque))
}

func TestComputeSignature_SameInstantDifferentOffset(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	e1 := standup()
	e2 := standup()
	e2.Start = At(standupStart.In(paris), "Europe/Paris")

	assert.Equal(t, ComputeSignature(e1), ComputeSignature(e2))
}

func TestComputeSignature_UnicodeNormalization(t *testing.T) {
	composed := standup()
	composed.Summary = "Caf\u00e9"
	decomposed := standup()
	decomposed.Summary = "Cafe\u0301"

	assert.Equal(t, ComputeSignature(composed), ComputeSignature(decomposed))
}
