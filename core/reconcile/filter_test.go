package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSyncedCopy(t *testing.T) {
	assert.True(t, IsSyncedCopy(CalendarEvent{Description: "Notes\n\n" + SyncMarker}))
	assert.True(t, IsSyncedCopy(BuildMirror(standup(), "[A]")))
	assert.False(t, IsSyncedCopy(CalendarEvent{Description: "Notes"}))
	assert.False(t, IsSyncedCopy(CalendarEvent{}))
}

func TestIsTargetInAttendees(t *testing.T) {
	event := CalendarEvent{Attendees: []Attendee{
		{Email: "alice@example.com"},
		{Email: " Team-B@Example.com "},
	}}

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"Exact", "alice@example.com", true},
		{"CaseAndSpace", "team-b@example.com", true},
		{"Absent", "carol@example.com", false},
		{"EmptyTarget", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTargetInAttendees(event, tt.target))
		})
	}
}
