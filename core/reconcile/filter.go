package reconcile

import "strings"

// SyncMarker tags the description of every copy the engine writes.
const SyncMarker = "[calendar-sync:mirror]"

// IsSyncedCopy reports whether event is a copy written by this engine.
func IsSyncedCopy(event CalendarEvent) bool {
	return strings.Contains(event.Description, SyncMarker)
}

// IsTargetInAttendees reports whether the target calendar is invited to event.
// Both calendars then already see the event and mirroring it would duplicate it.
func IsTargetInAttendees(event CalendarEvent, targetCalendarID string) bool {
	if targetCalendarID == "" {
		return false
	}
	for _, a := range event.Attendees {
		if strings.EqualFold(strings.TrimSpace(a.Email), targetCalendarID) {
			return true
		}
	}
	return false
}

// isDuplicate applies the two event-level rules of the duplicate filter.
func isDuplicate(event CalendarEvent, targetCalendarID string) bool {
	return IsSyncedCopy(event) || IsTargetInAttendees(event, targetCalendarID)
}
