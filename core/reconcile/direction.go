package reconcile

import (
	"context"
	"strings"
	"time"

	"calendar-sync/core/batch"

	"go.uber.org/zap"
)

// Syncer mirrors one direction at a time. It writes to calendars but never to the
// ledger; ledger mutations are returned as pending rows.
type Syncer struct {
	calendar Calendar
	logger   *zap.Logger
	batch    batch.Options
	now      func() time.Time
}

// NewSyncer creates a direction syncer. A nil logger discards logs.
func NewSyncer(calendar Calendar, opts batch.Options, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		calendar: calendar,
		logger:   logger,
		batch:    opts,
		now:      time.Now,
	}
}

// SyncDirection analyzes sourceEvents against records, creates missing copies and
// updates changed ones on dir.TargetCalendarID. A failed item is counted and logged;
// it never stops its siblings and produces no pending row.
func (s *Syncer) SyncDirection(ctx context.Context, sourceEvents []CalendarEvent, records []LedgerRecord, dir Direction) DirectionResult {
	return s.syncAnalysis(ctx, Analyze(sourceEvents, records, dir.SourceCalendarID, dir.TargetCalendarID), dir)
}

func (s *Syncer) syncAnalysis(ctx context.Context, analysis SyncAnalysis, dir Direction) DirectionResult {
	log := s.logger.With(zap.String("direction", dir.String()))

	result := DirectionResult{
		Stats: DirectionStats{
			Unchanged:        analysis.Unchanged,
			SkippedDuplicate: analysis.SkippedDuplicate,
		},
	}

	// Creates then updates, paced as one batch.
	work := make([]mutation, 0, len(analysis.ToCreate)+len(analysis.ToUpdate))
	for _, event := range analysis.ToCreate {
		work = append(work, mutation{event: event})
	}
	for _, u := range analysis.ToUpdate {
		u := u
		work = append(work, mutation{event: u.Event, update: &u})
	}

	results := batch.ProcessInBatches(ctx, work, s.batch,
		func(ctx context.Context, m mutation) (string, error) {
			if m.update != nil {
				return s.applyUpdate(ctx, *m.update, dir)
			}
			return s.calendar.CreateEvent(ctx, dir.TargetCalendarID, BuildMirror(m.event, dir.TitlePrefix))
		})

	for i, r := range results {
		m := work[i]
		if m.update == nil {
			s.collectCreate(&result, log, m.event, r, dir)
		} else {
			s.collectUpdate(&result, log, *m.update, r, dir)
		}
	}

	log.Info("Direction synced",
		zap.Int("created", result.Stats.Created),
		zap.Int("updated", result.Stats.Updated),
		zap.Int("unchanged", result.Stats.Unchanged),
		zap.Int("skipped_duplicate", result.Stats.SkippedDuplicate),
		zap.Int("errors", result.Stats.Errors))

	return result
}

// mutation is one calendar write of a direction: a create, or an update when
// update is set.
type mutation struct {
	event  CalendarEvent
	update *PendingUpdate
}

func (s *Syncer) collectCreate(result *DirectionResult, log *zap.Logger, event CalendarEvent, r batch.Result[string], dir Direction) {
	if r.Err != nil {
		result.Stats.Errors++
		log.Error("Failed to create mirror",
			zap.String("calendar_id", dir.SourceCalendarID),
			zap.String("event_id", event.ID),
			zap.Error(r.Err))
		return
	}

	result.Stats.Created++
	result.PendingInserts = append(result.PendingInserts, newRecord(event, dir, r.Value, s.now().UTC()))
	log.Debug("Created mirror",
		zap.String("event_id", event.ID),
		zap.String("secondary_event_id", r.Value))
}

func (s *Syncer) collectUpdate(result *DirectionResult, log *zap.Logger, u PendingUpdate, r batch.Result[string], dir Direction) {
	if r.Err != nil {
		result.Stats.Errors++
		log.Error("Failed to update mirror",
			zap.String("calendar_id", dir.SourceCalendarID),
			zap.String("event_id", u.Event.ID),
			zap.String("secondary_event_id", u.Record.SecondaryEventID),
			zap.Int("row_id", u.Record.RowID),
			zap.Error(r.Err))
		return
	}

	result.Stats.Updated++
	result.PendingUpdates = append(result.PendingUpdates, refreshRecord(u, dir, r.Value, s.now().UTC()))
}

// applyUpdate rewrites the copy tracked by u.Record and returns its secondary id.
// A copy deleted by hand on the target is created again under a new id.
func (s *Syncer) applyUpdate(ctx context.Context, u PendingUpdate, dir Direction) (string, error) {
	calendarID := targetCalendar(u.Record, dir)
	mirror := BuildMirror(u.Event, dir.TitlePrefix)

	err := s.calendar.UpdateEvent(ctx, calendarID, u.Record.SecondaryEventID, mirror)
	if err == nil {
		return u.Record.SecondaryEventID, nil
	}
	if !IsGone(err) {
		return "", err
	}

	s.logger.Warn("Mirror vanished, recreating",
		zap.String("calendar_id", calendarID),
		zap.String("secondary_event_id", u.Record.SecondaryEventID))
	return s.calendar.CreateEvent(ctx, calendarID, mirror)
}

func targetCalendar(record LedgerRecord, dir Direction) string {
	if record.SecondaryCalendarID != "" {
		return record.SecondaryCalendarID
	}
	return dir.TargetCalendarID
}

func newRecord(event CalendarEvent, dir Direction, secondaryID string, now time.Time) LedgerRecord {
	return LedgerRecord{
		PrimaryCalendarID:   dir.SourceCalendarID,
		PrimaryEventID:      event.ID,
		SecondaryCalendarID: dir.TargetCalendarID,
		SecondaryEventID:    secondaryID,
		Summary:             event.Summary,
		Start:               formatEventTime(event.Start),
		End:                 formatEventTime(event.End),
		Signature:           ComputeSignature(event),
		CreatedAt:           now,
		LastUpdated:         now,
		LastChecked:         now,
	}
}

func refreshRecord(u PendingUpdate, dir Direction, secondaryID string, now time.Time) LedgerRecord {
	record := u.Record
	record.SecondaryCalendarID = targetCalendar(u.Record, dir)
	record.SecondaryEventID = secondaryID
	record.Summary = u.Event.Summary
	record.Start = formatEventTime(u.Event.Start)
	record.End = formatEventTime(u.Event.End)
	record.Signature = ComputeSignature(u.Event)
	record.LastUpdated = now
	record.LastChecked = now
	return record
}

// BuildMirror returns the copy of src written to the other calendar: the title is
// prefixed, the description lists rooms and the conference link ahead of the
// original text and ends with SyncMarker, and attendees are dropped so no
// invitation is sent. Without an explicit location the first room becomes the
// location.
func BuildMirror(src CalendarEvent, prefix string) CalendarEvent {
	rooms := resourceNames(src.Attendees)

	location := src.Location
	if location == "" && len(rooms) > 0 {
		location = rooms[0]
	}

	return CalendarEvent{
		Summary:        strings.TrimSpace(prefix + " " + src.Summary),
		Start:          src.Start,
		End:            src.End,
		Location:       location,
		Description:    mirrorDescription(src, rooms),
		ConferenceLink: src.ConferenceLink,
		Transparency:   src.Transparency,
	}
}

func mirrorDescription(src CalendarEvent, rooms []string) string {
	var header []string
	if len(rooms) > 0 {
		header = append(header, "Rooms: "+strings.Join(rooms, ", "))
	}
	if src.ConferenceLink != "" {
		header = append(header, "Join: "+src.ConferenceLink)
	}

	var parts []string
	if len(header) > 0 {
		parts = append(parts, strings.Join(header, "\n"))
	}
	if d := strings.TrimSpace(src.Description); d != "" {
		parts = append(parts, d)
	}
	parts = append(parts, SyncMarker)

	return strings.Join(parts, "\n\n")
}

func resourceNames(attendees []Attendee) []string {
	var names []string
	for _, a := range attendees {
		if !a.IsResource {
			continue
		}
		name := strings.TrimSpace(a.DisplayName)
		if name == "" {
			name = strings.TrimSpace(a.Email)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
