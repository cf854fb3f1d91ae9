package icsfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"calendar-sync/core/reconcile"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productID = "-//calendar-sync//icsfile//EN"

// Store is a reconcile.Calendar backed by <dir>/<calendarID>.ics.
type Store struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

var _ reconcile.Calendar = (*Store)(nil)

// New creates a store rooted at dir, creating the directory when missing.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ics dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Path returns the file holding calendarID.
func (s *Store) Path(calendarID string) string {
	return filepath.Join(s.dir, calendarID+".ics")
}

// ListEvents returns events overlapping window ordered by start, at most maxResults.
func (s *Store) ListEvents(ctx context.Context, calendarID string, window reconcile.Window, maxResults int) ([]reconcile.CalendarEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.read(calendarID)
	if err != nil {
		return nil, err
	}

	var out []reconcile.CalendarEvent
	for _, ev := range events {
		if strings.EqualFold(ev.Status, "cancelled") || !overlaps(ev, window) {
			continue
		}
		out = append(out, ev)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return startOf(out[i]).Before(startOf(out[j]))
	})
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

// CreateEvent appends event under a fresh uid.
func (s *Store) CreateEvent(ctx context.Context, calendarID string, event reconcile.CalendarEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.read(calendarID)
	if err != nil {
		return "", err
	}
	event.ID = uuid.NewString()
	event.Attendees = nil
	events = append(events, event)
	if err := s.write(calendarID, events); err != nil {
		return "", err
	}
	return event.ID, nil
}

// UpdateEvent replaces eventID. Missing or cancelled events yield reconcile.ErrEventGone.
func (s *Store) UpdateEvent(ctx context.Context, calendarID, eventID string, event reconcile.CalendarEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.read(calendarID)
	if err != nil {
		return err
	}
	idx := indexOf(events, eventID)
	if idx < 0 || strings.EqualFold(events[idx].Status, "cancelled") {
		return fmt.Errorf("update event %s on %s: %w", eventID, calendarID, reconcile.ErrEventGone)
	}
	event.ID = eventID
	event.Attendees = nil
	events[idx] = event
	return s.write(calendarID, events)
}

// DeleteEvent removes eventID. Missing events yield reconcile.ErrEventGone.
func (s *Store) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.read(calendarID)
	if err != nil {
		return err
	}
	idx := indexOf(events, eventID)
	if idx < 0 {
		return fmt.Errorf("delete event %s on %s: %w", eventID, calendarID, reconcile.ErrEventGone)
	}
	events = append(events[:idx], events[idx+1:]...)
	return s.write(calendarID, events)
}

// read loads every event of calendarID. A missing file is an empty calendar.
func (s *Store) read(calendarID string) ([]reconcile.CalendarEvent, error) {
	f, err := os.Open(s.Path(calendarID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open calendar %s: %w", calendarID, err)
	}
	defer f.Close()

	cal, err := ical.ParseCalendar(f)
	if err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", calendarID, err)
	}

	var events []reconcile.CalendarEvent
	for _, ve := range cal.Events() {
		ev, err := decodeEvent(ve)
		if err != nil {
			s.logger.Warn("Skipping unreadable event",
				zap.String("calendar_id", calendarID),
				zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// write replaces the file atomically.
func (s *Store) write(calendarID string, events []reconcile.CalendarEvent) error {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	for _, ev := range events {
		encodeEvent(cal.AddEvent(ev.ID), ev)
	}

	tmp, err := os.CreateTemp(s.dir, calendarID+".*.tmp")
	if err != nil {
		return fmt.Errorf("write calendar %s: %w", calendarID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(cal.Serialize()); err != nil {
		tmp.Close()
		return fmt.Errorf("write calendar %s: %w", calendarID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write calendar %s: %w", calendarID, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(calendarID)); err != nil {
		return fmt.Errorf("write calendar %s: %w", calendarID, err)
	}
	return nil
}

func indexOf(events []reconcile.CalendarEvent, id string) int {
	for i, ev := range events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}
