package reconcile_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"calendar-sync/core/batch"
	"calendar-sync/core/reconcile"
)

const (
	calA = "a@example.com"
	calB = "b@example.com"
)

var (
	passClock = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	tomorrow  = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
)

func testOptions() reconcile.Options {
	return reconcile.Options{
		CalendarA: calA,
		CalendarB: calB,
		PrefixA:   "[A]",
		PrefixB:   "[B]",
		DaysAhead: 30,
		MaxEvents: 250,
		Batch:     batch.Options{Size: 2},
	}
}

func event(id, summary string, offset time.Duration) reconcile.CalendarEvent {
	start := tomorrow.Add(offset)
	return reconcile.CalendarEvent{
		ID:      id,
		Summary: summary,
		Start:   reconcile.At(start, "UTC"),
		End:     reconcile.At(start.Add(30*time.Minute), "UTC"),
	}
}

// fakeCalendar is an in-memory multi-calendar store.
type fakeCalendar struct {
	mu     sync.Mutex
	events map[string][]reconcile.CalendarEvent
	nextID int

	listErr   map[string]error
	createErr func(calendarID string, event reconcile.CalendarEvent) error
	updateErr map[string]error
	deleteErr map[string]error

	creates, updates, deletes int
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{
		events:    map[string][]reconcile.CalendarEvent{},
		listErr:   map[string]error{},
		updateErr: map[string]error{},
		deleteErr: map[string]error{},
	}
}

func (f *fakeCalendar) put(calendarID string, ev reconcile.CalendarEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.events[calendarID] {
		if e.ID == ev.ID {
			f.events[calendarID][i] = ev
			return
		}
	}
	f.events[calendarID] = append(f.events[calendarID], ev)
}

func (f *fakeCalendar) remove(calendarID, eventID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.events[calendarID]
	for i, e := range events {
		if e.ID == eventID {
			f.events[calendarID] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeCalendar) get(calendarID, eventID string) (reconcile.CalendarEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events[calendarID] {
		if e.ID == eventID {
			return e, true
		}
	}
	return reconcile.CalendarEvent{}, false
}

func (f *fakeCalendar) list(calendarID string) []reconcile.CalendarEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reconcile.CalendarEvent(nil), f.events[calendarID]...)
}

func (f *fakeCalendar) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates + f.updates + f.deletes
}

func (f *fakeCalendar) ListEvents(_ context.Context, calendarID string, _ reconcile.Window, maxResults int) ([]reconcile.CalendarEvent, error) {
	if err := f.listErr[calendarID]; err != nil {
		return nil, err
	}
	events := f.list(calendarID)
	if maxResults > 0 && len(events) > maxResults {
		events = events[:maxResults]
	}
	return events, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, calendarID string, ev reconcile.CalendarEvent) (string, error) {
	if f.createErr != nil {
		if err := f.createErr(calendarID, ev); err != nil {
			return "", err
		}
	}
	f.mu.Lock()
	f.nextID++
	f.creates++
	ev.ID = fmt.Sprintf("m%d", f.nextID)
	f.mu.Unlock()

	f.put(calendarID, ev)
	return ev.ID, nil
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, calendarID, eventID string, ev reconcile.CalendarEvent) error {
	if err := f.updateErr[eventID]; err != nil {
		return err
	}
	if _, ok := f.get(calendarID, eventID); !ok {
		return reconcile.ErrEventGone
	}
	f.mu.Lock()
	f.updates++
	f.mu.Unlock()

	ev.ID = eventID
	f.put(calendarID, ev)
	return nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, calendarID, eventID string) error {
	if err := f.deleteErr[eventID]; err != nil {
		return err
	}
	if !f.remove(calendarID, eventID) {
		return reconcile.ErrEventGone
	}
	f.mu.Lock()
	f.deletes++
	f.mu.Unlock()
	return nil
}

// timedCalendar records when each write started.
type timedCalendar struct {
	*fakeCalendar
	mu                   sync.Mutex
	createdAt, updatedAt []time.Time
}

func (c *timedCalendar) CreateEvent(ctx context.Context, calendarID string, ev reconcile.CalendarEvent) (string, error) {
	c.mu.Lock()
	c.createdAt = append(c.createdAt, time.Now())
	c.mu.Unlock()
	return c.fakeCalendar.CreateEvent(ctx, calendarID, ev)
}

func (c *timedCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, ev reconcile.CalendarEvent) error {
	c.mu.Lock()
	c.updatedAt = append(c.updatedAt, time.Now())
	c.mu.Unlock()
	return c.fakeCalendar.UpdateEvent(ctx, calendarID, eventID, ev)
}

// fakeLedger behaves like a sheet: row ids are positions starting at 2, and a
// delete shifts every row below it.
type fakeLedger struct {
	mu   sync.Mutex
	rows []reconcile.LedgerRecord

	loadErr   error
	insertErr error

	loads, inserts, updates, deletes, structuralLookups int
	deleteOrders                                        [][]int
}

func (l *fakeLedger) LoadAll(context.Context) ([]reconcile.LedgerRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads++
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	out := make([]reconcile.LedgerRecord, len(l.rows))
	for i, r := range l.rows {
		r.RowID = i + 2
		out[i] = r
	}
	return out, nil
}

func (l *fakeLedger) BatchInsert(_ context.Context, records []reconcile.LedgerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inserts++
	if l.insertErr != nil {
		return l.insertErr
	}
	l.rows = append(l.rows, records...)
	return nil
}

func (l *fakeLedger) BatchUpdate(_ context.Context, records []reconcile.LedgerRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates++
	for _, r := range records {
		idx := r.RowID - 2
		if idx < 0 || idx >= len(l.rows) {
			return fmt.Errorf("row %d out of range", r.RowID)
		}
		l.rows[idx] = r
	}
	return nil
}

func (l *fakeLedger) BatchDelete(_ context.Context, _ int64, rowIDs []int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deletes++
	l.deleteOrders = append(l.deleteOrders, append([]int(nil), rowIDs...))
	if !sort.SliceIsSorted(rowIDs, func(i, j int) bool { return rowIDs[i] > rowIDs[j] }) {
		return fmt.Errorf("rows not descending: %v", rowIDs)
	}
	for _, id := range rowIDs {
		idx := id - 2
		l.rows = append(l.rows[:idx:idx], l.rows[idx+1:]...)
	}
	return nil
}

func (l *fakeLedger) StructuralID(context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.structuralLookups++
	return 42, nil
}

// records returns the current rows with their row ids, without counting a load.
func (l *fakeLedger) records() []reconcile.LedgerRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]reconcile.LedgerRecord, len(l.rows))
	for i, r := range l.rows {
		r.RowID = i + 2
		out[i] = r
	}
	return out
}

// memJournal is an in-memory reconcile.Journal.
type memJournal struct {
	mu      sync.Mutex
	entries map[reconcile.RecordKey]reconcile.LedgerRecord
}

func newMemJournal() *memJournal {
	return &memJournal{entries: map[reconcile.RecordKey]reconcile.LedgerRecord{}}
}

func (j *memJournal) Record(records []reconcile.LedgerRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, r := range records {
		j.entries[r.Key()] = r
	}
	return nil
}

func (j *memJournal) Pending() ([]reconcile.LedgerRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]reconcile.LedgerRecord, 0, len(j.entries))
	for _, r := range j.entries {
		out = append(out, r)
	}
	return out, nil
}

func (j *memJournal) Clear(records []reconcile.LedgerRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, r := range records {
		delete(j.entries, r.Key())
	}
	return nil
}

// recordingNotifier keeps every message.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}
