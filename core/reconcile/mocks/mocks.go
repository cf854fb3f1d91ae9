package mocks

import (
	"context"

	"calendar-sync/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Calendar is a mock implementation of reconcile.Calendar
type Calendar struct {
	mock.Mock
}

func (m *Calendar) ListEvents(ctx context.Context, calendarID string, window reconcile.Window, maxResults int) ([]reconcile.CalendarEvent, error) {
	args := m.Called(ctx, calendarID, window, maxResults)
	if events, ok := args.Get(0).([]reconcile.CalendarEvent); ok {
		return events, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Calendar) CreateEvent(ctx context.Context, calendarID string, event reconcile.CalendarEvent) (string, error) {
	args := m.Called(ctx, calendarID, event)
	return args.String(0), args.Error(1)
}

func (m *Calendar) UpdateEvent(ctx context.Context, calendarID, eventID string, event reconcile.CalendarEvent) error {
	args := m.Called(ctx, calendarID, eventID, event)
	return args.Error(0)
}

func (m *Calendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	args := m.Called(ctx, calendarID, eventID)
	return args.Error(0)
}

// Ledger is a mock implementation of reconcile.Ledger
type Ledger struct {
	mock.Mock
}

func (m *Ledger) LoadAll(ctx context.Context) ([]reconcile.LedgerRecord, error) {
	args := m.Called(ctx)
	if records, ok := args.Get(0).([]reconcile.LedgerRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Ledger) BatchInsert(ctx context.Context, records []reconcile.LedgerRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *Ledger) BatchUpdate(ctx context.Context, records []reconcile.LedgerRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *Ledger) BatchDelete(ctx context.Context, structuralID int64, rowIDs []int) error {
	args := m.Called(ctx, structuralID, rowIDs)
	return args.Error(0)
}

func (m *Ledger) StructuralID(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Notifier is a mock implementation of reconcile.Notifier
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Notify(ctx context.Context, message string) {
	m.Called(ctx, message)
}
