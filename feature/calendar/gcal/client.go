package gcal

import (
	"context"
	"fmt"
	"time"

	"calendar-sync/core/gapi"
	"calendar-sync/core/reconcile"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// maxPageSize is the largest page the Events.List endpoint serves.
const maxPageSize = 2500

// Client is a reconcile.Calendar backed by Google Calendar.
type Client struct {
	svc    *calendar.Service
	guard  *gapi.Guard
	logger *zap.Logger
}

var _ reconcile.Calendar = (*Client)(nil)

// New creates a client. Extra options are appended to the configured ones.
func New(ctx context.Context, cfg gapi.Config, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc, err := calendar.NewService(ctx, append(cfg.ClientOptions(calendar.CalendarScope), opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{
		svc:    svc,
		guard:  gapi.NewGuard("google-calendar", cfg, logger),
		logger: logger,
	}, nil
}

// ListEvents returns up to maxResults confirmed or tentative events overlapping window.
func (c *Client) ListEvents(ctx context.Context, calendarID string, window reconcile.Window, maxResults int) ([]reconcile.CalendarEvent, error) {
	var (
		events    []reconcile.CalendarEvent
		pageToken string
	)

	for {
		pageSize := maxPageSize
		if maxResults > 0 {
			pageSize = min(maxResults-len(events), maxPageSize)
		}

		call := c.svc.Events.List(calendarID).
			Context(ctx).
			SingleEvents(true).
			OrderBy("startTime").
			ShowDeleted(false).
			TimeMin(window.Start.Format(time.RFC3339)).
			TimeMax(window.End.Format(time.RFC3339)).
			MaxResults(int64(pageSize))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var page *calendar.Events
		err := c.guard.Do(ctx, func() error {
			var err error
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list events of %s: %w", calendarID, err)
		}

		for _, item := range page.Items {
			if item == nil || item.Status == statusCancelled {
				continue
			}
			ev, err := toEvent(item)
			if err != nil {
				c.logger.Warn("Skipping unreadable event",
					zap.String("calendar_id", calendarID),
					zap.String("event_id", item.Id),
					zap.Error(err))
				continue
			}
			events = append(events, ev)
			if maxResults > 0 && len(events) >= maxResults {
				return events, nil
			}
		}

		if page.NextPageToken == "" {
			return events, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateEvent inserts event without notifying anyone and returns its id.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event reconcile.CalendarEvent) (string, error) {
	var created *calendar.Event
	err := c.guard.Do(ctx, func() error {
		var err error
		created, err = c.svc.Events.Insert(calendarID, fromEvent(event)).
			Context(ctx).
			SendUpdates("none").
			Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create event on %s: %w", calendarID, err)
	}
	return created.Id, nil
}

// UpdateEvent replaces eventID with event.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, event reconcile.CalendarEvent) error {
	var updated *calendar.Event
	err := c.guard.Do(ctx, func() error {
		var err error
		updated, err = c.svc.Events.Update(calendarID, eventID, fromEvent(event)).
			Context(ctx).
			SendUpdates("none").
			Do()
		return err
	})
	if err != nil {
		return c.wrap("update", calendarID, eventID, err)
	}
	if updated != nil && updated.Status == statusCancelled {
		return fmt.Errorf("update event %s on %s: %w", eventID, calendarID, reconcile.ErrEventGone)
	}
	return nil
}

// DeleteEvent removes eventID. Already deleted events yield reconcile.ErrEventGone.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := c.guard.Do(ctx, func() error {
		return c.svc.Events.Delete(calendarID, eventID).
			Context(ctx).
			SendUpdates("none").
			Do()
	})
	if err != nil {
		return c.wrap("delete", calendarID, eventID, err)
	}
	return nil
}

func (c *Client) wrap(op, calendarID, eventID string, err error) error {
	if gapi.IsNotFound(err) {
		return fmt.Errorf("%s event %s on %s: %w", op, eventID, calendarID, reconcile.ErrEventGone)
	}
	return fmt.Errorf("%s event %s on %s: %w", op, eventID, calendarID, err)
}

// BreakerState reports the circuit breaker state for health checks.
func (c *Client) BreakerState() string {
	return c.guard.State().String()
}
