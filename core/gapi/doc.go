// Package gapi holds the plumbing shared by the Google Calendar and Sheets clients.
//
// Both APIs are quota-limited per user and per minute. A Guard wraps every call with
// a token-bucket limiter (golang.org/x/time/rate) and a circuit breaker
// (sony/gobreaker) so a pass backs off instead of burning quota against a failing
// backend. Client-side errors such as 404 or 410 do not count as breaker failures.
//
// # Usage
//
//	guard := gapi.NewGuard("calendar", cfg.Google, log)
//	err := guard.Do(ctx, func() error {
//	    _, err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
//	    return err
//	})
package gapi
