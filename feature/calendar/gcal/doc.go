// Package gcal implements reconcile.Calendar on top of the Google Calendar API v3.
//
// Listings expand recurring events into single instances ordered by start time and
// follow pagination up to the requested cap. Writes never notify guests. Missing and
// deleted events (404, 410, or a cancelled tombstone) are reported as
// reconcile.ErrEventGone. Every call goes through a gapi.Guard for pacing and circuit
// breaking.
//
// # Usage
//
//	client, err := gcal.New(ctx, cfg.Google, log)
//	events, err := client.ListEvents(ctx, "team@example.com", window, 250)
package gcal
