// Package config loads the calendar-sync configuration.
//
// Values come from, in increasing priority: struct tag defaults, config.yaml in the
// given directory, a .env file, and the process environment. Keys are nested by
// section; the environment form joins them with underscores, so sync.calendar_a is
// SYNC_CALENDAR_A.
//
// # Sections
//
//   - server: HTTP port, API key, shutdown timeout
//   - log: level and format
//   - sync: the two calendars, prefixes, window, batching, schedule, journal path
//   - google: credentials file, rate limit, circuit breaker
//   - calendar: backend (google or ics) and the ics directory
//   - ledger: backend (sheets or sql), spreadsheet and sheet name
//   - database: connection for the sql ledger
//   - storage, report: bucket and retention for archived pass reports
//   - alert: webhook url and timeout
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
