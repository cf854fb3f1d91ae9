// Package mirror runs reconciliation passes on demand and exposes them over HTTP.
//
// Only one pass runs at a time; a trigger that arrives while a pass is in progress
// is rejected with ErrPassRunning instead of queued. Every finished pass is kept as
// the last result and, when an archive is configured, stored as a report.
//
// Routes:
//
//	POST /sync              run a pass and return its result (?async=true returns 202)
//	GET  /sync/last         result of the most recent pass
//	GET  /sync/plan         what a pass would do, without writing anything
//	GET  /sync/reports      archived reports, newest first (?limit=N)
//	GET  /sync/reports/*    one archived report by object name
package mirror
