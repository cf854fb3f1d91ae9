// Package ledger holds the configuration shared by the ledger backends.
//
// The sheets backend keeps one row per mapping in a Google spreadsheet, which is
// what operators read and fix by hand. The sql backend keeps the same rows in a
// sync_ledger table through gorm.
package ledger
