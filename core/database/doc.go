// Package database opens the SQL database behind the SQL ledger backend.
//
// Connect supports MySQL for deployments and SQLite for local runs and tests. The
// inspector reads a table's columns so the ledger can refuse to start against a table
// whose schema drifted from its model.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	missing, err := database.MissingColumns(db, "sync_ledger", []string{"signature"})
package database
