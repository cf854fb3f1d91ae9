// Package sqlstore implements the ledger on a relational table through gorm.
//
// Row ids are the table's auto-increment ids. The structural id has no meaning
// for a table and is always zero.
package sqlstore
