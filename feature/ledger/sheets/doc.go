// Package sheets implements the ledger on a Google spreadsheet. Row ids are sheet
// row numbers: the header is row 1 and records start at row 2.
package sheets
