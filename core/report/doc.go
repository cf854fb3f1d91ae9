// Package report archives the summary of every reconciliation pass in object storage.
//
// Each pass is written as one JSON object named after its start time and pass id, so
// a lexical listing is also a chronological one. The archive keeps the newest Keep
// reports and prunes the rest.
//
// # Usage
//
//	archive := report.NewArchive(client, cfg.Storage.Bucket, cfg.Report, log)
//	key, err := archive.Save(ctx, report.Report{PassID: id, Summary: summary})
//	entries, err := archive.List(ctx, 20)
package report
