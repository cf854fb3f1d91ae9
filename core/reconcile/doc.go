// Package reconcile keeps two calendars mirror-consistent through a tracking ledger.
//
// Every event authored on calendar A is copied onto calendar B (and vice versa). The
// ledger maps each primary event to its secondary copy and is the only durable state
// the engine relies on. A reconciliation pass is built to minimize calls against the
// rate-limited ledger store:
//   - Both calendars are fetched once, concurrently
//   - The ledger is loaded exactly once and the snapshot is shared by both directions
//   - Calendar writes run in bounded, paced batches (see core/batch)
//   - Ledger writes are collected as pending mutations and flushed in a handful of
//     batched calls (one insert, one update, one delete)
//
// # Components
//
//  1. Signature: ComputeSignature fingerprints the sync-relevant fields of an event.
//
//  2. Duplicate filter: IsSyncedCopy and IsTargetInAttendees stop the engine from
//     mirroring its own copies or events both calendars already see.
//
//  3. Analyzer: Analyze diffs source events against the ledger snapshot into
//     create / update / unchanged / skipped buckets.
//
//  4. Syncer: SyncDirection replicates one calendar onto the other and returns the
//     pending ledger rows it would write.
//
//  5. LedgerWriter: collapses pending rows into batched ledger calls. Deletes are
//     always issued in descending row order.
//
//  6. OrphanDetector: deletes secondary copies whose primary event vanished.
//
//  7. Orchestrator: sequences one full pass and reports a PassSummary.
//
// # Loop prevention
//
// Three rules keep a copy from being mirrored back to its origin: the sync marker in
// the copy's description, the target calendar appearing in the attendee list, and an
// existing ledger record with an unchanged signature. Removing any one of them
// reintroduces infinite duplication.
//
// # Usage Example
//
//	orch := reconcile.New(calendarClient, ledger, notifier, cfg.Options(),
//	    reconcile.WithLogger(log),
//	    reconcile.WithJournal(j),
//	)
//
//	summary, err := orch.RunPass(ctx)
//
//	// Dry run: analysis only, nothing is written
//	plan, err := orch.Plan(ctx)
package reconcile
