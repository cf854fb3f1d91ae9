// Package journal persists ledger rows that could not be written.
//
// When a calendar copy is created but the batched ledger insert fails, the mapping
// between the primary event and its copy exists nowhere else. The journal keeps those
// rows in a local bbolt file so the next pass can insert them before it loads the
// ledger, instead of creating the copy a second time.
//
// # Usage
//
//	j, err := journal.Open("data/journal.db")
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	orch := reconcile.New(cal, ledger, notifier, opts, reconcile.WithJournal(j))
package journal
