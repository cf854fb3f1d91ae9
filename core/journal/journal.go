package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"calendar-sync/core/reconcile"

	bolt "go.etcd.io/bbolt"
)

const (
	dirPerm     = fs.FileMode(0o700)
	filePerm    = fs.FileMode(0o600)
	openTimeout = 5 * time.Second
)

var pendingBucket = []byte("pending_inserts")

// Journal is a bbolt-backed reconcile.Journal.
type Journal struct {
	db *bolt.DB
}

// Open opens the journal at path, creating the file and its directory if needed.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := bolt.Open(path, filePerm, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(pendingBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// key identifies a row by its primary event. Recording the same event twice keeps
// the latest row.
func key(r reconcile.LedgerRecord) []byte {
	return []byte(r.PrimaryCalendarID + "\x00" + r.PrimaryEventID)
}

// Record stores records in a single transaction.
func (j *Journal) Record(records []reconcile.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		for _, r := range records {
			r.RowID = 0
			data, err := json.Marshal(r)
			if err != nil {
				return fmt.Errorf("encoding %s/%s: %w", r.PrimaryCalendarID, r.PrimaryEventID, err)
			}
			if err := b.Put(key(r), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Pending returns every stored row ordered by key.
func (j *Journal) Pending() ([]reconcile.LedgerRecord, error) {
	var records []reconcile.LedgerRecord
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).ForEach(func(k, v []byte) error {
			var r reconcile.LedgerRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decoding journal entry %q: %w", k, err)
			}
			records = append(records, r)
			return nil
		})
	})
	return records, err
}

// Clear removes records. Missing entries are ignored.
func (j *Journal) Clear(records []reconcile.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		for _, r := range records {
			if err := b.Delete(key(r)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Len returns the number of stored rows.
func (j *Journal) Len() (int, error) {
	n := 0
	err := j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(pendingBucket).Stats().KeyN
		return nil
	})
	return n, err
}
