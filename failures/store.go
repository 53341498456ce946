// Package failures journals download requests that ended in an error, keyed
// by request ID. It holds operational audit data only, never media.
package failures

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// Record describes one failed download request
type Record struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	VideoURL  string    `json:"video_url"`
	Format    string    `json:"format"`
	Stage     string    `json:"stage"` // pipeline stage the request stopped in
	Kind      string    `json:"kind"`  // error class, e.g. "no_suitable_stream"
	Status    int       `json:"status"`
	Error     string    `json:"error"`
}

var db *pebble.DB

// Init initializes the failure journal
func Init(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open failure store: %w", err)
	}
	return nil
}

// Close closes the failure journal
func Close() error {
	if db != nil {
		err := db.Close()
		db = nil
		return err
	}
	return nil
}

// Store writes record under its request ID. A zero Timestamp is set to now.
func Store(record Record) error {
	if db == nil {
		return fmt.Errorf("failure store not initialized")
	}
	if record.RequestID == "" {
		return fmt.Errorf("failure record has no request ID")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal failure record: %w", err)
	}
	return db.Set([]byte(record.RequestID), data, pebble.Sync)
}

// Get retrieves a failure record by request ID. A missing record is (nil, nil).
func Get(requestID string) (*Record, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	data, closer, err := db.Get([]byte(requestID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get failure: %w", err)
	}
	defer closer.Close()

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failure record: %w", err)
	}
	return &record, nil
}

// List returns every failure record, newest first
func List() ([]Record, error) {
	if db == nil {
		return nil, fmt.Errorf("failure store not initialized")
	}

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	records := []Record{}
	for iter.First(); iter.Valid(); iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue // Skip invalid records
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// CleanupOldRecords removes failure records older than maxAge and returns how
// many were deleted
func CleanupOldRecords(maxAge time.Duration) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("failure store not initialized")
	}

	cutoff := time.Now().Add(-maxAge)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var record Record
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			continue
		}
		if record.Timestamp.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			keysToDelete = append(keysToDelete, key)
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	for _, key := range keysToDelete {
		if err := db.Delete(key, pebble.Sync); err != nil {
			return 0, fmt.Errorf("failed to delete old failure record: %w", err)
		}
	}
	return len(keysToDelete), nil
}

// CheckHealth performs a basic health check on the failure database
func CheckHealth() error {
	if db == nil {
		return fmt.Errorf("failure database not initialized")
	}

	_, closer, err := db.Get([]byte("__health_check__"))
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}
