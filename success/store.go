// Package success journals download requests that delivered a file
package success

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	pebble "github.com/cockroachdb/pebble"
)

// Record describes one delivered file. The bytes themselves are never stored.
type Record struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	VideoID   string    `json:"video_id"`
	Format    string    `json:"format"`
	Itag      int       `json:"itag"`
	FileName  string    `json:"file_name"`
	MediaType string    `json:"media_type"`
	Size      int       `json:"size"`
	Elapsed   string    `json:"elapsed"`
}

var db *pebble.DB

// Init initializes the success journal
func Init(dbPath string) error {
	var err error
	db, err = pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return fmt.Errorf("failed to open success store: %w", err)
	}
	return nil
}

// Close closes the success journal
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
		return fmt.Errorf("success store not initialized")
	}
	if record.RequestID == "" {
		return fmt.Errorf("success record has no request ID")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal success record: %w", err)
	}
	return db.Set([]byte(record.RequestID), data, pebble.Sync)
}

// Get retrieves a success record by request ID. Not found is not an error.
func Get(requestID string) (*Record, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
	}

	data, closer, err := db.Get([]byte(requestID))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal success record: %w", err)
	}
	return &record, nil
}

// List returns all success records, newest first
func List() ([]Record, error) {
	if db == nil {
		return nil, fmt.Errorf("success store not initialized")
	}

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
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

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

// CleanupOldRecords removes success records older than maxAge and returns how
// many were deleted
func CleanupOldRecords(maxAge time.Duration) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("success store not initialized")
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

	// Delete old records
	for _, key := range keysToDelete {
		if err := db.Delete(key, pebble.Sync); err != nil {
			return 0, fmt.Errorf("failed to delete old success record: %w", err)
		}
	}
	return len(keysToDelete), nil
}

// CheckHealth performs a basic health check on the success database
func CheckHealth() error {
	if db == nil {
		return fmt.Errorf("success database not initialized")
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
