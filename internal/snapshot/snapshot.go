// Package snapshot keeps the command line's unsynced notes on disk between runs.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Tzuyuchae/QuickThoughts/internal/domain"
)

var bucketUnsynced = []byte("unsynced")

// Store is a bbolt file holding unsynced notes keyed by user id.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the snapshot file at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketUnsynced)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save replaces the user's unsynced notes. An empty list clears them.
func (s *Store) Save(userID string, memos []domain.Memo) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUnsynced)
		if len(memos) == 0 {
			return b.Delete([]byte(userID))
		}
		data, err := json.Marshal(memos)
		if err != nil {
			return err
		}
		return b.Put([]byte(userID), data)
	})
}

// Load returns the user's unsynced notes in visible order.
func (s *Store) Load(userID string) ([]domain.Memo, error) {
	var memos []domain.Memo
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketUnsynced).Get([]byte(userID))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &memos)
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot for %s: %w", userID, err)
	}
	return memos, nil
}

// Users returns the ids that have unsynced notes.
func (s *Store) Users() ([]string, error) {
	var users []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketUnsynced).ForEach(func(k, _ []byte) error {
			users = append(users, string(k))
			return nil
		})
	})
	return users, err
}

// Close closes the file.
func (s *Store) Close() error {
	return s.db.Close()
}
