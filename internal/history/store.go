// Package history keeps a log of completed atlas exports in a bbolt database.
package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/piwi3910/atlaspack/internal/model"
)

// keyLayout is RFC3339 with fixed-width nanoseconds so keys sort by time.
const keyLayout = "2006-01-02T15:04:05.000000000Z07:00"

var buildsBucket = []byte("builds")

// Store is a build history backed by a single bbolt file.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(buildsBucket)
		return errors.Wrap(err, "failed to create bucket")
	})
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(rec model.BuildRecord) []byte {
	return []byte(rec.CreatedAt.UTC().Format(keyLayout) + "/" + rec.ID)
}

// Record stores a build. A missing ID or timestamp is filled in.
func (s *Store) Record(rec model.BuildRecord) (model.BuildRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()[:8]
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return rec, errors.Wrap(err, "failed to marshal build record")
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(buildsBucket).Put(recordKey(rec), data)
	})
	return rec, errors.Wrap(err, "failed to store build record")
}

// List returns up to limit records, newest first. A limit of 0 or less
// returns everything.
func (s *Store) List(limit int) ([]model.BuildRecord, error) {
	records := make([]model.BuildRecord, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(buildsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}
			var rec model.BuildRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return errors.Wrapf(err, "corrupt build record %s", k)
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

// Since returns the records created at or after t, oldest first.
func (s *Store) Since(t time.Time) ([]model.BuildRecord, error) {
	records := make([]model.BuildRecord, 0)
	from := []byte(t.UTC().Format(keyLayout))

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(buildsBucket).Cursor()
		for k, v := c.Seek(from); k != nil; k, v = c.Next() {
			if bytes.Compare(k, from) < 0 {
				continue
			}
			var rec model.BuildRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return errors.Wrapf(err, "corrupt build record %s", k)
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}

// Clear deletes every record and returns how many there were.
func (s *Store) Clear() (int, error) {
	n := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(buildsBucket).ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
		if err != nil {
			return errors.Wrap(err, "failed to count records")
		}
		if err := tx.DeleteBucket(buildsBucket); err != nil {
			return errors.Wrap(err, "failed to delete bucket")
		}
		_, err = tx.CreateBucket(buildsBucket)
		return errors.Wrap(err, "failed to recreate bucket")
	})
	return n, err
}
