// Package store persists simulation sessions in a bbolt database.
//
// Each session is stored under its name as a JSON state.Document, so a
// stored session goes through the same version check and repair as an
// imported file.
package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/joshuapare/partsim/internal/state"
)

// DefaultSession is the session name used when none is given.
const DefaultSession = "default"

var (
	ErrBucketNotFound = errors.New("bucket not found")
	ErrKeyNotFound    = errors.New("key does not exist")
)

// openTimeout bounds the wait for another process holding the file lock.
const openTimeout = 2 * time.Second

type SessionStore struct {
	db *bolt.DB
}

func NewSessionStore(database *bolt.DB) *SessionStore {
	return &SessionStore{
		db: database,
	}
}

// Open opens (creating if needed) the database at path and its parent
// directory.
func Open(path string) (*SessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "create state directory for %v", path)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open state database %v", path)
	}
	return NewSessionStore(db), nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

// GetSession returns the document stored under name. The document has
// passed the version check but has not been repaired.
func (s *SessionStore) GetSession(ctx context.Context, name string) (state.Document, error) {
	var doc state.Document
	if err := s.db.View(func(tx *bolt.Tx) error {
		bkt := getSessionBucket(tx)
		if bkt == nil {
			return errors.Wrapf(ErrBucketNotFound, "session bucket %s", bucketKeySession)
		}
		data := bkt.Get([]byte(name))
		if data == nil {
			return errors.Wrapf(ErrKeyNotFound, "session %v", name)
		}
		var err error
		doc, err = state.Unmarshal(data)
		if err != nil {
			return errors.Wrapf(err, "session %v", name)
		}
		return nil
	}); err != nil {
		return state.Document{}, err
	}
	return doc, nil
}

// PutSession stores doc under name, replacing any previous value.
func (s *SessionStore) PutSession(ctx context.Context, name string, doc state.Document) error {
	data, err := state.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "encode session %v", name)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := createSessionBucket(tx)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(name), data)
	})
}

func (s *SessionStore) DeleteSession(ctx context.Context, name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt := getSessionBucket(tx)
		if bkt == nil {
			return errors.Wrapf(ErrBucketNotFound, "bucket %s", bucketKeySession)
		}
		return bkt.Delete([]byte(name))
	})
}

// ListSessions returns the stored session names in key order.
func (s *SessionStore) ListSessions(ctx context.Context) (names []string, err error) {
	if err := s.db.View(func(tx *bolt.Tx) error {
		bkt := getSessionBucket(tx)
		if bkt == nil {
			return errors.Wrapf(ErrBucketNotFound, "session bucket %s", bucketKeySession)
		}
		return bkt.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	}); err != nil {
		return nil, err
	}
	return names, nil
}
