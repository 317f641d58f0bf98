package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	// SelectionKey holds the serialized selection handed to the comparison view.
	SelectionKey = "selectedNeos"
	// detailKeyPrefix namespaces per-object detail payloads.
	detailKeyPrefix = "asteroid_"
	// DefaultStoreTTL bounds how long a transient entry survives.
	DefaultStoreTTL = time.Hour
)

// ErrNotFound is returned by a Store for keys that don't exist or have expired.
var ErrNotFound = errors.New("key not found")

// Store is the session-scoped key-value store used to pass data between views.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// DetailKey returns the store key for the detail payload of the object with id.
func DetailKey(id string) string {
	return detailKeyPrefix + id
}

// BadgerStore is an in-memory badger database scoped to one session. Keys are prefixed with a
// random session id and expire after the configured TTL.
type BadgerStore struct {
	db        *badger.DB
	sessionID string
	ttl       time.Duration
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenSessionStore opens an in-memory store for a new session.
// A nil logger disables badger's internal logging.
func OpenSessionStore(ttl time.Duration, logger *slog.Logger) (*BadgerStore, error) {
	if ttl <= 0 {
		ttl = DefaultStoreTTL
	}

	opts := badger.DefaultOptions("").WithInMemory(true).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("openSessionStore: %w", err)
	}

	return &BadgerStore{
		db:        db,
		sessionID: uuid.NewString(),
		ttl:       ttl,
	}, nil
}

// SessionID returns the namespace of this store's keys.
func (bs *BadgerStore) SessionID() string {
	return bs.sessionID
}

func (bs *BadgerStore) key(key string) []byte {
	return []byte(bs.sessionID + "/" + key)
}

// Put stores value under key, replacing any previous value.
func (bs *BadgerStore) Put(key string, value []byte) error {
	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(bs.key(key), value).WithTTL(bs.ttl))
	})
	if err != nil {
		return fmt.Errorf("store put %q: %w", key, err)
	}

	return nil
}

// Get returns a copy of the value stored under key or ErrNotFound.
func (bs *BadgerStore) Get(key string) ([]byte, error) {
	var value []byte
	err := bs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(bs.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("store get %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store get %q: %w", key, err)
	}

	return value, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (bs *BadgerStore) Delete(key string) error {
	err := bs.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(bs.key(key))
	})
	if err != nil {
		return fmt.Errorf("store delete %q: %w", key, err)
	}

	return nil
}

// Close releases the database. The session's data is gone afterwards.
func (bs *BadgerStore) Close() error {
	if err := bs.db.Close(); err != nil {
		return fmt.Errorf("store close: %w", err)
	}

	return nil
}
