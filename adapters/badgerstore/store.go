// Package badgerstore persists closed trial records in an embedded
// BadgerDB. The store is an append-only sink: the engine writes each
// record once and never reads it back.
package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/errgroup"

	"vrtask/domain/trial"
	"vrtask/internal"
	"vrtask/internal/errors"
)

// Config holds store settings.
type Config struct {
	// Path is the directory for database files; ignored when InMemory.
	Path string
	// InMemory disables disk persistence, for tests and dry runs.
	InMemory bool
	// SyncWrites forces fsync per write batch.
	SyncWrites bool
	// QueueSize bounds the async write queue.
	QueueSize int
}

// DefaultConfig returns production settings for the given path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true, QueueSize: 256}
}

type entry struct {
	key   []byte
	value []byte
}

// Store is the Badger-backed trial sink. Writes are queued and flushed by
// a background writer so a slow disk never stalls the engine tick; Close
// drains the queue before shutting the database down.
type Store struct {
	db    *badger.DB
	log   *internal.Logger
	queue chan entry
	group *errgroup.Group

	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) the store.
func Open(cfg Config, log *internal.Logger) (*Store, error) {
	if log == nil {
		log = internal.DefaultLogger
	}
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open trial store")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	s := &Store{
		db:    db,
		log:   log.With("store"),
		queue: make(chan entry, cfg.QueueSize),
		group: &errgroup.Group{},
	}
	s.group.Go(s.drain)
	return s, nil
}

// WriteTrial enqueues one closed record. The key orders records by session
// and block position.
func (s *Store) WriteTrial(ctx context.Context, sessionID string, rec *trial.Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to encode trial record")
	}
	key := fmt.Sprintf("session/%s/%s/%04d/%s", sessionID, rec.Condition.Phase, rec.Ordinal, rec.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.StoreError("trial store is closed")
	}
	select {
	case s.queue <- entry{key: []byte(key), value: value}:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "trial write cancelled")
	}
}

func (s *Store) drain() error {
	for e := range s.queue {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(e.key, e.value)
		})
		if err != nil {
			s.log.Error("trial write failed for %s: %v", e.key, err)
		}
	}
	return nil
}

// Close drains pending writes and closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	if err := s.group.Wait(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
