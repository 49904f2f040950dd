// Package storage persists a vault in a bbolt database inside a data
// directory guarded by an exclusive lock file.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.etcd.io/bbolt"

	"github.com/stakevault/libstakevault-go/ledger"
	"github.com/stakevault/libstakevault-go/vault"
)

const (
	// DBFile is the database file name inside the data directory.
	DBFile = "vault.db"
	// LockFile is the lock file name inside the data directory.
	LockFile = "vault.lock"
)

var (
	bucketMeta   = []byte("meta")
	bucketEvents = []byte("events")

	keyState  = []byte("state")
	keyShares = []byte("shares")
)

// BoltStore holds a vault's state, share ledger and event log.
type BoltStore struct {
	db   *bbolt.DB
	lock *flock.Flock
}

// Compile-time interface check.
var _ vault.Store = (*BoltStore)(nil)

// Open locks dataDir and opens or creates its database. It fails with
// ErrLocked when another process has the directory open. Records written by
// older versions are migrated in place.
func Open(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrIOFailure, err)
	}

	lock := flock.New(filepath.Join(dataDir, LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: lock %s: %w", ErrIOFailure, lock.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, dataDir)
	}

	db, err := bbolt.Open(filepath.Join(dataDir, DBFile), 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: open bolt db: %w", ErrIOFailure, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketEvents} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return migrate(tx.Bucket(bucketMeta))
	})
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("storage: open: %w", err)
	}

	return &BoltStore{db: db, lock: lock}, nil
}

// migrate rewrites an older state record at the current version.
func migrate(meta *bbolt.Bucket) error {
	data := meta.Get(keyState)
	if data == nil {
		return nil
	}
	st, migrated, err := decodeState(data)
	if err != nil || !migrated {
		return err
	}
	return meta.Put(keyState, encodeState(st))
}

// Close closes the database and releases the directory lock.
func (s *BoltStore) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

// Init stores l as a new vault. It refuses to overwrite an existing one.
func (s *BoltStore) Init(l *ledger.Ledger) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketMeta).Get(keyState) != nil {
			return ErrAlreadyInitialized
		}
		return putLedger(tx, l)
	})
}

// Commit stores l and appends events to the log in one transaction,
// assigning each event its sequence number.
func (s *BoltStore) Commit(l *ledger.Ledger, events []vault.Event) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := putLedger(tx, l); err != nil {
			return err
		}
		eb := tx.Bucket(bucketEvents)
		for i := range events {
			seq, err := eb.NextSequence()
			if err != nil {
				return fmt.Errorf("storage: next event sequence: %w", err)
			}
			events[i].Seq = seq
			data, err := json.Marshal(&events[i])
			if err != nil {
				return fmt.Errorf("storage: encode event: %w", err)
			}
			if err := eb.Put(seqKey(seq), data); err != nil {
				return fmt.Errorf("storage: put event: %w", err)
			}
		}
		return nil
	})
}

// LoadLedger returns the persisted vault. It fails with ErrNotInitialized
// when nothing was stored yet.
func (s *BoltStore) LoadLedger() (*ledger.Ledger, error) {
	var l *ledger.Ledger
	err := s.db.View(func(tx *bbolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		stData := meta.Get(keyState)
		if stData == nil {
			return ErrNotInitialized
		}
		st, _, err := decodeState(stData)
		if err != nil {
			return err
		}
		var shares *ledger.ShareLedger
		if shData := meta.Get(keyShares); shData != nil {
			if shares, err = ledger.DeserializeShares(shData); err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptState, err)
			}
		}
		if l, err = ledger.Restore(st, shares); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptState, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Events returns up to limit events with sequence numbers >= from, in order.
// A limit <= 0 returns every remaining event.
func (s *BoltStore) Events(from uint64, limit int) ([]vault.Event, error) {
	var out []vault.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEvents).Cursor()
		for k, v := c.Seek(seqKey(from)); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var ev vault.Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("%w: event %d: %w", ErrCorruptState, binary.BigEndian.Uint64(k), err)
			}
			out = append(out, ev)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LastSeq returns the sequence number of the newest event, or 0.
func (s *BoltStore) LastSeq() (uint64, error) {
	var seq uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		seq = tx.Bucket(bucketEvents).Sequence()
		return nil
	})
	return seq, err
}

func putLedger(tx *bbolt.Tx, l *ledger.Ledger) error {
	shares, err := ledger.SerializeShares(l.Shares())
	if err != nil {
		return err
	}
	meta := tx.Bucket(bucketMeta)
	if err := meta.Put(keyState, encodeState(l.State())); err != nil {
		return fmt.Errorf("storage: put state: %w", err)
	}
	if err := meta.Put(keyShares, shares); err != nil {
		return fmt.Errorf("storage: put shares: %w", err)
	}
	return nil
}

// seqKey encodes an event sequence number as an 8-byte big-endian key for
// ordered iteration.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
