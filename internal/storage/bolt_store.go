package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	snapshotBucket   = "snapshots"
	stateBucket      = "device_state"
	expiryValueBytes = 8
)

var errBucketMissing = errors.New("bucket missing")

// boltStore keeps one nested bucket per device under the snapshots bucket.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	snapshotTTL     time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{snapshotBucket, stateBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	store := &boltStore{
		db:              db,
		snapshotTTL:     opts.SnapshotTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the underlying database.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenSnapshot reports whether the snapshot was marked and has not expired.
func (b *boltStore) SeenSnapshot(deviceID, snapshotID string) (bool, error) {
	if err := validateKeys(deviceID, snapshotID); err != nil {
		return false, err
	}
	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(snapshotBucket))
		if root == nil {
			return fmt.Errorf("%s %w", snapshotBucket, errBucketMissing)
		}
		device := root.Bucket([]byte(deviceID))
		if device == nil {
			return nil
		}

		key := []byte(snapshotID)
		value := device.Get(key)
		if value == nil {
			return nil
		}
		expiry, ok := decodeExpiry(value)
		if !ok || !expiry.After(now) {
			return device.Delete(key)
		}
		seen = true
		return nil
	})
	return seen, err
}

// MarkSnapshot records the snapshot as announced for the configured TTL.
func (b *boltStore) MarkSnapshot(deviceID, snapshotID string) error {
	if err := validateKeys(deviceID, snapshotID); err != nil {
		return err
	}
	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(snapshotBucket))
		if root == nil {
			return fmt.Errorf("%s %w", snapshotBucket, errBucketMissing)
		}
		device, err := root.CreateBucketIfNotExists([]byte(deviceID))
		if err != nil {
			return fmt.Errorf("device bucket %q: %w", deviceID, err)
		}
		buf := make([]byte, expiryValueBytes)
		binary.BigEndian.PutUint64(buf, uint64(now.Add(b.snapshotTTL).Unix()))
		return device.Put([]byte(snapshotID), buf)
	})
}

// LoadState returns a copy of the saved state document.
func (b *boltStore) LoadState(deviceID string) ([]byte, error) {
	if strings.TrimSpace(deviceID) == "" {
		return nil, errors.New("device id is required")
	}
	var out []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("%s %w", stateBucket, errBucketMissing)
		}
		if v := bucket.Get([]byte(deviceID)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	return out, err
}

// SaveState overwrites the state document for the device.
func (b *boltStore) SaveState(deviceID string, state []byte) error {
	if strings.TrimSpace(deviceID) == "" {
		return errors.New("device id is required")
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(stateBucket))
		if bucket == nil {
			return fmt.Errorf("%s %w", stateBucket, errBucketMissing)
		}
		return bucket.Put([]byte(deviceID), state)
	})
}

// maybeCleanupExpired sweeps expired snapshot markers at most once per cleanup interval.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(snapshotBucket))
		if root == nil {
			return fmt.Errorf("%s %w", snapshotBucket, errBucketMissing)
		}
		return root.ForEachBucket(func(name []byte) error {
			cursor := root.Bucket(name).Cursor()
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				expiry, ok := decodeExpiry(v)
				if !ok || !expiry.After(now) {
					if err := cursor.Delete(); err != nil {
						return err
					}
				}
			}
			return nil
		})
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func validateKeys(deviceID, snapshotID string) error {
	if strings.TrimSpace(deviceID) == "" {
		return errors.New("device id is required")
	}
	if strings.TrimSpace(snapshotID) == "" {
		return errors.New("snapshot id is required")
	}
	return nil
}

func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) != expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
