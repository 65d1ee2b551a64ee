// Package storage remembers which device snapshots were already announced and the
// last observed state of every device.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks seen snapshots per device and the last reported device state.
type Store interface {
	Close() error
	SeenSnapshot(deviceID, snapshotID string) (bool, error)
	MarkSnapshot(deviceID, snapshotID string) error
	// LoadState returns the last saved state document for the device, nil when none.
	LoadState(deviceID string) ([]byte, error)
	SaveState(deviceID string, state []byte) error
}

// Options controls retention of seen snapshot markers.
type Options struct {
	SnapshotTTL     time.Duration
	CleanupInterval time.Duration
}

const (
	defaultSnapshotTTL     = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = defaultSnapshotTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                              { return nil }
func (noopStore) SeenSnapshot(string, string) (bool, error) { return false, nil }
func (noopStore) MarkSnapshot(string, string) error         { return nil }
func (noopStore) LoadState(string) ([]byte, error)          { return nil, nil }
func (noopStore) SaveState(string, []byte) error            { return nil }
