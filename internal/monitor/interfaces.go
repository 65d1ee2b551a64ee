package monitor

import (
	"context"

	"github.com/openkarotz-hq/karotz-go/pkg/devices"
	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
	"github.com/openkarotz-hq/karotz-go/pkg/publishers"
)

// DeviceClient is the part of the karotz client the watcher polls with.
type DeviceClient interface {
	Status(ctx context.Context) (karotz.DeviceStatus, error)
	SnapshotList(ctx context.Context) ([]string, error)
}

// ClientFactory returns the client used to reach a device.
type ClientFactory func(d devices.Device) (DeviceClient, error)

// EventPublisher publishes watcher events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Store persists seen snapshots and the last observed device state.
type Store interface {
	SeenSnapshot(deviceID, snapshotID string) (bool, error)
	MarkSnapshot(deviceID, snapshotID string) error
	LoadState(deviceID string) ([]byte, error)
	SaveState(deviceID string, state []byte) error
}

// Recorder receives poll and delivery counts.
type Recorder interface {
	ObservePoll(device string, err error)
	ObservePublished(eventType string, delivered int, failed bool)
}
