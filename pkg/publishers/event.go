package publishers

import "time"

// Event types emitted by the watcher.
const (
	EventSnapshotTaken = "snapshot_taken"
	EventStateChanged  = "state_changed"
)

// DeviceState is the subset of a robot's status tracked between polls.
type DeviceState struct {
	Sleeping     bool   `json:"sleeping"`
	EarsDisabled bool   `json:"ears_disabled"`
	LEDColor     string `json:"led_color"`
	LEDPulse     bool   `json:"led_pulse"`
	Version      string `json:"version,omitempty"`
}

// Event represents the payload published downstream.
type Event struct {
	Type       string       `json:"type"`
	DeviceID   string       `json:"device_id"`
	DeviceName string       `json:"device_name"`
	SnapshotID string       `json:"snapshot_id,omitempty"`
	State      *DeviceState `json:"state,omitempty"`
	Changed    []string     `json:"changed,omitempty"`
	ObservedAt time.Time    `json:"observed_at"`
}

// NewSnapshotEvent announces a snapshot that had not been seen before.
func NewSnapshotEvent(deviceID, deviceName, snapshotID string) Event {
	return Event{
		Type:       EventSnapshotTaken,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		SnapshotID: snapshotID,
		ObservedAt: time.Now().UTC(),
	}
}

// NewStateEvent announces a device state change; changed lists the fields that differ.
func NewStateEvent(deviceID, deviceName string, state DeviceState, changed []string) Event {
	return Event{
		Type:       EventStateChanged,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		State:      &state,
		Changed:    changed,
		ObservedAt: time.Now().UTC(),
	}
}

// attributes are copied onto queue messages so subscribers can filter without decoding.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_type": e.Type,
		"device_id":  e.DeviceID,
	}
}
