// Package monitor polls OpenKarotz devices and turns what it observes into events.
package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openkarotz-hq/karotz-go/internal/logger"
	"github.com/openkarotz-hq/karotz-go/pkg/devices"
	"github.com/openkarotz-hq/karotz-go/pkg/publishers"
)

// Service coordinates polling across multiple devices.
type Service struct {
	factory   ClientFactory
	publisher EventPublisher
	store     Store
	recorder  Recorder
	log       logger.Logger
	now       func() time.Time

	mu       sync.RWMutex
	clients  map[string]DeviceClient
	states   map[string]publishers.DeviceState
	baseline map[string]publishers.DeviceState
	seen     map[string]map[string]struct{}
	lastPoll map[string]time.Time
}

// NewService wires a monitor. store and recorder may be nil.
func NewService(factory ClientFactory, pub EventPublisher, log logger.Logger, store Store, rec Recorder) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		factory:   factory,
		publisher: pub,
		store:     store,
		recorder:  rec,
		log:       log,
		now:       time.Now,
		clients:   make(map[string]DeviceClient),
		states:    make(map[string]publishers.DeviceState),
		baseline:  make(map[string]publishers.DeviceState),
		seen:      make(map[string]map[string]struct{}),
		lastPoll:  make(map[string]time.Time),
	}
}

// Run polls every device whose poll interval has elapsed.
func (s *Service) Run(ctx context.Context, devs []devices.Device) error {
	if s == nil || s.factory == nil {
		return fmt.Errorf("monitor service is not initialized")
	}
	if len(devs) == 0 {
		return fmt.Errorf("no devices configured for monitoring")
	}

	var errs []error
	for _, d := range devs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if !s.due(d) {
			continue
		}
		if err := s.PollDevice(ctx, d); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("device poll failed", "device_error", map[string]any{
				"device_id": d.ID,
				"error":     err.Error(),
			})
		}
	}
	return errors.Join(errs...)
}

// PollDevice runs one observation of a device regardless of its schedule.
func (s *Service) PollDevice(ctx context.Context, d devices.Device) error {
	s.mu.Lock()
	s.lastPoll[d.ID] = s.now()
	s.mu.Unlock()

	err := s.poll(ctx, d)
	if s.recorder != nil {
		s.recorder.ObservePoll(d.ID, err)
	}
	return err
}

// State returns the last observed state of a device.
func (s *Service) State(deviceID string) (publishers.DeviceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[deviceID]
	return st, ok
}

// Client returns the cached client for a device, creating it on first use.
func (s *Service) Client(d devices.Device) (DeviceClient, error) {
	s.mu.RLock()
	c, ok := s.clients[d.ID]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}

	c, err := s.factory(d)
	if err != nil {
		return nil, fmt.Errorf("create client for device %s: %w", d.ID, err)
	}
	s.mu.Lock()
	s.clients[d.ID] = c
	s.mu.Unlock()
	return c, nil
}

func (s *Service) due(d devices.Device) bool {
	s.mu.RLock()
	last, ok := s.lastPoll[d.ID]
	s.mu.RUnlock()
	return !ok || s.now().Sub(last) >= d.PollInterval()
}

func (s *Service) poll(ctx context.Context, d devices.Device) error {
	client, err := s.Client(d)
	if err != nil {
		return err
	}

	status, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("status of device %s: %w", d.ID, err)
	}

	var errs []error
	if err := s.trackState(ctx, d, stateFromStatus(status)); err != nil {
		errs = append(errs, err)
	}

	if d.Snapshots {
		announced, err := s.announceSnapshots(ctx, d, client)
		if err != nil {
			errs = append(errs, err)
		}
		s.log.DebugObj("device snapshots checked", "device_snapshots", map[string]any{
			"device_id": d.ID,
			"announced": announced,
		})
	}
	return errors.Join(errs...)
}

// trackState publishes a state_changed event when a tracked field differs from
// the last announced state. The first observation only sets the baseline. The
// baseline moves only once a change reached at least one publisher.
func (s *Service) trackState(ctx context.Context, d devices.Device, next publishers.DeviceState) error {
	prev, known, err := s.previousState(d.ID)
	if err != nil {
		s.log.WarnObj("stored device state unreadable", "device_state_error", map[string]any{
			"device_id": d.ID,
			"error":     err.Error(),
		})
	}

	s.mu.Lock()
	s.states[d.ID] = next
	s.mu.Unlock()

	var errs []error
	if known {
		if changed := diffState(prev, next); len(changed) > 0 {
			evt := publishers.NewStateEvent(d.ID, d.Name, next, changed)
			if err := s.publish(ctx, evt); err != nil {
				if errors.Is(err, errNothingDelivered) {
					return err
				}
				errs = append(errs, err)
			}
		}
	}

	s.mu.Lock()
	s.baseline[d.ID] = next
	s.mu.Unlock()

	if s.store != nil {
		raw, err := json.Marshal(next)
		if err == nil {
			err = s.store.SaveState(d.ID, raw)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("save state for device %s: %w", d.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) previousState(deviceID string) (publishers.DeviceState, bool, error) {
	s.mu.RLock()
	prev, ok := s.baseline[deviceID]
	s.mu.RUnlock()
	if ok || s.store == nil {
		return prev, ok, nil
	}

	raw, err := s.store.LoadState(deviceID)
	if err != nil || len(raw) == 0 {
		return publishers.DeviceState{}, false, err
	}
	if err := json.Unmarshal(raw, &prev); err != nil {
		return publishers.DeviceState{}, false, err
	}
	return prev, true, nil
}

// announceSnapshots publishes every snapshot not yet seen and marks it once at
// least one publisher accepted it. The in-memory seen set only keeps snapshots
// that are still listed on the device.
func (s *Service) announceSnapshots(ctx context.Context, d devices.Device, client DeviceClient) (int, error) {
	ids, err := client.SnapshotList(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot list of device %s: %w", d.ID, err)
	}

	s.mu.RLock()
	known := s.seen[d.ID]
	s.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	var errs []error
	announced := 0
	for _, id := range ids {
		if _, ok := known[id]; ok {
			seen[id] = struct{}{}
			continue
		}
		if s.store != nil {
			stored, err := s.store.SeenSnapshot(d.ID, id)
			if err != nil {
				errs = append(errs, fmt.Errorf("dedupe snapshot %s/%s: %w", d.ID, id, err))
				continue
			}
			if stored {
				seen[id] = struct{}{}
				continue
			}
		}

		if err := s.publish(ctx, publishers.NewSnapshotEvent(d.ID, d.Name, id)); err != nil {
			errs = append(errs, err)
			if errors.Is(err, errNothingDelivered) {
				continue
			}
		}
		announced++
		seen[id] = struct{}{}

		if s.store != nil {
			if err := s.store.MarkSnapshot(d.ID, id); err != nil {
				errs = append(errs, fmt.Errorf("mark snapshot %s/%s: %w", d.ID, id, err))
			}
		}
	}

	s.mu.Lock()
	s.seen[d.ID] = seen
	s.mu.Unlock()
	return announced, errors.Join(errs...)
}

var errNothingDelivered = errors.New("no publisher delivered the event")

func (s *Service) publish(ctx context.Context, evt publishers.Event) error {
	if s.publisher == nil {
		return nil
	}
	delivered, err := s.publisher.Publish(ctx, evt)
	if s.recorder != nil {
		s.recorder.ObservePublished(evt.Type, delivered, err != nil)
	}
	if err != nil {
		if delivered == 0 {
			err = errors.Join(errNothingDelivered, err)
		}
		return fmt.Errorf("publish %s for device %s: %w", evt.Type, evt.DeviceID, err)
	}
	s.log.InfoObj("event published", "event_meta", map[string]any{
		"type":        evt.Type,
		"device_id":   evt.DeviceID,
		"snapshot_id": evt.SnapshotID,
		"changed":     evt.Changed,
		"delivered":   delivered,
	})
	return nil
}
