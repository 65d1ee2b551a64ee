package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/openkarotz-hq/karotz-go/internal/storage"
	"github.com/openkarotz-hq/karotz-go/pkg/devices"
	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
	"github.com/openkarotz-hq/karotz-go/pkg/publishers"
)

// fakeClient returns preset statuses in order and a fixed snapshot list.
type fakeClient struct {
	statuses  []karotz.DeviceStatus
	snapshots []string
	statusErr error
	snapErr   error
	calls     int
}

func (f *fakeClient) Status(context.Context) (karotz.DeviceStatus, error) {
	if f.statusErr != nil {
		return karotz.DeviceStatus{}, f.statusErr
	}
	st := f.statuses[min(f.calls, len(f.statuses)-1)]
	f.calls++
	return st, nil
}

func (f *fakeClient) SnapshotList(context.Context) ([]string, error) {
	return f.snapshots, f.snapErr
}

// fakePublisher records events and can fail for one event type.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishers.Event
	failOn string
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.Type == f.failOn {
		return 0, errors.New("boom")
	}
	return 1, nil
}

// memStore is an in-memory Store.
type memStore struct {
	seen   map[string]bool
	states map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{seen: map[string]bool{}, states: map[string][]byte{}}
}

func (m *memStore) SeenSnapshot(dev, id string) (bool, error) { return m.seen[dev+"/"+id], nil }
func (m *memStore) MarkSnapshot(dev, id string) error {
	m.seen[dev+"/"+id] = true
	return nil
}
func (m *memStore) LoadState(dev string) ([]byte, error) { return m.states[dev], nil }
func (m *memStore) SaveState(dev string, raw []byte) error {
	m.states[dev] = raw
	return nil
}

type fakeRecorder struct {
	polls     map[string]int
	published map[string]int
}

func (r *fakeRecorder) ObservePoll(device string, err error) {
	key := device + ":ok"
	if err != nil {
		key = device + ":error"
	}
	r.polls[key]++
}

func (r *fakeRecorder) ObservePublished(eventType string, delivered int, _ bool) {
	r.published[eventType] += delivered
}

func status(sleep int, color string) karotz.DeviceStatus {
	return karotz.DeviceStatus{Sleep: karotz.IntOf(sleep), LEDColor: karotz.Text(color), Version: karotz.IntOf(200)}
}

func newTestService(client DeviceClient, pub EventPublisher, store Store) (*Service, *fakeRecorder) {
	rec := &fakeRecorder{polls: map[string]int{}, published: map[string]int{}}
	factory := func(devices.Device) (DeviceClient, error) { return client, nil }
	return NewService(factory, pub, nil, store, rec), rec
}

func TestServiceEmitsStateChangesAfterBaseline(t *testing.T) {
	client := &fakeClient{statuses: []karotz.DeviceStatus{
		status(0, "00ff00"),
		status(0, "00FF00"),
		status(1, "0000FF"),
	}}
	pub := &fakePublisher{}
	svc, rec := newTestService(client, pub, newMemStore())
	dev := devices.Device{ID: "kitchen", Name: "Kitchen"}

	for i := 0; i < 3; i++ {
		if err := svc.PollDevice(context.Background(), dev); err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected exactly one state event, got %+v", pub.events)
	}
	evt := pub.events[0]
	if evt.Type != publishers.EventStateChanged || evt.DeviceName != "Kitchen" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if strings.Join(evt.Changed, ",") != "sleeping,led_color" {
		t.Fatalf("changed = %v", evt.Changed)
	}
	if !evt.State.Sleeping || evt.State.Version != "200" {
		t.Fatalf("state = %+v", evt.State)
	}
	if rec.polls["kitchen:ok"] != 3 || rec.published[publishers.EventStateChanged] != 1 {
		t.Fatalf("recorder = %+v", rec)
	}

	st, ok := svc.State("kitchen")
	if !ok || st.LEDColor != "0000FF" {
		t.Fatalf("State() = %+v, %v", st, ok)
	}
}

func TestServiceUsesStoredStateAsBaseline(t *testing.T) {
	store := newMemStore()
	raw, _ := json.Marshal(publishers.DeviceState{Sleeping: true, LEDColor: "0000FF"})
	store.states["kitchen"] = raw

	pub := &fakePublisher{}
	svc, _ := newTestService(&fakeClient{statuses: []karotz.DeviceStatus{status(0, "0000FF")}}, pub, store)

	if err := svc.PollDevice(context.Background(), devices.Device{ID: "kitchen"}); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Changed[0] != "sleeping" {
		t.Fatalf("expected wake-up event from stored baseline, got %+v", pub.events)
	}
}

func TestServiceAnnouncesUnseenSnapshotsOnce(t *testing.T) {
	client := &fakeClient{
		statuses:  []karotz.DeviceStatus{status(0, "")},
		snapshots: []string{"snapshot_1.jpg", "snapshot_2.jpg"},
	}
	store := newMemStore()
	store.seen["cam/snapshot_1.jpg"] = true
	pub := &fakePublisher{}
	svc, _ := newTestService(client, pub, store)
	dev := devices.Device{ID: "cam", Snapshots: true}

	for i := 0; i < 2; i++ {
		if err := svc.PollDevice(context.Background(), dev); err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected one snapshot event, got %+v", pub.events)
	}
	if pub.events[0].SnapshotID != "snapshot_2.jpg" || pub.events[0].Type != publishers.EventSnapshotTaken {
		t.Fatalf("unexpected event %+v", pub.events[0])
	}
	if !store.seen["cam/snapshot_2.jpg"] {
		t.Fatalf("snapshot should be marked seen")
	}
}

func TestServiceRetriesSnapshotWhenNothingDelivered(t *testing.T) {
	client := &fakeClient{
		statuses:  []karotz.DeviceStatus{status(0, "")},
		snapshots: []string{"s1"},
	}
	store := newMemStore()
	pub := &fakePublisher{failOn: publishers.EventSnapshotTaken}
	svc, _ := newTestService(client, pub, store)

	err := svc.PollDevice(context.Background(), devices.Device{ID: "cam", Snapshots: true})
	if err == nil {
		t.Fatalf("expected publish error")
	}
	if store.seen["cam/s1"] {
		t.Fatalf("undelivered snapshot must stay unseen")
	}
}

func TestServiceAnnouncesSnapshotsOnceWithoutPersistence(t *testing.T) {
	store, err := storage.NewStore("none", "", storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	client := &fakeClient{
		statuses:  []karotz.DeviceStatus{status(0, "")},
		snapshots: []string{"a.jpg", "b.jpg"},
	}
	pub := &fakePublisher{}
	svc, _ := newTestService(client, pub, store)
	dev := devices.Device{ID: "cam", Snapshots: true}

	for i := 0; i < 3; i++ {
		if err := svc.PollDevice(context.Background(), dev); err != nil {
			t.Fatalf("poll %d: %v", i, err)
		}
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected two snapshot events after three polls, got %d", len(pub.events))
	}

	client.snapshots = []string{"b.jpg", "c.jpg"}
	if err := svc.PollDevice(context.Background(), dev); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if len(pub.events) != 3 || pub.events[2].SnapshotID != "c.jpg" {
		t.Fatalf("expected only c.jpg to be announced, got %+v", pub.events)
	}
}

func TestServiceRetriesStateChangeWhenNothingDelivered(t *testing.T) {
	client := &fakeClient{statuses: []karotz.DeviceStatus{
		status(0, "00FF00"),
		status(1, "00FF00"),
		status(1, "00FF00"),
	}}
	store := newMemStore()
	pub := &fakePublisher{}
	svc, _ := newTestService(client, pub, store)
	dev := devices.Device{ID: "kitchen"}

	if err := svc.PollDevice(context.Background(), dev); err != nil {
		t.Fatalf("baseline poll: %v", err)
	}

	pub.failOn = publishers.EventStateChanged
	if err := svc.PollDevice(context.Background(), dev); err == nil {
		t.Fatalf("expected publish error")
	}
	var stored publishers.DeviceState
	if err := json.Unmarshal(store.states["kitchen"], &stored); err != nil || stored.Sleeping {
		t.Fatalf("undelivered change must not move the stored baseline: %+v err=%v", stored, err)
	}
	if st, _ := svc.State("kitchen"); !st.Sleeping {
		t.Fatalf("State() should report the latest observation")
	}

	pub.failOn = ""
	if err := svc.PollDevice(context.Background(), dev); err != nil {
		t.Fatalf("retry poll: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected the change to be published again, got %d events", len(pub.events))
	}
	last := pub.events[1]
	if last.Type != publishers.EventStateChanged || strings.Join(last.Changed, ",") != "sleeping" {
		t.Fatalf("unexpected retried event %+v", last)
	}
	if err := json.Unmarshal(store.states["kitchen"], &stored); err != nil || !stored.Sleeping {
		t.Fatalf("delivered change should be stored: %+v err=%v", stored, err)
	}
}

func TestRunJoinsDeviceErrorsAndHonoursInterval(t *testing.T) {
	good := &fakeClient{statuses: []karotz.DeviceStatus{status(0, "")}}
	factory := func(d devices.Device) (DeviceClient, error) {
		if d.ID == "broken" {
			return &fakeClient{statusErr: errors.New("unreachable")}, nil
		}
		return good, nil
	}
	svc := NewService(factory, &fakePublisher{}, nil, nil, nil)
	clock := time.Now()
	svc.now = func() time.Time { return clock }

	devs := []devices.Device{{ID: "ok", PollIntervalSeconds: 60}, {ID: "broken"}}
	err := svc.Run(context.Background(), devs)
	if err == nil || !strings.Contains(err.Error(), "unreachable") {
		t.Fatalf("expected joined device error, got %v", err)
	}

	clock = clock.Add(30 * time.Second)
	_ = svc.Run(context.Background(), devs)
	if good.calls != 1 {
		t.Fatalf("device polled before its interval elapsed: %d calls", good.calls)
	}

	clock = clock.Add(31 * time.Second)
	_ = svc.Run(context.Background(), devs)
	if good.calls != 2 {
		t.Fatalf("expected second poll after interval, got %d calls", good.calls)
	}
}

func TestRunRequiresDevices(t *testing.T) {
	svc := NewService(func(devices.Device) (DeviceClient, error) { return nil, nil }, nil, nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error without devices")
	}
	var nilSvc *Service
	if err := nilSvc.Run(context.Background(), []devices.Device{{ID: "x"}}); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestClientFactoryErrorIsReported(t *testing.T) {
	svc := NewService(func(devices.Device) (DeviceClient, error) {
		return nil, karotz.ErrInvalidHostname
	}, nil, nil, nil, nil)
	err := svc.PollDevice(context.Background(), devices.Device{ID: "x"})
	if !errors.Is(err, karotz.ErrInvalidHostname) {
		t.Fatalf("expected wrapped hostname error, got %v", err)
	}
}
