package publishers

import (
	"context"
	"errors"
	"testing"
)

type stubPublisher struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(context.Context, Event) error {
	s.calls++
	return s.err
}
func (s *stubPublisher) Close() error {
	s.closed = true
	return nil
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Publisher{
		&stubPublisher{id: "ok", typ: "http"},
		&stubPublisher{id: "bad", typ: "http", err: errors.New("failed")},
		nil,
	})

	if fanout.Size() != 2 {
		t.Fatalf("nil publishers should be dropped, size=%d", fanout.Size())
	}
	count, err := fanout.Publish(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutSkipsFilteredEventTypes(t *testing.T) {
	snapshotsOnly := &stubPublisher{id: "snap", typ: "sqs"}
	all := &stubPublisher{id: "all", typ: "sqs"}
	fanout := NewFanout([]Publisher{
		&filteredPublisher{Publisher: snapshotsOnly, events: []string{EventSnapshotTaken}},
		all,
	})

	count, err := fanout.Publish(context.Background(), Event{Type: EventStateChanged})
	if err != nil || count != 1 {
		t.Fatalf("count=%d err=%v", count, err)
	}
	if snapshotsOnly.calls != 0 || all.calls != 1 {
		t.Fatalf("unexpected calls filtered=%d all=%d", snapshotsOnly.calls, all.calls)
	}

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !snapshotsOnly.closed || !all.closed {
		t.Fatalf("expected every publisher closed")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "http", Type: TypeHTTP, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
		{ID: "filtered", Type: TypeHTTP, Events: []string{EventSnapshotTaken}, HTTP: &HTTPPublisherConfig{URL: "https://example.com"}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(pubs) != 2 {
		t.Fatalf("expected 2 publishers, got %d", len(pubs))
	}
	if _, ok := pubs[1].(*filteredPublisher); !ok {
		t.Fatalf("expected event filter wrapper, got %T", pubs[1])
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	_, err := BuildAll(context.Background(), DefaultRegistry(), []PublisherConfig{{ID: "x", Type: "kafka"}}, nil)
	if err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestBuildAllClosesBuiltPublishersOnError(t *testing.T) {
	built := &stubPublisher{id: "first", typ: "stub"}
	reg := NewRegistry(map[string]Builder{
		"stub": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return built, nil },
		"bad": func(context.Context, PublisherConfig, Logger) (Publisher, error) {
			return nil, errors.New("no credentials")
		},
	})

	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{
		{ID: "first", Type: "stub"},
		{ID: "second", Type: "bad"},
	}, nil)
	if err == nil || pubs != nil {
		t.Fatalf("expected build error, got %v, %v", pubs, err)
	}
	if !built.closed {
		t.Fatalf("publisher built before the failure should be closed")
	}
}
