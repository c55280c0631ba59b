package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/roomchat/roomchat-server/internal/store"
)

func newTestHub(t *testing.T, st store.HistoryStore, opts Options) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(st, nil, opts)
	go hub.Run(ctx)
	return hub
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event channel closed while waiting for kind %v", kind)
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("expected event kind %v not received", kind)
		}
	}
}

func mustErrorCode(t *testing.T, ch <-chan *Event, code string) *Event {
	t.Helper()

	ev := mustEvent(t, ch, EventError)
	if ev.Error == nil || ev.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v", code, ev)
	}
	return ev
}

// requireNoMessage drains events for a short window and fails if any chat
// message shows up.
func requireNoMessage(t *testing.T, ch <-chan *Event) {
	t.Helper()

	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Kind == EventMessage {
				t.Fatalf("unexpected chat message: %+v", ev)
			}
		case <-deadline:
			return
		}
	}
}

// memStore is an in-memory HistoryStore for hub tests. Failure flags
// simulate an unavailable database.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	byRoom     map[string][]*store.Message
	failAppend bool
	failQuery  bool
}

func newMemStore() *memStore {
	return &memStore{byRoom: make(map[string][]*store.Message)}
}

func (m *memStore) Append(_ context.Context, msg *store.Message) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return 0, store.ErrUnavailable
	}
	m.nextID++
	rec := *msg
	rec.ID = m.nextID
	m.byRoom[msg.Room] = append(m.byRoom[msg.Room], &rec)
	return rec.ID, nil
}

func (m *memStore) History(_ context.Context, room string, limit int) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failQuery {
		return nil, store.ErrUnavailable
	}
	records := m.byRoom[room]
	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	out := make([]*store.Message, len(records))
	copy(out, records)
	return out, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) roomBodies(room string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bodies []string
	for _, rec := range m.byRoom[room] {
		bodies = append(bodies, rec.Body)
	}
	return bodies
}
