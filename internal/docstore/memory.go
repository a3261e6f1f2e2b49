package docstore

import (
	"context"
	"slices"
	"sync"
)

type memoryEntry struct {
	version int64
	doc     Document
}

// Memory is a Store held in process memory.
type Memory struct {
	mu          sync.Mutex
	docs        map[string]*memoryEntry
	subscribers map[string][]chan Snapshot
	failure     error
}

func NewMemory() *Memory {
	return &Memory{
		docs:        make(map[string]*memoryEntry),
		subscribers: make(map[string][]chan Snapshot),
	}
}

// SetFailure makes every call fail with err until it is reset with nil.
func (m *Memory) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failure = err
}

func (m *Memory) Create(ctx context.Context, id string, doc Document) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return 0, m.failure
	}
	if _, ok := m.docs[id]; ok {
		return 0, ErrExists
	}
	e := &memoryEntry{version: 1, doc: Document{}.merge(doc)}
	m.docs[id] = e
	m.publish(id, e)
	return e.version, nil
}

func (m *Memory) Get(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}
	e, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	s := e.snapshot(id)
	return &s, nil
}

func (m *Memory) Replace(
	ctx context.Context, id string, fields Document, expect int64,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return 0, m.failure
	}
	e, ok := m.docs[id]
	if !ok {
		return 0, ErrNotFound
	}
	if expect != AnyVersion && expect != e.version {
		return 0, ErrStaleVersion
	}
	e.doc = e.doc.merge(fields)
	e.version++
	m.publish(id, e)
	return e.version, nil
}

func (m *Memory) Subscribe(ctx context.Context, id string) (<-chan Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failure != nil {
		return nil, m.failure
	}
	ch := make(chan Snapshot, 1)
	if e, ok := m.docs[id]; ok {
		ch <- e.snapshot(id)
	}
	m.subscribers[id] = append(m.subscribers[id], ch)

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		m.subscribers[id] = slices.DeleteFunc(m.subscribers[id], func(c chan Snapshot) bool {
			return c == ch
		})
		if len(m.subscribers[id]) == 0 {
			delete(m.subscribers, id)
		}
		close(ch)
	}()

	return ch, nil
}

func (m *Memory) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failure
}

func (m *Memory) publish(id string, e *memoryEntry) {
	for _, ch := range m.subscribers[id] {
		offer(ch, e.snapshot(id))
	}
}

func (e *memoryEntry) snapshot(id string) Snapshot {
	return Snapshot{ID: id, Version: e.version, Document: Document{}.merge(e.doc)}
}
