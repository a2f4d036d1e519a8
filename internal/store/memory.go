package store

import (
	"context"
	"sync"
	"time"
)

func init() {
	Register("memory", func(context.Context, Config) (KV, error) {
		return NewMemory(), nil
	})
}

type memEntry struct {
	value   []byte
	updated time.Time
}

// Memory is a process-local KV. Values are copied in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]memEntry
	now  func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]memEntry),
		now:  time.Now,
	}
}

func (m *Memory) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[namespace][key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *Memory) Put(_ context.Context, namespace, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]memEntry)
		m.data[namespace] = ns
	}
	ns[key] = memEntry{value: append([]byte(nil), value...), updated: m.now()}
	return nil
}

func (m *Memory) Delete(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ns, ok := m.data[namespace]; ok {
		delete(ns, key)
		if len(ns) == 0 {
			delete(m.data, namespace)
		}
	}
	return nil
}

func (m *Memory) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for name, ns := range m.data {
		for k, e := range ns {
			if e.updated.Before(cutoff) {
				delete(ns, k)
				n++
			}
		}
		if len(ns) == 0 {
			delete(m.data, name)
		}
	}
	return n, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}
