package routekit

import (
	"container/list"
	"sync"
)

// The router's caches are pure memoization over immutable inputs. Instead of
// clearing each one at every mutation site, the router carries a
// monotonically increasing generation counter: every route or middleware
// mutation bumps it, and a cache lazily wipes itself when it observes a
// generation it was not filled under.

// genMap is a generation-validated, capacity-bounded memo map. Insertion is
// append-only: once the capacity is reached new entries are simply not
// cached, so effectiveness degrades gracefully for long-tail keys without
// unbounded growth. A capacity of 0 means unbounded.
type genMap[V any] struct {
	mu       sync.RWMutex
	gen      uint64
	capacity int
	entries  map[string]V
}

func newGenMap[V any](capacity int) *genMap[V] {
	return &genMap[V]{capacity: capacity, entries: make(map[string]V)}
}

func (m *genMap[V]) get(gen uint64, key string) (V, bool) {
	m.mu.RLock()
	if m.gen != gen {
		m.mu.RUnlock()
		var zero V
		return zero, false
	}
	v, ok := m.entries[key]
	m.mu.RUnlock()
	return v, ok
}

func (m *genMap[V]) put(gen uint64, key string, v V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		m.entries = make(map[string]V)
		m.gen = gen
	}
	if m.capacity > 0 && len(m.entries) >= m.capacity {
		return
	}
	m.entries[key] = v
}

// genList is a generation-validated memo map with capacity-bounded,
// insertion-ordered eviction: at capacity the oldest inserted key is dropped
// to make room for the new one.
type genList[V any] struct {
	mu       sync.Mutex
	gen      uint64
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

type genListEntry[V any] struct {
	key   string
	value V
}

func newGenList[V any](capacity int) *genList[V] {
	return &genList[V]{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (l *genList[V]) get(gen uint64, key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		l.reset(gen)
		var zero V
		return zero, false
	}
	elem, ok := l.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return elem.Value.(*genListEntry[V]).value, true
}

func (l *genList[V]) put(gen uint64, key string, v V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen != gen {
		l.reset(gen)
	}
	if elem, ok := l.entries[key]; ok {
		elem.Value.(*genListEntry[V]).value = v
		return
	}
	if l.capacity > 0 && len(l.entries) >= l.capacity {
		oldest := l.order.Front()
		if oldest != nil {
			l.order.Remove(oldest)
			delete(l.entries, oldest.Value.(*genListEntry[V]).key)
		}
	}
	l.entries[key] = l.order.PushBack(&genListEntry[V]{key: key, value: v})
}

func (l *genList[V]) reset(gen uint64) {
	l.entries = make(map[string]*list.Element)
	l.order.Init()
	l.gen = gen
}
