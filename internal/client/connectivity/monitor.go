// Package connectivity tracks whether the server is reachable and tells
// interested parties when that changes.
package connectivity

import (
	"sync"
)

// Monitor holds the current online flag. Subscribers are notified only on
// transitions; every subscriber sees every transition, in order, one
// delivery at a time. Callbacks must not call Set.
type Monitor struct {
	deliver sync.Mutex

	mu     sync.Mutex
	online bool
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(online bool)
}

func NewMonitor(initial bool) *Monitor {
	return &Monitor{online: initial}
}

// Current returns the last known state.
func (m *Monitor) Current() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn for future transitions and returns a function
// that removes it.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, s := range m.subs {
				if s.id == id {
					m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Set records the state and notifies subscribers if it changed.
func (m *Monitor) Set(online bool) {
	m.deliver.Lock()
	defer m.deliver.Unlock()

	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := append([]subscriber(nil), m.subs...)
	m.mu.Unlock()

	for _, s := range subs {
		s.fn(online)
	}
}
