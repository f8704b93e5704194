// Package connectivity tracks the device's reachability state. It is a thin
// observer over the host environment's own signal — the host calls Set when
// its network state changes; nothing here probes or pings.
package connectivity

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Monitor holds the current online/offline state and fans out one
// notification per actual transition. Flapping is delivered as-is, one
// notification per flap; consumers must tolerate notification storms.
type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]chan bool
	nextID int
}

// NewMonitor creates a Monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online, subs: make(map[int]chan bool)}
}

// IsOnline reports the current reachability state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records the host-reported state. Subscribers are notified only when the
// state actually changed.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.online == online {
		return
	}
	m.online = online
	log.Info().Bool("online", online).Msg("connectivity changed")
	for _, ch := range m.subs {
		// Buffered by one transition; a slow subscriber that already has a
		// pending notification just coalesces with it.
		select {
		case ch <- online:
		default:
		}
	}
}

// Subscribe registers a listener. The returned channel receives the new state
// on every transition. cancel unregisters and closes the channel.
func (m *Monitor) Subscribe() (<-chan bool, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ch := make(chan bool, 1)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
