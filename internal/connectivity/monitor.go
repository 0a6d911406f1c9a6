// Package connectivity tracks remote reachability and announces transitions.
package connectivity

import (
	"net"
	"sync"
	"time"
)

// Checker takes a point-in-time reachability snapshot.
type Checker func() bool

// DialChecker probes an address with a plain TCP dial.
func DialChecker(addr string, timeout time.Duration) Checker {
	return func() bool {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// Monitor is the connectivity gate. IsOnline probes fresh on every call,
// since connectivity can flip mid-operation; once a remote attempt is in
// flight, its own outcome governs, not a re-check. Subscribers are notified
// only on online/offline transitions, never on repeated same-state checks.
type Monitor struct {
	mu          sync.Mutex
	check       Checker
	online      bool
	subscribers []func(online bool)
}

// NewMonitor builds a monitor around a checker. A nil checker yields a
// manually driven monitor (SetOnline), which starts offline.
func NewMonitor(check Checker) *Monitor {
	m := &Monitor{check: check}
	if check != nil {
		m.online = check()
	}
	return m
}

func (m *Monitor) IsOnline() bool {
	if m.check == nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.online
	}
	return m.Refresh()
}

// Refresh probes once and fires subscribers when the state flipped.
func (m *Monitor) Refresh() bool {
	if m.check == nil {
		return m.IsOnline()
	}
	online := m.check()
	m.set(online)
	return online
}

// SetOnline forces the state, for tests and manually driven monitors.
func (m *Monitor) SetOnline(online bool) {
	m.set(online)
}

// Subscribe registers a transition listener. The callback runs on the
// goroutine that observed the transition.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Monitor) set(online bool) {
	m.mu.Lock()
	changed := online != m.online
	m.online = online
	subscribers := make([]func(online bool), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subscribers {
		fn(online)
	}
}
