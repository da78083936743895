package history

import (
	"sync"

	"github.com/vango-dev/querystate/pkg/location"
)

// Action describes how the current entry was reached.
type Action string

const (
	ActionPush    Action = "PUSH"
	ActionReplace Action = "REPLACE"
	ActionPop     Action = "POP"
)

type listenerEntry struct {
	fn Listener
}

// Memory is an in-process history. Entry state is deep-copied on push so
// later changes by the caller do not alter recorded entries.
type Memory struct {
	mu        sync.Mutex
	entries   []location.Location
	index     int
	action    Action
	listeners []*listenerEntry
}

// NewMemory returns a history whose only entry is initial.
func NewMemory(initial location.Location) *Memory {
	initial.State = initial.State.Clone()
	return &Memory{
		entries: []location.Location{initial},
		action:  ActionPop,
	}
}

// Location returns the current entry.
func (m *Memory) Location() location.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index]
}

// Action returns how the current entry was reached.
func (m *Memory) Action() Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.action
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Index returns the position of the current entry.
func (m *Memory) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Listen registers fn.
func (m *Memory) Listen(fn Listener) Unlisten {
	e := &listenerEntry{fn: fn}
	m.mu.Lock()
	m.listeners = append(m.listeners, e)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, cur := range m.listeners {
				if cur == e {
					m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Push discards any forward entries, appends path and notifies listeners.
func (m *Memory) Push(path string, state location.Options) error {
	loc := location.Split(path)
	loc.State = state.Clone()

	m.mu.Lock()
	m.entries = append(m.entries[:m.index+1], loc)
	m.index = len(m.entries) - 1
	m.action = ActionPush
	m.mu.Unlock()

	m.notify(loc)
	return nil
}

// Replace swaps the current entry for path and notifies listeners.
func (m *Memory) Replace(path string, state location.Options) error {
	loc := location.Split(path)
	loc.State = state.Clone()

	m.mu.Lock()
	m.entries[m.index] = loc
	m.action = ActionReplace
	m.mu.Unlock()

	m.notify(loc)
	return nil
}

// Go moves n entries through the stack, clamped to its bounds. Listeners are
// notified only when the current entry changes.
func (m *Memory) Go(n int) {
	m.mu.Lock()
	next := m.index + n
	if next < 0 {
		next = 0
	}
	if next > len(m.entries)-1 {
		next = len(m.entries) - 1
	}
	if next == m.index {
		m.mu.Unlock()
		return
	}
	m.index = next
	m.action = ActionPop
	loc := m.entries[next]
	m.mu.Unlock()

	m.notify(loc)
}

// Back moves one entry back.
func (m *Memory) Back() { m.Go(-1) }

// Forward moves one entry forward.
func (m *Memory) Forward() { m.Go(1) }

func (m *Memory) notify(loc location.Location) {
	m.mu.Lock()
	listeners := append([]*listenerEntry(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l.fn(loc)
	}
}
