package store

import (
	"sync"

	"github.com/vango-dev/querystate/pkg/location"
)

// ActionType names a store action.
type ActionType string

// ActionUpdate replaces the location and options.
const ActionUpdate ActionType = "UPDATE"

// Payload carries the new slot contents. State becomes the new options.
type Payload struct {
	Pathname string
	Search   string
	State    location.Options
}

// Action is dispatched to the store.
type Action struct {
	Type    ActionType
	Payload Payload
}

// Snapshot is the slot contents. Location.State is always nil; history state
// lives in Options.
type Snapshot struct {
	Location location.Location
	Options  location.Options
}

// Reduce applies a to s. Unknown action types return s unchanged.
func Reduce(s Snapshot, a Action) Snapshot {
	if a.Type != ActionUpdate {
		return s
	}
	return Snapshot{
		Location: location.Location{
			Pathname: a.Payload.Pathname,
			Search:   a.Payload.Search,
		},
		Options: a.Payload.State,
	}
}

// UpdateAction builds the UPDATE action for loc. A nil loc.State becomes
// empty options.
func UpdateAction(loc location.Location) Action {
	state := loc.State
	if state == nil {
		state = location.Options{}
	}
	return Action{
		Type: ActionUpdate,
		Payload: Payload{
			Pathname: loc.Pathname,
			Search:   loc.Search,
			State:    state,
		},
	}
}

type observer struct {
	fn func(Snapshot)
}

// Store is the single-slot reducer. It is safe to dispatch from the goroutine
// that delivers history notifications while other goroutines read.
type Store struct {
	mu        sync.Mutex
	state     Snapshot
	observers []*observer
}

// New seeds a store from loc. The initial options are a copy of loc.State
// overlaid by options, so consumer options win on collision.
func New(loc location.Location, options location.Options) *Store {
	return &Store{
		state: Snapshot{
			Location: loc.WithoutState(),
			Options:  location.Merge(loc.State.Clone(), options),
		},
	}
}

// Snapshot returns the current slot contents.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a into the slot and notifies observers.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	next := Reduce(s.state, a)
	s.state = next
	observers := append([]*observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(next)
	}
}

// Update dispatches the UPDATE action for loc. Its signature matches a
// history listener.
func (s *Store) Update(loc location.Location) {
	s.Dispatch(UpdateAction(loc))
}

// Subscribe registers fn to run after each dispatch. The returned function
// removes the registration; calling it more than once is harmless.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	o := &observer{fn: fn}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, cur := range s.observers {
			if cur == o {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}
