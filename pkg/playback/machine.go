// Package playback models a client's player as an explicit state machine driven by
// player events, with change notifications for UI code.
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is a player state.
type State int

// Player states.
const (
	Idle State = iota
	Loading
	Playing
	Paused
	Ended
	Error
)

var stateNames = [...]string{"idle", "loading", "playing", "paused", "ended", "error"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is something the player engine reports or the user requests.
type Event int

// Events.
const (
	EventLoad Event = iota
	EventReady
	EventPause
	EventResume
	EventComplete
	EventFail
	EventStop
	EventProgress
)

var eventNames = [...]string{"load", "ready", "pause", "resume", "complete", "fail", "stop", "progress"}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrInvalidTransition is returned when an event is not allowed in the current state.
var ErrInvalidTransition = errors.New("invalid playback transition")

// transitions lists the target state of every allowed (state, event) pair.
var transitions = map[State]map[Event]State{
	Idle: {
		EventLoad: Loading,
	},
	Loading: {
		EventReady: Playing,
		EventFail:  Error,
		EventStop:  Idle,
		EventLoad:  Loading,
	},
	Playing: {
		EventPause:    Paused,
		EventComplete: Ended,
		EventFail:     Error,
		EventStop:     Idle,
		EventLoad:     Loading,
		EventProgress: Playing,
	},
	Paused: {
		EventResume:   Playing,
		EventFail:     Error,
		EventStop:     Idle,
		EventLoad:     Loading,
		EventProgress: Paused,
	},
	Ended: {
		EventResume: Playing,
		EventLoad:   Loading,
		EventStop:   Idle,
	},
	Error: {
		EventLoad: Loading,
		EventStop: Idle,
	},
}

// Snapshot is the full observable player state.
type Snapshot struct {
	State    State
	URL      string
	Position time.Duration
	Duration time.Duration
	Err      error
}

// Transition is delivered to subscribers after every accepted event.
type Transition struct {
	From  State
	To    State
	Event Event
	Snapshot
}

// Machine is safe for concurrent use. Subscribers run synchronously, in registration
// order, outside the machine's lock.
type Machine struct {
	mu          sync.Mutex
	snap        Snapshot
	subscribers map[int]func(Transition)
	order       []int
	nextID      int
}

// New returns a machine in the Idle state.
func New() *Machine {
	return &Machine{
		subscribers: make(map[int]func(Transition)),
	}
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// State returns the current state.
func (m *Machine) State() State {
	return m.Snapshot().State
}

// Subscribe registers fn for transitions and returns a function that removes it.
func (m *Machine) Subscribe(fn func(Transition)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.order = append(m.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subscribers, id)
			for i, v := range m.order {
				if v == id {
					m.order = append(m.order[:i], m.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Load starts loading url. It is allowed in every state.
func (m *Machine) Load(url string) error {
	return m.fire(EventLoad, func(s *Snapshot) {
		s.URL = url
		s.Position = 0
		s.Duration = 0
		s.Err = nil
	})
}

// Ready reports that the engine started playback of a track of the given length.
func (m *Machine) Ready(duration time.Duration) error {
	return m.fire(EventReady, func(s *Snapshot) {
		s.Duration = duration
	})
}

// Pause pauses playback.
func (m *Machine) Pause() error {
	return m.fire(EventPause, nil)
}

// Resume continues playback. Resuming after Ended replays from the start.
func (m *Machine) Resume() error {
	return m.fire(EventResume, func(s *Snapshot) {
		if s.State == Ended {
			s.Position = 0
		}
	})
}

// Complete reports that the track played to its end.
func (m *Machine) Complete() error {
	return m.fire(EventComplete, func(s *Snapshot) {
		s.Position = s.Duration
	})
}

// Fail reports an engine error.
func (m *Machine) Fail(err error) error {
	return m.fire(EventFail, func(s *Snapshot) {
		s.Err = err
	})
}

// Stop returns to Idle and forgets the current track.
func (m *Machine) Stop() error {
	return m.fire(EventStop, func(s *Snapshot) {
		*s = Snapshot{State: s.State}
	})
}

// Progress records the sampled playback position.
func (m *Machine) Progress(position time.Duration) error {
	return m.fire(EventProgress, func(s *Snapshot) {
		s.Position = position
	})
}

func (m *Machine) fire(event Event, update func(*Snapshot)) error {
	m.mu.Lock()

	from := m.snap.State
	to, ok := transitions[from][event]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, from)
	}

	if update != nil {
		update(&m.snap)
	}
	m.snap.State = to

	transition := Transition{From: from, To: to, Event: event, Snapshot: m.snap}
	subscribers := make([]func(Transition), 0, len(m.order))
	for _, id := range m.order {
		subscribers = append(subscribers, m.subscribers[id])
	}
	m.mu.Unlock()

	for _, fn := range subscribers {
		fn(transition)
	}
	return nil
}
