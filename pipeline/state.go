// Package pipeline drives one hold-to-speak cycle: capture, trim,
// transcribe, enhance, and cursor output, under a single serialized state
// machine.
package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"

	"murmur/log"
)

type State int32

const (
	Idle State = iota
	Recording
	Processing
	Cancelling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	case Cancelling:
		return "cancelling"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// InvalidTransitionError reports an operation attempted in the wrong state.
type InvalidTransitionError struct {
	Action string
	State  State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Action, e.State)
}

// Transition is one observed state change.
type Transition struct {
	From State
	To   State
}

// Machine holds the process-wide pipeline state. All changes go through
// Transition, which is serialized; State reads a lock-free snapshot.
// Observers see every change on a buffered channel, best-effort: a slow
// observer misses notifications rather than stalling the pipeline.
type Machine struct {
	mu    sync.Mutex
	state atomic.Int32

	obsMu     sync.Mutex
	observers []chan Transition
}

func NewMachine() *Machine {
	return &Machine{}
}

func (m *Machine) State() State {
	return State(m.state.Load())
}

// Transition moves from expected to next, failing if the current state is
// anything else.
func (m *Machine) Transition(expected, next State, action string) error {
	m.mu.Lock()
	cur := State(m.state.Load())
	if cur != expected {
		m.mu.Unlock()
		return &InvalidTransitionError{Action: action, State: cur}
	}
	m.state.Store(int32(next))
	m.mu.Unlock()

	log.Transition(cur.String(), next.String())
	m.notify(Transition{From: cur, To: next})
	return nil
}

// Subscribe registers an observer. Notifications are dropped if the channel
// buffer is full.
func (m *Machine) Subscribe() <-chan Transition {
	ch := make(chan Transition, 16)
	m.obsMu.Lock()
	m.observers = append(m.observers, ch)
	m.obsMu.Unlock()
	return ch
}

func (m *Machine) notify(t Transition) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	for _, ch := range m.observers {
		select {
		case ch <- t:
		default:
		}
	}
}
