package pipeline

import (
	"errors"
	"math/rand"
	"testing"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name     string
		from     State
		expected State
		next     State
		ok       bool
	}{
		{"idle_to_recording", Idle, Idle, Recording, true},
		{"recording_to_processing", Recording, Recording, Processing, true},
		{"processing_to_idle", Processing, Processing, Idle, true},
		{"processing_to_cancelling", Processing, Processing, Cancelling, true},
		{"cancelling_to_recording", Cancelling, Cancelling, Recording, true},
		{"idle_release_rejected", Idle, Recording, Processing, false},
		{"recording_vs_idle_expectation", Recording, Idle, Recording, false},
		{"processing_vs_recording_expectation", Processing, Recording, Processing, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			// walk to the starting state
			switch tt.from {
			case Recording:
				m.Transition(Idle, Recording, "setup")
			case Processing:
				m.Transition(Idle, Recording, "setup")
				m.Transition(Recording, Processing, "setup")
			case Cancelling:
				m.Transition(Idle, Recording, "setup")
				m.Transition(Recording, Processing, "setup")
				m.Transition(Processing, Cancelling, "setup")
			}
			err := m.Transition(tt.expected, tt.next, "test action")
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok {
				var ite *InvalidTransitionError
				if !errors.As(err, &ite) {
					t.Fatalf("err = %v, want InvalidTransitionError", err)
				}
				if m.State() != tt.from {
					t.Fatalf("failed transition changed state to %v", m.State())
				}
			}
		})
	}
}

func TestInvalidTransitionMessage(t *testing.T) {
	m := NewMachine()
	err := m.Transition(Recording, Processing, "stop recording")
	if err == nil || err.Error() != "cannot stop recording while idle" {
		t.Fatalf("err = %v", err)
	}
}

func TestObserversSeeEveryTransition(t *testing.T) {
	m := NewMachine()
	ch := m.Subscribe()
	m.Transition(Idle, Recording, "a")
	m.Transition(Recording, Processing, "b")
	m.Transition(Processing, Idle, "c")

	want := []Transition{
		{Idle, Recording},
		{Recording, Processing},
		{Processing, Idle},
	}
	for i, w := range want {
		got := <-ch
		if got != w {
			t.Fatalf("transition %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestSlowObserverNeverBlocks(t *testing.T) {
	m := NewMachine()
	m.Subscribe() // never read
	for i := 0; i < 100; i++ {
		if err := m.Transition(Idle, Recording, "a"); err != nil {
			t.Fatal(err)
		}
		if err := m.Transition(Recording, Idle, "b"); err != nil {
			t.Fatal(err)
		}
	}
}

// legalNext returns the states reachable from s via the press/release/
// complete edges the orchestrator drives.
func legalNext(s State) []State {
	switch s {
	case Idle:
		return []State{Idle, Recording}
	case Recording:
		return []State{Recording, Processing}
	case Processing:
		return []State{Processing, Idle, Cancelling}
	case Cancelling:
		return []State{Recording}
	}
	return nil
}

// Random event sequences must never produce a transition outside the table.
func TestRandomEventSequencesStayLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m := NewMachine()
	ch := m.Subscribe()

	events := []func(){
		func() { // press
			switch m.State() {
			case Idle:
				m.Transition(Idle, Recording, "press")
			case Processing:
				if m.Transition(Processing, Cancelling, "press") == nil {
					m.Transition(Cancelling, Recording, "press")
				}
			}
		},
		func() { // release
			m.Transition(Recording, Processing, "release")
		},
		func() { // pipeline complete
			m.Transition(Processing, Idle, "complete")
		},
	}
	for i := 0; i < 5000; i++ {
		events[rng.Intn(len(events))]()
	}

	prev := Idle
	for {
		select {
		case tr := <-ch:
			// the buffered channel may have dropped some transitions, so
			// only the table membership is checked, not continuity
			ok := false
			for _, n := range legalNext(tr.From) {
				if n == tr.To && n != tr.From {
					ok = true
				}
			}
			if !ok {
				t.Fatalf("illegal transition observed: %v -> %v (prev %v)", tr.From, tr.To, prev)
			}
			prev = tr.To
		default:
			return
		}
	}
}
