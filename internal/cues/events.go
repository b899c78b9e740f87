// Package cues turns sequencer events into best-effort side effects: tones,
// desktop notifications and a display wake-lock.
package cues

import (
	"fmt"

	"github.com/lowaak/interval-trainer/internal/plans"
)

// Kind identifies a sequencer event that may produce cues.
type Kind int

const (
	Warning         Kind = iota // three seconds before a transition
	PhaseChanged                // a new phase just began
	WorkoutComplete             // the last phase ran out
	SessionResumed              // not-running -> running
	SessionPaused               // running -> not-running on user request
)

func (k Kind) String() string {
	switch k {
	case Warning:
		return "warning"
	case PhaseChanged:
		return "phase_changed"
	case WorkoutComplete:
		return "workout_complete"
	case SessionResumed:
		return "session_resumed"
	case SessionPaused:
		return "session_paused"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is what the sequencer hands to the emitter.
type Event struct {
	Kind Kind

	// PlanName is set on every event.
	PlanName string

	// Phase is the phase that just began (PhaseChanged) or the phase that
	// is about to end (Warning). Zero for the other kinds.
	Phase plans.Phase
}

func (e Event) String() string {
	if e.Phase.Name != "" {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Phase.Name)
	}
	return e.Kind.String()
}
