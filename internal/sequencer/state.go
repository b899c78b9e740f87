package sequencer

import (
	"fmt"

	"github.com/lowaak/interval-trainer/internal/plans"
)

// Status is the coarse state of the machine.
type Status string

const (
	StatusStopped   Status = "stopped"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

// State is the mutable sequencer state. Values are copied, never shared.
type State struct {
	PlanKey          string
	PhaseIndex       int
	RemainingSeconds int
	IsRunning        bool

	// Completed is set when the last phase ran out and cleared by any
	// control operation that leaves the terminal state.
	Completed bool

	// Warned is set once the pre-transition warning fired for the current phase.
	Warned bool
}

// InitialState is phase 0 of plan, full duration, not running.
func InitialState(plan plans.Plan) State {
	return State{
		PlanKey:          plan.Key,
		PhaseIndex:       0,
		RemainingSeconds: plan.Phases[0].Duration,
	}
}

// Status derives the coarse status from the state flags.
func (s State) Status() Status {
	switch {
	case s.IsRunning:
		return StatusRunning
	case s.Completed:
		return StatusCompleted
	default:
		return StatusStopped
	}
}

// Validate checks the range invariants of s against plan.
func (s State) Validate(plan plans.Plan) error {
	if s.PlanKey != plan.Key {
		return fmt.Errorf("state plan %q does not match plan %q", s.PlanKey, plan.Key)
	}
	if s.PhaseIndex < 0 || s.PhaseIndex >= len(plan.Phases) {
		return fmt.Errorf("phase index %d out of range [0,%d)", s.PhaseIndex, len(plan.Phases))
	}
	if limit := plan.Phases[s.PhaseIndex].Duration; s.RemainingSeconds < 0 || s.RemainingSeconds > limit {
		return fmt.Errorf("remaining %ds out of range [0,%d]", s.RemainingSeconds, limit)
	}
	if s.IsRunning && s.Completed {
		return fmt.Errorf("state cannot be both running and completed")
	}
	return nil
}

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	PlanKey          string
	PlanName         string
	PhaseIndex       int
	PhaseCount       int
	RemainingSeconds int
	IsRunning        bool
	Status           Status

	CurrentPhase plans.Phase
	NextPhase    *plans.Phase

	// UpcomingPhases are the next few phases after the current one.
	UpcomingPhases []plans.Phase

	// PrepareFor names the next phase during the last seconds of the
	// current one; empty otherwise.
	PrepareFor string
}

const (
	// prepareWindow is how many seconds before a transition PrepareFor is shown.
	prepareWindow = 3

	upcomingPreview = 3
)

func newSnapshot(plan plans.Plan, state State) Snapshot {
	snapshot := Snapshot{
		PlanKey:          state.PlanKey,
		PlanName:         plan.Name,
		PhaseIndex:       state.PhaseIndex,
		PhaseCount:       len(plan.Phases),
		RemainingSeconds: state.RemainingSeconds,
		IsRunning:        state.IsRunning,
		Status:           state.Status(),
		CurrentPhase:     plan.Phases[state.PhaseIndex],
	}
	if next, ok := plan.Phase(state.PhaseIndex + 1); ok {
		snapshot.NextPhase = &next
		if state.RemainingSeconds <= prepareWindow {
			snapshot.PrepareFor = next.Name
		}
	}
	upcoming := plan.Phases[state.PhaseIndex+1:]
	if len(upcoming) > upcomingPreview {
		upcoming = upcoming[:upcomingPreview]
	}
	snapshot.UpcomingPhases = make([]plans.Phase, len(upcoming))
	copy(snapshot.UpcomingPhases, upcoming)
	return snapshot
}

// Preview returns at most n upcoming phases.
func (s Snapshot) Preview(n int) []plans.Phase {
	if n < 0 {
		n = 0
	}
	if n > len(s.UpcomingPhases) {
		n = len(s.UpcomingPhases)
	}
	return s.UpcomingPhases[:n]
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
