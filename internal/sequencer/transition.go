package sequencer

import (
	"github.com/lowaak/interval-trainer/internal/cues"
	"github.com/lowaak/interval-trainer/internal/plans"
)

// warningAt is the pre-tick remaining value that triggers the warning, so
// that it sounds with three seconds left.
const warningAt = 4

// InputKind enumerates what can drive a transition.
type InputKind int

const (
	InputTick InputKind = iota
	InputStart
	InputPause
	InputReset
	InputSelect
)

// Input drives one transition. Plan is only read for InputSelect.
type Input struct {
	Kind InputKind
	Plan plans.Plan
}

// Step is the outcome of one transition.
type Step struct {
	// Plan is the plan State refers to after the transition.
	Plan  plans.Plan
	State State
	Cues  []cues.Event

	// ReleaseDisplay asks for a silent wake-lock release. It is set when a
	// running session is stopped by reset or plan selection, which fire no cue.
	ReleaseDisplay bool
}

// Next computes the transition for input from state, which belongs to plan.
// It has no side effects and does not read the clock.
func Next(plan plans.Plan, state State, input Input) Step {
	step := Step{Plan: plan, State: state}

	switch input.Kind {
	case InputSelect:
		step.Plan = input.Plan
		step.State = InitialState(input.Plan)
		step.ReleaseDisplay = state.IsRunning

	case InputReset:
		step.State = InitialState(plan)
		step.ReleaseDisplay = state.IsRunning

	case InputStart:
		if state.IsRunning {
			return step
		}
		if state.Completed {
			step.State = InitialState(plan)
		}
		step.State.IsRunning = true
		step.emit(cues.SessionResumed, plans.Phase{})
		step.clampWarning()

	case InputPause:
		if !state.IsRunning {
			return step
		}
		step.State.IsRunning = false
		step.emit(cues.SessionPaused, plans.Phase{})

	case InputTick:
		if !state.IsRunning {
			return step
		}
		step.tick()
	}

	return step
}

func (step *Step) tick() {
	s := &step.State
	current := step.Plan.Phases[s.PhaseIndex]

	if s.RemainingSeconds == warningAt && !s.Warned {
		s.Warned = true
		step.emit(cues.Warning, current)
	}

	if s.RemainingSeconds-1 > 0 {
		s.RemainingSeconds--
		return
	}

	next, ok := step.Plan.Phase(s.PhaseIndex + 1)
	if !ok {
		s.IsRunning = false
		s.Completed = true
		s.RemainingSeconds = 0
		step.emit(cues.WorkoutComplete, plans.Phase{})
		return
	}

	s.PhaseIndex++
	s.RemainingSeconds = next.Duration
	s.Warned = false
	step.emit(cues.PhaseChanged, next)
	step.clampWarning()
}

// clampWarning fires the warning straight away when a phase of at most
// warningAt seconds begins, since its countdown never ticks away from warningAt.
func (step *Step) clampWarning() {
	s := &step.State
	phase := step.Plan.Phases[s.PhaseIndex]
	if s.Warned || phase.Duration > warningAt || s.RemainingSeconds != phase.Duration {
		return
	}
	s.Warned = true
	step.emit(cues.Warning, phase)
}

func (step *Step) emit(kind cues.Kind, phase plans.Phase) {
	step.Cues = append(step.Cues, cues.Event{
		Kind:     kind,
		PlanName: step.Plan.Name,
		Phase:    phase,
	})
}
