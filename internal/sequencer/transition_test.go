package sequencer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-trainer/internal/cues"
	"github.com/lowaak/interval-trainer/internal/plans"
)

var (
	warmupThenRun = plans.Plan{
		Key:  "a",
		Name: "Warmup then run",
		Phases: []plans.Phase{
			{Name: "Riscaldamento", Duration: 300, Kind: plans.KindWalk},
			{Name: "Corsa", Duration: 60, Kind: plans.KindRun},
		},
	}
	singleRun = plans.Plan{
		Key:    "c",
		Name:   "Single run",
		Phases: []plans.Phase{{Name: "Corsa", Duration: 5, Kind: plans.KindRun}},
	}
	shortPhases = plans.Plan{
		Key:  "s",
		Name: "Short phases",
		Phases: []plans.Phase{
			{Name: "Scatto", Duration: 2, Kind: plans.KindRun},
			{Name: "Passo", Duration: 4, Kind: plans.KindWalk},
			{Name: "Corsa", Duration: 6, Kind: plans.KindRun},
		},
	}
)

// drive applies inputs in order and collects every cue.
func drive(plan plans.Plan, state State, inputs ...InputKind) (plans.Plan, State, []cues.Event) {
	var fired []cues.Event
	for _, kind := range inputs {
		step := Next(plan, state, Input{Kind: kind})
		plan, state = step.Plan, step.State
		fired = append(fired, step.Cues...)
	}
	return plan, state, fired
}

func ticks(n int) []InputKind {
	inputs := make([]InputKind, n)
	for i := range inputs {
		inputs[i] = InputTick
	}
	return inputs
}

func kinds(events []cues.Event) []cues.Kind {
	out := make([]cues.Kind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

func countKind(events []cues.Event, kind cues.Kind) int {
	n := 0
	for _, e := range events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestNext_WarningFiresOnceBeforeTransition(t *testing.T) {
	_, state, fired := drive(warmupThenRun, InitialState(warmupThenRun), InputStart)
	assert.Equal(t, []cues.Kind{cues.SessionResumed}, kinds(fired))

	for i := 1; i <= 299; i++ {
		step := Next(warmupThenRun, state, Input{Kind: InputTick})
		state = step.State
		if i == 297 {
			require.Len(t, step.Cues, 1, "warning at the tick leaving 3 seconds")
			assert.Equal(t, cues.Warning, step.Cues[0].Kind)
			assert.Equal(t, "Riscaldamento", step.Cues[0].Phase.Name)
			assert.Equal(t, 3, state.RemainingSeconds)
		} else {
			assert.Empty(t, step.Cues, "tick %d", i)
		}
	}

	assert.Equal(t, 0, state.PhaseIndex)
	assert.Equal(t, 1, state.RemainingSeconds)
	assert.True(t, state.IsRunning)
}

func TestNext_PhaseChangeAfterLastSecond(t *testing.T) {
	inputs := append([]InputKind{InputStart}, ticks(300)...)
	_, state, fired := drive(warmupThenRun, InitialState(warmupThenRun), inputs...)

	assert.Equal(t, 1, state.PhaseIndex)
	assert.Equal(t, 60, state.RemainingSeconds)
	assert.False(t, state.Warned)

	require.Equal(t, []cues.Kind{cues.SessionResumed, cues.Warning, cues.PhaseChanged}, kinds(fired))
	assert.Equal(t, "Corsa", fired[2].Phase.Name)
	assert.Equal(t, plans.KindRun, fired[2].Phase.Kind)
	assert.Equal(t, warmupThenRun.Name, fired[2].PlanName)
}

func TestNext_WorkoutCompletes(t *testing.T) {
	inputs := append([]InputKind{InputStart}, ticks(5)...)
	_, state, fired := drive(singleRun, InitialState(singleRun), inputs...)

	assert.False(t, state.IsRunning)
	assert.True(t, state.Completed)
	assert.Equal(t, 0, state.RemainingSeconds)
	assert.Equal(t, StatusCompleted, state.Status())
	assert.Equal(t, 1, countKind(fired, cues.WorkoutComplete))

	_, after, more := drive(singleRun, state, ticks(3)...)
	assert.Equal(t, state, after, "ticks after completion are no-ops")
	assert.Empty(t, more)
}

func TestNext_SelectWhileRunningIsSilent(t *testing.T) {
	_, state, _ := drive(warmupThenRun, InitialState(warmupThenRun), InputStart, InputTick, InputTick)

	step := Next(warmupThenRun, state, Input{Kind: InputSelect, Plan: singleRun})

	assert.Equal(t, singleRun.Key, step.Plan.Key)
	assert.Equal(t, State{PlanKey: "c", PhaseIndex: 0, RemainingSeconds: 5}, step.State)
	assert.Empty(t, step.Cues)
	assert.True(t, step.ReleaseDisplay)
}

func TestNext_ResetWhileStoppedKeepsDisplayAlone(t *testing.T) {
	_, state, _ := drive(warmupThenRun, InitialState(warmupThenRun), InputStart, InputTick, InputPause)

	step := Next(warmupThenRun, state, Input{Kind: InputReset})

	assert.Equal(t, InitialState(warmupThenRun), step.State)
	assert.Empty(t, step.Cues)
	assert.False(t, step.ReleaseDisplay)
}

func TestNext_StartAndPauseAreIdempotent(t *testing.T) {
	_, running, _ := drive(warmupThenRun, InitialState(warmupThenRun), InputStart)
	step := Next(warmupThenRun, running, Input{Kind: InputStart})
	assert.Equal(t, running, step.State)
	assert.Empty(t, step.Cues)

	stopped := InitialState(warmupThenRun)
	step = Next(warmupThenRun, stopped, Input{Kind: InputPause})
	assert.Equal(t, stopped, step.State)
	assert.Empty(t, step.Cues)
}

func TestNext_PauseKeepsPosition(t *testing.T) {
	_, state, fired := drive(warmupThenRun, InitialState(warmupThenRun), InputStart, InputTick, InputTick, InputPause)

	assert.False(t, state.IsRunning)
	assert.Equal(t, 298, state.RemainingSeconds)
	assert.Equal(t, []cues.Kind{cues.SessionResumed, cues.SessionPaused}, kinds(fired))

	_, state, _ = drive(warmupThenRun, state, ticks(10)...)
	assert.Equal(t, 298, state.RemainingSeconds, "ticks while paused are no-ops")
}

func TestNext_StartAfterCompletionRestarts(t *testing.T) {
	inputs := append([]InputKind{InputStart}, ticks(5)...)
	_, done, _ := drive(singleRun, InitialState(singleRun), inputs...)
	require.True(t, done.Completed)

	step := Next(singleRun, done, Input{Kind: InputStart})

	assert.Equal(t, 0, step.State.PhaseIndex)
	assert.Equal(t, 5, step.State.RemainingSeconds)
	assert.True(t, step.State.IsRunning)
	assert.False(t, step.State.Completed)
	assert.Equal(t, []cues.Kind{cues.SessionResumed}, kinds(step.Cues))
}

func TestNext_ShortPhasesWarnOnEntry(t *testing.T) {
	_, state, fired := drive(shortPhases, InitialState(shortPhases), InputStart)
	require.Equal(t, []cues.Kind{cues.SessionResumed, cues.Warning}, kinds(fired))
	assert.Equal(t, "Scatto", fired[1].Phase.Name)

	// Pausing and resuming mid-phase does not warn again.
	_, state, fired = drive(shortPhases, state, InputTick, InputPause, InputStart)
	assert.Equal(t, []cues.Kind{cues.SessionPaused, cues.SessionResumed}, kinds(fired))

	// Entering the 4 second phase warns at once and not again on its first tick.
	_, state, fired = drive(shortPhases, state, InputTick)
	require.Equal(t, []cues.Kind{cues.PhaseChanged, cues.Warning}, kinds(fired))
	assert.Equal(t, "Passo", fired[1].Phase.Name)
	assert.Equal(t, 4, state.RemainingSeconds)

	_, state, fired = drive(shortPhases, state, ticks(4)...)
	assert.Equal(t, []cues.Kind{cues.PhaseChanged}, kinds(fired))
	assert.Equal(t, 2, state.PhaseIndex)

	// A 6 second phase warns through the countdown.
	_, _, fired = drive(shortPhases, state, ticks(3)...)
	assert.Equal(t, []cues.Kind{cues.Warning}, kinds(fired))
}

func TestNext_InvariantsHoldUnderRandomInputs(t *testing.T) {
	catalog := []plans.Plan{warmupThenRun, singleRun, shortPhases}
	rng := rand.New(rand.NewSource(20240601))
	weighted := []InputKind{
		InputTick, InputTick, InputTick, InputTick, InputTick, InputTick, InputTick, InputTick,
		InputStart, InputStart, InputPause, InputReset, InputSelect,
	}

	plan := shortPhases
	state := InitialState(plan)
	warnings := 0
	for i := 0; i < 20000; i++ {
		input := Input{Kind: weighted[rng.Intn(len(weighted))]}
		if input.Kind == InputSelect {
			input.Plan = catalog[rng.Intn(len(catalog))]
		}

		prev := state
		step := Next(plan, state, input)
		plan, state = step.Plan, step.State

		require.NoError(t, state.Validate(plan), "input %d", i)
		if state.IsRunning {
			require.Greater(t, state.RemainingSeconds, 0)
		}
		if prev.IsRunning && !state.IsRunning && input.Kind == InputTick {
			require.Equal(t, cues.WorkoutComplete, step.Cues[len(step.Cues)-1].Kind)
			require.Equal(t, len(plan.Phases)-1, state.PhaseIndex)
		}
		if input.Kind == InputTick && prev.IsRunning && prev.PhaseIndex == state.PhaseIndex && !state.Completed {
			require.Equal(t, prev.RemainingSeconds-1, state.RemainingSeconds)
		}

		for _, cue := range step.Cues {
			switch cue.Kind {
			case cues.Warning:
				warnings++
				require.False(t, prev.Warned && prev.PhaseIndex == state.PhaseIndex && input.Kind == InputTick,
					"second warning in one phase at input %d", i)
			case cues.PhaseChanged:
				require.Equal(t, plan.Phases[state.PhaseIndex], cue.Phase)
			}
		}
	}
	assert.Greater(t, warnings, 0)
}

func TestState_Validate(t *testing.T) {
	good := InitialState(warmupThenRun)
	assert.NoError(t, good.Validate(warmupThenRun))

	bad := good
	bad.PhaseIndex = 2
	assert.Error(t, bad.Validate(warmupThenRun))

	bad = good
	bad.RemainingSeconds = 301
	assert.Error(t, bad.Validate(warmupThenRun))

	bad = good
	bad.IsRunning, bad.Completed = true, true
	assert.Error(t, bad.Validate(warmupThenRun))

	assert.Error(t, good.Validate(singleRun))
}

func TestSnapshot_Derived(t *testing.T) {
	state := InitialState(warmupThenRun)
	snap := newSnapshot(warmupThenRun, state)

	assert.Equal(t, "Riscaldamento", snap.CurrentPhase.Name)
	require.NotNil(t, snap.NextPhase)
	assert.Equal(t, "Corsa", snap.NextPhase.Name)
	assert.Empty(t, snap.PrepareFor)
	assert.Len(t, snap.UpcomingPhases, 1)
	assert.Equal(t, StatusStopped, snap.Status)

	state.RemainingSeconds = 3
	assert.Equal(t, "Corsa", newSnapshot(warmupThenRun, state).PrepareFor)

	state.PhaseIndex, state.RemainingSeconds = 1, 2
	last := newSnapshot(warmupThenRun, state)
	assert.Nil(t, last.NextPhase)
	assert.Empty(t, last.PrepareFor)
	assert.Empty(t, last.UpcomingPhases)
}

func TestSnapshot_Preview(t *testing.T) {
	snap := newSnapshot(shortPhases, InitialState(shortPhases))
	assert.Len(t, snap.Preview(3), 2)
	assert.Len(t, snap.Preview(1), 1)
	assert.Empty(t, snap.Preview(-1))
}

func TestFormatClock(t *testing.T) {
	for seconds, want := range map[int]string{
		0:   "0:00",
		5:   "0:05",
		60:  "1:00",
		299: "4:59",
		600: "10:00",
		-3:  "0:00",
	} {
		assert.Equal(t, want, FormatClock(seconds))
	}
}
