package sequencer

import (
	"log"
	"sync"
	"time"

	"github.com/lowaak/interval-trainer/internal/cues"
	"github.com/lowaak/interval-trainer/internal/events"
	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/plans"
)

// DefaultTickInterval is one workout second.
const DefaultTickInterval = time.Second

// CueSink receives the cues produced by transitions. Fire must not block.
type CueSink interface {
	Fire(event cues.Event)
	ReleaseDisplay()
}

// Options tunes a Sequencer. Zero values pick the defaults.
type Options struct {
	TickInterval time.Duration
	Clock        Clock
	// PlanKey selects the initial plan; empty means the catalog default.
	PlanKey string
}

// Sequencer owns the workout state machine and its ticker.
// Every mutation goes through Next under mu, so ticks and control
// operations are serialized and cues leave in transition order.
type Sequencer struct {
	catalog *plans.Catalog
	sink    CueSink
	logger  *log.Logger
	clock   Clock
	period  time.Duration

	mu     sync.Mutex
	plan   plans.Plan
	state  State
	closed bool

	// Ticker goroutine (protected by mu). generation is bumped on every
	// stop so a tick already in flight from an old ticker is discarded.
	ticker     Ticker
	stopChan   chan struct{}
	generation uint64
	wg         sync.WaitGroup

	snapshots *events.ChannelEvent[Snapshot]
}

// NewSequencer creates a stopped Sequencer on the requested plan.
func NewSequencer(catalog *plans.Catalog, sink CueSink, logger *log.Logger, options Options) (*Sequencer, error) {
	if catalog == nil {
		panic("Sequencer: catalog cannot be nil")
	}
	if sink == nil {
		panic("Sequencer: sink cannot be nil")
	}
	if logger == nil {
		panic("Sequencer: logger cannot be nil")
	}
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.Clock == nil {
		options.Clock = SystemClock{}
	}
	if options.PlanKey == "" {
		options.PlanKey = catalog.DefaultKey()
	}

	plan, err := catalog.Lookup(options.PlanKey)
	if err != nil {
		return nil, err
	}

	s := &Sequencer{
		catalog:   catalog,
		sink:      sink,
		logger:    logger,
		clock:     options.Clock,
		period:    options.TickInterval,
		plan:      plan,
		state:     InitialState(plan),
		snapshots: events.NewChannelEvent[Snapshot](true),
	}
	s.snapshots.Notify(newSnapshot(s.plan, s.state))
	logger.Printf("Sequencer: plan '%s' loaded (%d phases, %v)", plan.Name, len(plan.Phases), plan.TotalDuration())
	return s, nil
}

// SelectPlan switches to the plan with key and stops any running session.
// An unknown key leaves the state untouched.
func (s *Sequencer) SelectPlan(key string) error {
	plan, err := s.catalog.Lookup(key)
	if err != nil {
		s.logger.Printf("Sequencer: %v", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(Input{Kind: InputSelect, Plan: plan})
	s.logger.Printf("Sequencer: plan '%s' selected", plan.Name)
	return nil
}

// Start begins or resumes the session. From the completed state the plan
// restarts from its first phase.
func (s *Sequencer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsRunning {
		return
	}
	s.applyLocked(Input{Kind: InputStart})
	s.logger.Printf("Sequencer: started at phase %d/%d with %ds left",
		s.state.PhaseIndex+1, len(s.plan.Phases), s.state.RemainingSeconds)
}

// Pause halts the countdown, keeping position.
func (s *Sequencer) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsRunning {
		return
	}
	s.applyLocked(Input{Kind: InputPause})
	s.logger.Printf("Sequencer: paused at phase %d/%d with %ds left",
		s.state.PhaseIndex+1, len(s.plan.Phases), s.state.RemainingSeconds)
}

// Toggle pauses a running session and starts a stopped one.
func (s *Sequencer) Toggle() {
	s.mu.Lock()
	running := s.state.IsRunning
	s.mu.Unlock()

	if running {
		s.Pause()
	} else {
		s.Start()
	}
}

// Reset returns to the first phase of the current plan, stopped.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(Input{Kind: InputReset})
	s.logger.Printf("Sequencer: reset '%s'", s.plan.Name)
}

// Tick advances the countdown by one second. It is a no-op unless running.
func (s *Sequencer) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(Input{Kind: InputTick})
}

// State returns a consistent snapshot.
func (s *Sequencer) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return newSnapshot(s.plan, s.state)
}

// Listen registers ch for a snapshot after every change. The current
// snapshot is delivered immediately. Slow listeners miss updates.
func (s *Sequencer) Listen(ch chan<- Snapshot) func() {
	return s.snapshots.Listen(ch)
}

// Close stops the ticker and waits for its goroutine to exit.
// Safe to call multiple times.
func (s *Sequencer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTickerLocked()
	s.mu.Unlock()

	s.wg.Wait()
	s.snapshots.Close()
	s.logger.Printf("Sequencer: closed")
}

// applyLocked runs one transition and its side effects.
// MUST be called with mu held.
func (s *Sequencer) applyLocked(input Input) {
	if s.closed {
		return
	}
	step := Next(s.plan, s.state, input)
	if err := step.State.Validate(step.Plan); err != nil {
		s.logger.Printf("Sequencer: rejected transition: %v", err)
		return
	}

	changed := step.State != s.state || step.Plan.Key != s.plan.Key
	s.plan = step.Plan
	s.state = step.State

	for _, cue := range step.Cues {
		s.logCue(cue)
		s.sink.Fire(cue)
	}
	if step.ReleaseDisplay {
		s.sink.ReleaseDisplay()
	}

	if s.state.IsRunning {
		s.startTickerLocked()
	} else {
		s.stopTickerLocked()
	}

	if changed {
		s.snapshots.Notify(newSnapshot(s.plan, s.state))
	}
}

func (s *Sequencer) logCue(cue cues.Event) {
	switch cue.Kind {
	case cues.PhaseChanged:
		s.logger.Printf("Sequencer: phase %d/%d '%s' (%ds)",
			s.state.PhaseIndex+1, len(s.plan.Phases), cue.Phase.Name, cue.Phase.Duration)
	case cues.WorkoutComplete:
		s.logger.Printf("Sequencer: workout '%s' complete", cue.PlanName)
	}
}

// startTickerLocked is a no-op while a ticker is active or after Close.
// MUST be called with mu held.
func (s *Sequencer) startTickerLocked() {
	if s.ticker != nil || s.closed {
		return
	}

	s.generation++
	generation := s.generation
	ticker := s.clock.NewTicker(s.period)
	stopChan := make(chan struct{})
	s.ticker = ticker
	s.stopChan = stopChan

	s.wg.Add(1)
	go_func_utils.SafeGo(s.logger, func() {
		defer s.wg.Done()
		for {
			select {
			case <-stopChan:
				return
			case <-ticker.C():
				s.onTick(generation)
			}
		}
	})
}

// stopTickerLocked MUST be called with mu held.
func (s *Sequencer) stopTickerLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stopChan)
	s.ticker = nil
	s.stopChan = nil
	s.generation++
}

func (s *Sequencer) onTick(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation || s.ticker == nil {
		return
	}
	s.applyLocked(Input{Kind: InputTick})
}
