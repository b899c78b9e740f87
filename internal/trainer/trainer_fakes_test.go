package trainer

import (
	"errors"
	"io"
	"log"
	"sync"

	"github.com/lowaak/interval-trainer/internal/events"
	"github.com/lowaak/interval-trainer/internal/plans"
	"github.com/lowaak/interval-trainer/internal/sequencer"
)

var testCatalog = []plans.Plan{
	{Key: "w1", Name: "Week 1", Phases: []plans.Phase{
		{Name: "Warm-up", Duration: 300, Kind: plans.KindWalk},
		{Name: "Run", Duration: 60, Kind: plans.KindRun},
	}},
	{Key: "w2", Name: "Week 2", Phases: []plans.Phase{
		{Name: "Warm-up", Duration: 300, Kind: plans.KindWalk},
		{Name: "Run", Duration: 90, Kind: plans.KindRun},
	}},
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// fakeSession stands in for the sequencer on both the model and controller sides.
type fakeSession struct {
	mu        sync.Mutex
	selected  []string
	toggles   int
	resets    int
	failWith  error
	snapshot  sequencer.Snapshot
	snapshots *events.ChannelEvent[sequencer.Snapshot]
}

func newFakeSession(planKey string) *fakeSession {
	return &fakeSession{
		snapshot:  sequencer.Snapshot{PlanKey: planKey, Status: sequencer.StatusStopped},
		snapshots: events.NewChannelEvent[sequencer.Snapshot](true),
	}
}

func (s *fakeSession) SelectPlan(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.selected = append(s.selected, key)
	s.snapshot.PlanKey = key
	return nil
}

func (s *fakeSession) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toggles++
}

func (s *fakeSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
}

func (s *fakeSession) State() sequencer.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *fakeSession) Listen(ch chan<- sequencer.Snapshot) func() {
	return s.snapshots.Listen(ch)
}

func (s *fakeSession) publish(snapshot sequencer.Snapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	s.snapshots.Notify(snapshot)
}

func (s *fakeSession) selectedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.selected...)
}

var errSelectFailed = errors.New("select failed")
