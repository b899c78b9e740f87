package trainer

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/interval-trainer/internal/events"
	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/plans"
	"github.com/lowaak/interval-trainer/internal/sequencer"
)

// SessionSource publishes sequencer snapshots. *sequencer.Sequencer satisfies it.
type SessionSource interface {
	Listen(ch chan<- sequencer.Snapshot) func()
	State() sequencer.Snapshot
}

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	sessionEvent          *events.ChannelEvent[sequencer.Snapshot]
	session               sequencer.Snapshot
	plans                 []plans.Plan
	persistence           *uiModelPersistence
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

const maxLogLines = 1000

// NewUIModel relays session snapshots and log lines to views. catalog is
// the ordered plan list offered for selection; dataDir holds ui_state.json.
func NewUIModel(session SessionSource, catalog []plans.Plan, dataDir string, logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if session == nil {
		panic("UIModel: session cannot be nil")
	}
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeSession},
		sessionEvent:          events.NewChannelEvent[sequencer.Snapshot](true),
		session:               session.State(),
		plans:                 catalog,
		persistence:           newUIModelPersistence(dataDir, logger),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	// Relay sequencer snapshots to views
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.relaySession(ctx, session) })

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// ListenToSession registers a channel to receive session snapshots
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToSession(ch chan<- sequencer.Snapshot) func() {
	return m.sessionEvent.Listen(ch)
}

// GetSession returns the latest session snapshot
func (m *UIModel) GetSession() sequencer.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// GetPlans returns the selectable plans in catalog order
func (m *UIModel) GetPlans() []plans.Plan {
	return m.plans
}

// GetPreferredPlan returns the remembered plan key, or "" if none
func (m *UIModel) GetPreferredPlan() string {
	return m.persistence.getPreferredPlan()
}

// SetPreferredPlan remembers key across runs
func (m *UIModel) SetPreferredPlan(key string) {
	m.persistence.setPreferredPlan(key)
}

// relaySession copies every sequencer snapshot into the model
func (m *UIModel) relaySession(ctx context.Context, session SessionSource) {
	defer m.wg.Done()

	ch := make(chan sequencer.Snapshot, 8)
	unregister := session.Listen(ch)
	defer unregister()

	for {
		select {
		case <-ctx.Done():
			return
		case snapshot := <-ch:
			m.mu.Lock()
			m.session = snapshot
			m.mu.Unlock()

			m.sessionEvent.Notify(snapshot)
		}
	}
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
