package trainer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/interval-trainer/internal/go_func_utils"
	"github.com/lowaak/interval-trainer/internal/sequencer"
)

// BaseUIView contains the base logic shared by all UI implementations
type BaseUIView struct {
	uiViewImpl   UIViewImpl
	uiModel      *UIModel
	uiController *UIController
	context      context.Context
	cancelFunc   context.CancelFunc
	waitGroup    sync.WaitGroup
	logger       *log.Logger
}

// NewBaseUIViewArg holds the arguments for creating a new BaseUIView
type NewBaseUIViewArg struct {
	UIViewImpl   UIViewImpl
	UIModel      *UIModel
	UIController *UIController
	Logger       *log.Logger
}

// NewBaseUIView creates a new BaseUIView with the given implementation
func NewBaseUIView(args NewBaseUIViewArg) *BaseUIView {
	if args.Logger == nil {
		panic("BaseUIView: logger cannot be nil")
	}
	if args.UIViewImpl == nil {
		panic("BaseUIView: UIViewImpl cannot be nil")
	}
	if args.UIModel == nil {
		panic("BaseUIView: UIModel cannot be nil")
	}
	if args.UIController == nil {
		panic("BaseUIView: UIController cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())

	base := &BaseUIView{
		uiViewImpl:   args.UIViewImpl,
		uiModel:      args.UIModel,
		uiController: args.UIController,
		context:      ctx,
		cancelFunc:   cancel,
		logger:       args.Logger,
	}

	// Initialize framework-specific widgets
	args.UIViewImpl.Initialize(args.UIController)

	// Set up keyboard handlers
	args.UIViewImpl.SetupKeyboardHandlers(args.UIController)

	// Initial content from the model
	session := args.UIModel.GetSession()
	args.UIViewImpl.SetPlanList(args.UIModel.GetPlans(), session.PlanKey)
	args.UIViewImpl.UpdateSession(session)
	args.UIViewImpl.SetMode(args.UIModel.GetUIState().Mode)

	// Set up periodic resize check and initial display
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, func() { base.monitorLogResize() })
	base.updateLogDisplay()

	base.setupEventListeners()

	return base
}

// listen runs handle for every value on ch until the view shuts down.
func listen[T any](base *BaseUIView, ch <-chan T, unregister func(), handle func(T)) {
	base.waitGroup.Add(1)
	go_func_utils.SafeGo(base.logger, func() {
		defer base.waitGroup.Done()
		defer unregister()
		for {
			select {
			case <-base.context.Done():
				return
			case value, ok := <-ch:
				if !ok {
					return
				}
				handle(value)
			}
		}
	})
}

func (base *BaseUIView) setupEventListeners() {
	// New log lines: show the tail
	logChan := make(chan string, 1)
	listen(base, logChan, base.uiModel.ListenToLog(logChan), func(string) {
		base.updateLogDisplay()
		base.draw()
	})

	// Close request stops the UI implementation
	closeChan := make(chan struct{}, 1)
	listen(base, closeChan, base.uiModel.ListenToCloseApplication(closeChan), func(struct{}) {
		base.uiViewImpl.Stop()
	})

	uiStateChan := make(chan UIState, 1)
	listen(base, uiStateChan, base.uiModel.ListenToUIState(uiStateChan), func(state UIState) {
		base.uiViewImpl.SetMode(state.Mode)
		base.draw()
	})

	// Session snapshots arrive at least once per tick while running
	sessionChan := make(chan sequencer.Snapshot, 4)
	lastPlanKey := base.uiModel.GetSession().PlanKey
	listen(base, sessionChan, base.uiModel.ListenToSession(sessionChan), func(snapshot sequencer.Snapshot) {
		if snapshot.PlanKey != lastPlanKey {
			lastPlanKey = snapshot.PlanKey
			base.uiViewImpl.SetPlanList(base.uiModel.GetPlans(), snapshot.PlanKey)
		}
		base.uiViewImpl.UpdateSession(snapshot)
		base.draw()
	})
}

func (base *BaseUIView) draw() {
	if err := base.uiViewImpl.Draw(); err != nil {
		base.logger.Printf("BaseUIView: Error drawing: %v", err)
	}
}

func (base *BaseUIView) updateLogDisplay() {
	// Get the visible height of the log view
	height := base.uiViewImpl.GetLogViewHeight()
	if height <= 0 {
		return
	}

	logLines := base.uiModel.GetLogTail(height)

	base.uiViewImpl.ClearLogView()
	for _, line := range logLines {
		if err := base.uiViewImpl.WriteLogLine(line + "\n"); err != nil {
			base.logger.Printf("BaseUIView: Error writing to log view: %v", err)
		}
	}
}

func (base *BaseUIView) monitorLogResize() {
	defer base.waitGroup.Done()
	var lastHeight int
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-base.context.Done():
			return
		case <-ticker.C:
			height := base.uiViewImpl.GetLogViewHeight()
			if height != lastHeight && height > 0 {
				lastHeight = height
				base.updateLogDisplay()
				base.draw()
			}
		}
	}
}

// Shutdown stops all goroutines and waits for them to finish
func (base *BaseUIView) Shutdown() {
	base.logger.Println("BaseUIView: Shutting down")
	base.cancelFunc()
	base.waitGroup.Wait()
	base.logger.Println("BaseUIView: Shutdown complete")
}

// Run starts the UI and blocks until it exits
func (base *BaseUIView) Run() error {
	return base.uiViewImpl.Run()
}
